// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package eventbus carries in-process change notifications over a Watermill
// Go-channel pub/sub. Handlers that mutate events publish to
// TopicEventsChanged; the location indexer subscribes and refreshes.
package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/metrics"
)

// TopicEventsChanged is published whenever an event is created or changed.
const TopicEventsChanged = "events.changed"

// EventsChanged is the payload of TopicEventsChanged.
type EventsChanged struct {
	EventID string    `json:"event_id"`
	At      time.Time `json:"at"`
}

// Bus is a process-local publish/subscribe bus.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// New creates a bus that logs through zerolog.
func New() *Bus {
	logger := NewZerologAdapter(logging.WithComponent("eventbus"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger),
		logger: logger,
	}
}

// PublishEventsChanged announces a change to eventID. With no subscriber the
// message is dropped.
func (b *Bus) PublishEventsChanged(ctx context.Context, eventID string) error {
	payload, err := json.Marshal(EventsChanged{EventID: eventID, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode events.changed: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}

	if err := b.pubsub.Publish(TopicEventsChanged, msg); err != nil {
		return fmt.Errorf("failed to publish events.changed: %w", err)
	}
	metrics.EventBusPublished.WithLabelValues(TopicEventsChanged).Inc()
	return nil
}

// Subscribe returns the raw message stream of TopicEventsChanged. Every
// message must be acked or nacked. The channel closes when ctx ends.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, TopicEventsChanged)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", TopicEventsChanged, err)
	}
	return msgs, nil
}

// Changes subscribes and collapses the stream into a wake-up signal. A burst
// of changes while the receiver is busy yields a single pending signal.
func (b *Bus) Changes(ctx context.Context) (<-chan struct{}, error) {
	msgs, err := b.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev EventsChanged
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Error("Dropping malformed message", err, watermill.LogFields{"uuid": msg.UUID})
				msg.Ack()
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
			msg.Ack()
		}
	}()
	return out, nil
}

// Close stops the pub/sub and closes every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
