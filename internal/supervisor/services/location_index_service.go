// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LocationRefresher rebuilds the popular-locations index.
type LocationRefresher interface {
	Refresh(ctx context.Context) error
}

// ChangeNotifier signals that events changed and the index is stale.
// The returned channel closes when ctx ends.
type ChangeNotifier interface {
	Changes(ctx context.Context) (<-chan struct{}, error)
}

// LocationIndexConfig holds configuration for the location index service.
type LocationIndexConfig struct {
	// RefreshInterval is how often the index is rebuilt. Default 15m.
	RefreshInterval time.Duration

	// RefreshTimeout bounds a single rebuild. Default 5m.
	RefreshTimeout time.Duration
}

// LocationIndexService keeps the location index fresh under Suture
// supervision: once on start, on every tick and on every change signal.
type LocationIndexService struct {
	index    LocationRefresher
	notifier ChangeNotifier
	config   LocationIndexConfig
	logger   zerolog.Logger
	name     string
}

// NewLocationIndexService creates the service. notifier may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLocationIndexService(index LocationRefresher, notifier ChangeNotifier, cfg LocationIndexConfig, logger zerolog.Logger) *LocationIndexService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 15 * time.Minute
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 5 * time.Minute
	}
	return &LocationIndexService{
		index:    index,
		notifier: notifier,
		config:   cfg,
		logger:   logger.With().Str("service", "location-index").Logger(),
		name:     "location-index-service",
	}
}

// Serve implements suture.Service.
func (s *LocationIndexService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("refresh_interval", s.config.RefreshInterval).Msg("location index service starting")

	var changes <-chan struct{}
	if s.notifier != nil {
		ch, err := s.notifier.Changes(ctx)
		if err != nil {
			// Returning lets Suture restart us and retry the subscription.
			return err
		}
		changes = ch
	}

	s.refresh(ctx, "startup")

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("location index service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.refresh(ctx, "schedule")

		case _, ok := <-changes:
			if !ok {
				// Subscription ended without shutdown; fall back to the ticker.
				changes = nil
				continue
			}
			s.refresh(ctx, "events_changed")
		}
	}
}

func (s *LocationIndexService) refresh(ctx context.Context, trigger string) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.RefreshTimeout)
	defer cancel()

	start := time.Now()
	if err := s.index.Refresh(refreshCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("location index refresh failed, keeping previous snapshot")
		return
	}
	s.logger.Debug().Str("trigger", trigger).Dur("duration", time.Since(start)).Msg("location index refreshed")
}

// String returns the service name for logging.
func (s *LocationIndexService) String() string {
	return s.name
}
