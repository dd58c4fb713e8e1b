// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/metrics"
)

// DefaultGoogleURL is the Google Geocoding API endpoint.
const DefaultGoogleURL = "https://maps.googleapis.com/maps/api/geocode/json"

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

// GoogleOptions configures GoogleClient.
type GoogleOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RateLimit is requests per second; zero means unlimited.
	RateLimit     float64
	Burst         int
	RetryAttempts uint
	RetryDelay    time.Duration
	Breaker       BreakerSettings
	HTTPClient    *http.Client
}

// GoogleClient calls the Google reverse-geocoding endpoint.
type GoogleClient struct {
	baseURL       string
	apiKey        string
	client        *http.Client
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker[[]AddressComponent]
	breakerName   string
	retryAttempts uint
	retryDelay    time.Duration
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		AddressComponents []AddressComponent `json:"address_components"`
	} `json:"results"`
}

// NewGoogleClient builds a client from opts, applying defaults for zero values.
func NewGoogleClient(opts GoogleOptions) *GoogleClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Breaker.Timeout <= 0 {
		opts.Breaker.Timeout = time.Minute
	}
	if opts.Breaker.Name == "" {
		opts.Breaker.Name = "geocode-api"
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &GoogleClient{
		baseURL:       opts.BaseURL,
		apiKey:        opts.APIKey,
		client:        client,
		limiter:       rate.NewLimiter(limit, opts.Burst),
		breaker:       newBreaker(opts.Breaker),
		breakerName:   opts.Breaker.Name,
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
	}
}

// Lookup returns the address components of the first result for lat,lng.
func (c *GoogleClient) Lookup(ctx context.Context, lat, lng float64) ([]AddressComponent, error) {
	if !ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("%w: %v,%v", ErrInvalidCoordinates, lat, lng)
	}

	return retry.DoWithData(
		func() ([]AddressComponent, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}
			components, err := c.breaker.Execute(func() ([]AddressComponent, error) {
				return c.fetch(ctx, lat, lng)
			})
			recordBreakerResult(c.breakerName, err)
			if err != nil && !errors.Is(err, ErrTransient) {
				return nil, retry.Unrecoverable(err)
			}
			return components, err
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logging.Ctx(ctx).Debug().Uint("attempt", n+1).Err(err).Str("latlng", CoordinateKey(lat, lng)).Msg("Retrying geocode lookup")
		}),
	)
}

func (c *GoogleClient) fetch(ctx context.Context, lat, lng float64) ([]AddressComponent, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%v,%v", lat, lng))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordGeocodeRequest("error", time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	components, err := decodeResponse(resp)
	result := "success"
	switch {
	case errors.Is(err, ErrNoResults):
		result = "no_results"
	case err != nil:
		result = "error"
	}
	metrics.RecordGeocodeRequest(result, time.Since(start))
	return components, err
}

func decodeResponse(resp *http.Response) ([]AddressComponent, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrTransient, err)
	}

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	var gr googleResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}

	switch gr.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, fmt.Errorf("%w: %s %s", ErrTransient, gr.Status, gr.ErrorMessage)
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrUpstream, gr.Status, gr.ErrorMessage)
	}

	if len(gr.Results) == 0 {
		return nil, ErrNoResults
	}
	return gr.Results[0].AddressComponents, nil
}
