// Package service contains the request orchestrators: one per
// capability, each composing the retry wrapper, a schema contract, the
// advisory cache and, where needed, a grounding call and a geocoding
// fan-out. Every call is a stateless, idempotent round trip; the cache
// is the only shared state.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/schema"
	"github.com/geosick/geosick/internal/worker"
)

// Capability-specific cache TTLs. The values are deliberate and not
// derived from a formula; they match observed data volatility.
const (
	locationTTL   = 10 * time.Minute
	geocodeTTL    = 24 * time.Hour
	facilitiesTTL = 30 * time.Minute
	forecastTTL   = 4 * time.Hour
	alertsTTL     = 15 * time.Minute
	snapshotTTL   = 6 * time.Hour
)

// Service exposes the orchestrators over one provider client.
type Service struct {
	client genai.Client
	cache  cache.Cache
	pool   *worker.Pool
	log    zerolog.Logger

	maxAttempts  int
	initialDelay time.Duration
	imageModel   string
}

// New creates a Service. A nil cache disables caching; every
// orchestrator behaves identically either way.
func New(client genai.Client, store cache.Cache, cfg model.Config, log zerolog.Logger) *Service {
	if store == nil {
		store = cache.Noop{}
	}

	maxAttempts := cfg.GenAI.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = genai.DefaultMaxAttempts
	}
	initialDelay := cfg.GenAI.InitialDelay
	if initialDelay <= 0 {
		initialDelay = genai.DefaultInitialDelay
	}

	return &Service{
		client:       client,
		cache:        store,
		pool:         worker.NewPool(cfg.Concurrency.GeocodeWorkers),
		log:          log,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		imageModel:   cfg.GenAI.ImageModel,
	}
}

// CapabilityError identifies which operation failed. Callers present
// it as "analysis unavailable, try again" without losing the cause.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

func capErr(capability string, err error) error {
	return &CapabilityError{Capability: capability, Err: err}
}

// generate runs one provider call through the retry wrapper.
func (s *Service) generate(ctx context.Context, req genai.ContentRequest) (*genai.ContentResponse, error) {
	return genai.WithRetry(ctx, func() (*genai.ContentResponse, error) {
		return s.client.GenerateContent(ctx, req)
	}, s.maxAttempts, s.initialDelay)
}

// generateStructured runs a schema-constrained call, validates the
// response against the contract and unmarshals it into out. A parse
// or contract violation is fatal for the call.
func (s *Service) generateStructured(ctx context.Context, req genai.ContentRequest, contract *schema.Schema, out interface{}) (*genai.ContentResponse, error) {
	req.Schema = contract
	resp, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	raw := []byte(strings.TrimSpace(resp.Text))
	if err := contract.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid response format: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("invalid response format: %w", err)
	}
	return resp, nil
}

// cached reads a key into out. Any failure is a miss.
func (s *Service) cached(key string, out interface{}) bool {
	data, found := s.cache.Get(key)
	if !found {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		_ = s.cache.Delete(key)
		return false
	}
	return true
}

// store writes a result. Failures are swallowed: caching is a
// performance optimization, not a correctness requirement.
func (s *Service) store(key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := s.cache.Set(key, data, ttl); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// coord4 buckets a coordinate at 4 decimal places (~11m), the
// precision used for point-accurate cache keys.
func coord4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// coord2 buckets at 2 decimal places (~1.1km), for area-level keys.
func coord2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
