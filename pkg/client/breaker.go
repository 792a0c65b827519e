package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// ErrCircuitOpen is returned while the breaker refuses calls to the backend
var ErrCircuitOpen = errors.New("circuit breaker open")

// BreakerSettings controls when the breaker trips and how long it stays open
type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Breaker wraps a VisionClient with a circuit breaker
type Breaker struct {
	inner VisionClient
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker wraps inner. Zero settings fall back to 5 consecutive failures and 30s open.
func NewBreaker(inner VisionClient, s BreakerSettings) *Breaker {
	if s.Name == "" {
		s.Name = "vision"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Caller cancellation says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{inner: inner, cb: cb}
}

// Classify forwards to the wrapped client unless the circuit is open
func (b *Breaker) Classify(ctx context.Context, model, prompt, imgB64 string) ([]types.Prediction, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Classify(ctx, model, prompt, imgB64)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	preds, ok := res.([]types.Prediction)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return preds, nil
}

// Ping checks the wrapped backend without counting towards the breaker
func (b *Breaker) Ping(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}
	return b.inner.Ping(ctx)
}

// State reports the breaker state as a string (closed, half-open, open)
func (b *Breaker) State() string {
	return b.cb.State().String()
}
