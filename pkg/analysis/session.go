// Package analysis runs classification and estimation for submitted images.
//
// A Session tracks submissions from one caller. Every Submit starts a new
// generation; when its classification resolves after a newer submission has
// started, the result is discarded and ErrSuperseded is returned. Nothing is
// cancelled, the stale work simply has no effect.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// ErrSuperseded is returned for a submission overtaken by a newer one
var ErrSuperseded = errors.New("analysis superseded by a newer submission")

// Classifier turns an encoded image into class probabilities
type Classifier interface {
	Classify(ctx context.Context, imageB64 string) ([]types.Prediction, error)
}

// Estimator turns class probabilities into an AQI estimate
type Estimator interface {
	Estimate(predictions []types.Prediction) (types.Estimate, error)
}

// Result is one completed analysis
type Result struct {
	ID          string             `json:"id"`
	Estimate    types.Estimate     `json:"estimate"`
	Predictions []types.Prediction `json:"predictions"`
	AnalyzedAt  time.Time          `json:"analyzed_at"`
}

// Session coordinates analyses with last-submission-wins semantics
type Session struct {
	classifier Classifier
	estimator  Estimator
	clock      clockwork.Clock

	mu         sync.Mutex
	generation uint64
	latest     *Result
}

// NewSession creates a Session. A nil clock means the real clock.
func NewSession(c Classifier, e Estimator, clock clockwork.Clock) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Session{classifier: c, estimator: e, clock: clock}
}

// Submit classifies imageB64 and estimates its AQI
func (s *Session) Submit(ctx context.Context, imageB64 string) (Result, error) {
	gen := s.begin()

	preds, err := s.classifier.Classify(ctx, imageB64)
	if err != nil {
		if !s.isCurrent(gen) {
			return Result{}, ErrSuperseded
		}
		return Result{}, err
	}

	est, err := s.estimator.Estimate(preds)
	if err != nil {
		if !s.isCurrent(gen) {
			return Result{}, ErrSuperseded
		}
		return Result{}, fmt.Errorf("estimate: %w", err)
	}

	res := Result{
		ID:          uuid.NewString(),
		Estimate:    est,
		Predictions: preds,
		AnalyzedAt:  s.clock.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return Result{}, ErrSuperseded
	}
	s.latest = &res
	return res, nil
}

// Latest returns the most recent accepted result
func (s *Session) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}

// Reset forgets the latest result and invalidates in-flight submissions
func (s *Session) Reset() {
	s.mu.Lock()
	s.generation++
	s.latest = nil
	s.mu.Unlock()
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *Session) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}
