package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

type stubClient struct {
	preds []types.Prediction
	err   error
	calls int
}

func (s *stubClient) Classify(_ context.Context, _, _, _ string) ([]types.Prediction, error) {
	s.calls++
	return s.preds, s.err
}

func (s *stubClient) Ping(context.Context) error {
	return s.err
}

func TestBreakerPassesThrough(t *testing.T) {
	stub := &stubClient{preds: []types.Prediction{{Category: "Good", Probability: 1}}}
	b := NewBreaker(stub, BreakerSettings{})

	preds, err := b.Classify(context.Background(), "m", "p", "img")
	require.NoError(t, err)
	assert.Equal(t, stub.preds, preds)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	boom := errors.New("backend down")
	stub := &stubClient{err: boom}
	b := NewBreaker(stub, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := b.Classify(context.Background(), "m", "p", "img")
		assert.ErrorIs(t, err, boom)
	}

	_, err := b.Classify(context.Background(), "m", "p", "img")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, "open", b.State())
	assert.ErrorIs(t, b.Ping(context.Background()), ErrCircuitOpen)
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	stub := &stubClient{err: context.Canceled}
	b := NewBreaker(stub, BreakerSettings{MaxFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := b.Classify(context.Background(), "m", "p", "img")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 3, stub.calls)
	assert.Equal(t, "closed", b.State())
}
