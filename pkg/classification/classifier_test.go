package classification

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/aqi-analyzer/pkg/catalog"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

type fakeVision struct {
	preds  []types.Prediction
	err    error
	model  string
	prompt string
	image  string
}

func (f *fakeVision) Classify(_ context.Context, model, prompt, imgB64 string) ([]types.Prediction, error) {
	f.model, f.prompt, f.image = model, prompt, imgB64
	return f.preds, f.err
}

func (f *fakeVision) Ping(context.Context) error { return f.err }

func TestPromptListsCatalogCategories(t *testing.T) {
	p := Prompt(catalog.Default())

	assert.Contains(t, p, "Good, Moderate, Poor, Unhealthy, Severe")
	assert.Contains(t, p, `{"category": "Severe", "probability": 0.0}`)
	assert.NotContains(t, p, `"probability": 0.0},`+"\n  ]")
}

func TestClassifyForwardsAndNormalizes(t *testing.T) {
	fv := &fakeVision{preds: []types.Prediction{
		{Category: "severe", Probability: 0.1},
		{Category: " Good ", Probability: 0.9},
	}}
	c := New(fv, catalog.Default(), "aqi-vision")

	preds, err := c.Classify(context.Background(), "aW1n")
	require.NoError(t, err)

	assert.Equal(t, "aqi-vision", fv.model)
	assert.Equal(t, "aW1n", fv.image)
	assert.Equal(t, Prompt(catalog.Default()), fv.prompt)
	assert.Equal(t, []types.Prediction{
		{Category: "Severe", Probability: 0.1},
		{Category: "Good", Probability: 0.9},
	}, preds)
}

func TestClassifyBackendError(t *testing.T) {
	boom := errors.New("connection refused")
	c := New(&fakeVision{err: boom}, catalog.Default(), "m")

	_, err := c.Classify(context.Background(), "aW1n")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.Ping(context.Background()), boom)
}

func TestClassifyNothingUsable(t *testing.T) {
	c := New(&fakeVision{preds: []types.Prediction{{Category: "  ", Probability: 1}}}, catalog.Default(), "m")

	_, err := c.Classify(context.Background(), "aW1n")
	assert.ErrorIs(t, err, ErrNoPredictions)
}

func TestNormalize(t *testing.T) {
	got := Normalize(catalog.Default(), []types.Prediction{
		{Category: "Smoke", Probability: 0.2},
		{Category: "Poor", Probability: 1.4},
		{Category: "poor", Probability: 0.3},
		{Category: "Moderate", Probability: -0.2},
		{Category: "smoke", Probability: 0.5},
		{Category: "Good", Probability: math.NaN()},
	})

	assert.Equal(t, []types.Prediction{
		{Category: "Smoke", Probability: 0.2},
		{Category: "Poor", Probability: 1},
		{Category: "Moderate", Probability: 0},
	}, got)
}

func TestNormalizeKeepsModelOrderForTieBreak(t *testing.T) {
	got := Normalize(catalog.Default(), []types.Prediction{
		{Category: "Smoke", Probability: 0.5},
		{Category: "severe", Probability: 0.25},
		{Category: "Good", Probability: 0.25},
	})

	assert.Equal(t, []types.Prediction{
		{Category: "Smoke", Probability: 0.5},
		{Category: "Severe", Probability: 0.25},
		{Category: "Good", Probability: 0.25},
	}, got)
}
