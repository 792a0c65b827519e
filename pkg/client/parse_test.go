package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

func TestParsePredictionsWrapped(t *testing.T) {
	raw := "```json\n{\"predictions\": [\n  {\"category\": \"Good\", \"probability\": 0.7}, // clear sky\n  {\"category\": \"Poor\", \"probability\": 0.3},\n]}\n```"

	preds, err := ParsePredictions(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Prediction{
		{Category: "Good", Probability: 0.7},
		{Category: "Poor", Probability: 0.3},
	}, preds)
}

func TestParsePredictionsTeachableMachineList(t *testing.T) {
	raw := `Here you go: [{"className":"Severe","probability":0.9},{"className":"Unhealthy","probability":0.1}]`

	preds, err := ParsePredictions(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Prediction{
		{Category: "Severe", Probability: 0.9},
		{Category: "Unhealthy", Probability: 0.1},
	}, preds)
}

func TestParsePredictionsFlatMapKeepsOrder(t *testing.T) {
	raw := `{"Moderate": 0.4, "Good": 0.4, "reasoning": "hazy horizon", "Poor": 0.2}`

	preds, err := ParsePredictions(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Prediction{
		{Category: "Moderate", Probability: 0.4},
		{Category: "Good", Probability: 0.4},
		{Category: "Poor", Probability: 0.2},
	}, preds)
}

func TestParsePredictionsConfidenceAlias(t *testing.T) {
	preds, err := ParsePredictions(`{"predictions":[{"label":"Good","confidence":1}]}`)
	require.NoError(t, err)
	assert.Equal(t, []types.Prediction{{Category: "Good", Probability: 1}}, preds)
}

func TestParsePredictionsRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "the air looks clean", `{"reasoning":"n/a"}`, `{"predictions":[{"category":"Good"}]}`} {
		_, err := ParsePredictions(raw)
		assert.ErrorIs(t, err, ErrUnparseable, "input %q", raw)
	}
}

func TestSanitizeModelJSON(t *testing.T) {
	raw := "```\n/* note */ {\"a\": 1,}\n```"
	assert.Equal(t, `{"a": 1}`, SanitizeModelJSON(raw))
}

func TestSanitizeModelJSONKeepsSlashesInStrings(t *testing.T) {
	raw := `{"Good": 0.7, "reasoning": "see https://example.com/aqi", "Moderate": 0.3} // done`
	assert.Equal(t, `{"Good": 0.7, "reasoning": "see https://example.com/aqi", "Moderate": 0.3}`, SanitizeModelJSON(raw))

	preds, err := ParsePredictions(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Prediction{
		{Category: "Good", Probability: 0.7},
		{Category: "Moderate", Probability: 0.3},
	}, preds)
}

func TestSanitizeModelJSONStripsComments(t *testing.T) {
	raw := "{\n  // scores\n  \"Good\": 0.6, // mostly clear\n  /* \"Poor\": 0.1, */ \"Moderate\": 0.4\n}"
	preds, err := ParsePredictions(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Prediction{
		{Category: "Good", Probability: 0.6},
		{Category: "Moderate", Probability: 0.4},
	}, preds)
}
