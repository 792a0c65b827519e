package classification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/menta2k/aqi-analyzer/pkg/catalog"
	"github.com/menta2k/aqi-analyzer/pkg/client"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// ErrNoPredictions is returned when the model reply contains no scored category
var ErrNoPredictions = errors.New("no predictions")

const promptTemplate = `You are an air quality classifier for outdoor photographs.

Judge visible haze, smog, smoke, sky color and visibility, then score the photo
against each of these categories: %s.

Return JSON only:
{
  "predictions": [
%s
  ]
}

HARD RULES
- Use exactly the category names listed above, in the same order.
- Every probability is a number in [0,1] and together they sum to 1.
- If the photo shows no sky or outdoor scene, spread the probability evenly.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Prompt builds the classification prompt for the categories in cat
func Prompt(cat *catalog.Catalog) string {
	names := cat.Names()
	lines := make([]string, len(names))
	for i, n := range names {
		sep := ","
		if i == len(names)-1 {
			sep = ""
		}
		lines[i] = fmt.Sprintf(`    {"category": %q, "probability": 0.0}%s`, n, sep)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(names, ", "), strings.Join(lines, "\n"))
}

// Classifier scores images against the catalog categories with a vision model
type Classifier struct {
	client  client.VisionClient
	catalog *catalog.Catalog
	model   string
	prompt  string
}

// New creates a Classifier that sends images to model through vc
func New(vc client.VisionClient, cat *catalog.Catalog, model string) *Classifier {
	return &Classifier{
		client:  vc,
		catalog: cat,
		model:   model,
		prompt:  Prompt(cat),
	}
}

// Classify sends a base64 encoded image to the model and returns normalized predictions
func (c *Classifier) Classify(ctx context.Context, imageB64 string) ([]types.Prediction, error) {
	raw, err := c.client.Classify(ctx, c.model, c.prompt, imageB64)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	preds := Normalize(c.catalog, raw)
	if len(preds) == 0 {
		return nil, ErrNoPredictions
	}
	return preds, nil
}

// Ping checks the underlying vision backend
func (c *Classifier) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Normalize cleans a raw prediction list without changing its order.
//
// Names are trimmed and matched case-insensitively to their catalog spelling,
// probabilities are clamped to [0,1] and NaN entries are dropped. For repeated
// names the first occurrence wins. Unknown names are kept as returned.
func Normalize(cat *catalog.Catalog, raw []types.Prediction) []types.Prediction {
	out := make([]types.Prediction, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, p := range raw {
		name := strings.TrimSpace(p.Category)
		if name == "" || math.IsNaN(p.Probability) {
			continue
		}
		if canon, ok := cat.Canonical(name); ok {
			name = canon
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, types.Prediction{Category: name, Probability: clamp(p.Probability, 0, 1)})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
