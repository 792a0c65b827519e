// Package estimator converts classifier class probabilities into a single AQI
// estimate.
//
// The estimated AQI is the probability-weighted sum of category midpoints over
// every prediction whose category is in the catalog. Unknown categories add
// nothing. The displayed category is the prediction with the strictly highest
// probability; on an exact tie the one that appears first in the input wins.
// Recommendations always come from that single category, never a blend.
//
// For strongly mixed predictions the weighted AQI may sit in a different band
// than the displayed category (an even Good/Severe split yields a mid-range AQI
// labelled Good). This is intentional and kept as is.
package estimator

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

var (
	// ErrInvalidInput reports an empty or malformed prediction list
	ErrInvalidInput = errors.New("invalid input")
	// ErrCategoryNotFound reports a top category missing from the catalog
	ErrCategoryNotFound = errors.New("category not found")
)

// Catalog is the lookup the estimator needs from a category catalog
type Catalog interface {
	Lookup(name string) (types.CategoryInfo, bool)
}

// Estimator aggregates predictions against a fixed catalog
type Estimator struct {
	catalog Catalog
}

// New creates an Estimator bound to catalog
func New(catalog Catalog) *Estimator {
	return &Estimator{catalog: catalog}
}

// Estimate computes the AQI estimate for predictions.
// Probabilities are used as given: they are not renormalized and need not sum to 1.
func (e *Estimator) Estimate(predictions []types.Prediction) (types.Estimate, error) {
	if len(predictions) == 0 {
		return types.Estimate{}, fmt.Errorf("%w: no predictions", ErrInvalidInput)
	}

	var weightedSum float64
	top := 0

	for i, p := range predictions {
		if math.IsNaN(p.Probability) || math.IsInf(p.Probability, 0) || p.Probability < 0 {
			return types.Estimate{}, fmt.Errorf("%w: prediction %d (%q) has probability %v", ErrInvalidInput, i, p.Category, p.Probability)
		}

		if info, ok := e.catalog.Lookup(p.Category); ok {
			weightedSum += p.Probability * info.Midpoint
		}

		// Strictly greater keeps the first of equal maxima.
		if p.Probability > predictions[top].Probability {
			top = i
		}
	}

	best := predictions[top]
	info, ok := e.catalog.Lookup(best.Category)
	if !ok {
		return types.Estimate{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, best.Category)
	}

	aqi, ok := roundHalfUp(weightedSum)
	if !ok {
		return types.Estimate{}, fmt.Errorf("%w: weighted AQI %v is out of range", ErrInvalidInput, weightedSum)
	}
	confidence, ok := roundHalfUp(best.Probability * 100)
	if !ok {
		return types.Estimate{}, fmt.Errorf("%w: probability %v is out of range", ErrInvalidInput, best.Probability)
	}

	return types.Estimate{
		EstimatedAQI:      aqi,
		TopCategory:       best.Category,
		ConfidencePercent: confidence,
		Recommendations:   info.Recommendations,
	}, nil
}

// roundHalfUp rounds v to the nearest int, halves going up. It reports false
// when v is not finite or does not fit in an int.
func roundHalfUp(v float64) (int, bool) {
	if math.IsNaN(v) || v < 0 || v >= float64(math.MaxInt) {
		return 0, false
	}
	return int(math.Floor(v + 0.5)), true
}
