package catalog

import "github.com/menta2k/aqi-analyzer/pkg/types"

// DefaultEntries returns the five categories the classifier model was trained on
func DefaultEntries() []types.CategoryInfo {
	return []types.CategoryInfo{
		{
			Name:     "Good",
			Midpoint: 25,
			Recommendations: []string{
				"It's a great day to be active outside!",
				"Enjoy the fresh air.",
			},
		},
		{
			Name:     "Moderate",
			Midpoint: 75.5,
			Recommendations: []string{
				"Unusually sensitive people should consider reducing prolonged or heavy exertion.",
				"Keep an eye on symptoms such as coughing or shortness of breath.",
			},
		},
		{
			Name:     "Poor",
			Midpoint: 125.5,
			Recommendations: []string{
				"Sensitive groups should reduce prolonged or heavy exertion outdoors.",
				"It’s OK to be active outside, but take more breaks.",
			},
		},
		{
			// 151-300
			Name:     "Unhealthy",
			Midpoint: 225.5,
			Recommendations: []string{
				"SEVERE CONDITION DETECTED - WEAR A MASK OUTDOORS",
				"Sensitive groups should avoid all outdoor physical activity.",
				"Everyone else should reduce prolonged or heavy exertion.",
				"Keep windows and doors closed.",
			},
		},
		{
			// 301-700
			Name:     "Severe",
			Midpoint: 500.5,
			Recommendations: []string{
				"HEALTH ALERT: EVERYONE SHOULD AVOID ALL OUTDOOR EXERTION",
				"Remain indoors and keep activity levels low.",
				"Use air purifiers indoors if available.",
				"Consider relocating temporarily if you belong to a sensitive group.",
			},
		},
	}
}

// Default returns a Catalog built from DefaultEntries
func Default() *Catalog {
	c, err := New(DefaultEntries())
	if err != nil {
		panic("catalog: default entries are invalid: " + err.Error())
	}
	return c
}
