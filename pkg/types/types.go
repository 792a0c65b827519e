package types

// Prediction is one classifier output pairing a category name with a probability
type Prediction struct {
	Category    string  `json:"category" validate:"required"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
}

// CategoryInfo is the catalog data attached to a single AQI category
type CategoryInfo struct {
	Name            string   `json:"name" mapstructure:"name"`
	Midpoint        float64  `json:"midpoint" mapstructure:"midpoint"`
	Recommendations []string `json:"recommendations" mapstructure:"recommendations"`
}

// Estimate is the aggregated AQI estimate for one classification result
type Estimate struct {
	EstimatedAQI      int      `json:"estimated_aqi"`
	TopCategory       string   `json:"top_category"`
	ConfidencePercent int      `json:"confidence_percent"`
	Recommendations   []string `json:"recommendations"`
}

// SendOptions controls how an image is encoded before it is sent to a vision model
type SendOptions struct {
	Format  string
	MaxSize int
	Quality int
}
