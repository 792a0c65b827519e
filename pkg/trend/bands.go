package trend

import "github.com/menta2k/aqi-analyzer/pkg/types"

// Band is the display category and color for a numeric AQI
type Band struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}

var bands = []struct {
	upper int
	band  Band
}{
	{50, Band{"Good", "green"}},
	{100, Band{"Satisfactory", "lime"}},
	{200, Band{"Moderate", "yellow"}},
	{300, Band{"Poor", "orange"}},
	{400, Band{"Very Poor", "red"}},
}

// BandFor maps an AQI value to its dashboard band. Upper bounds are inclusive.
func BandFor(aqi int) Band {
	for _, b := range bands {
		if aqi <= b.upper {
			return b.band
		}
	}
	return Band{"Severe", "rose"}
}

// HealthImpact summarizes who is affected at a given AQI
func HealthImpact(aqi int) string {
	switch {
	case aqi > 150:
		return "Unhealthy for everyone"
	case aqi > 100:
		return "Unhealthy for sensitive groups"
	default:
		return "Generally safe"
	}
}

// SeverityColor is the color scale used next to an estimated AQI
func SeverityColor(aqi int) string {
	switch {
	case aqi <= 50:
		return "green"
	case aqi <= 100:
		return "yellow"
	case aqi <= 150:
		return "orange"
	case aqi <= 300:
		return "red"
	default:
		return "purple"
	}
}

// RatedEstimate is an estimate with the color shown next to it
type RatedEstimate struct {
	types.Estimate
	SeverityColor string `json:"severity_color"`
}

// Rate attaches the severity color of the estimated AQI
func Rate(est types.Estimate) RatedEstimate {
	return RatedEstimate{Estimate: est, SeverityColor: SeverityColor(est.EstimatedAQI)}
}
