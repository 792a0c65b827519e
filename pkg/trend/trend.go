// Package trend serves the fixed monthly AQI history shown on the dashboard
// and the values derived from it.
package trend

import (
	"strings"
)

// Point is the average AQI for one month, labelled like "Jan 24"
type Point struct {
	Month      string `json:"month"`
	AverageAQI int    `json:"average_aqi"`
}

// Direction tells whether a month was worse or better than the one before
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Reading is one entry of the recent readings list
type Reading struct {
	Label     string    `json:"label"`
	AQI       int       `json:"aqi"`
	Direction Direction `json:"direction"`
}

// Summary is everything the dashboard derives from the monthly table
type Summary struct {
	Current      Point     `json:"current"`
	Previous     Point     `json:"previous"`
	Difference   int       `json:"difference"`
	Band         Band      `json:"band"`
	HealthImpact string    `json:"health_impact"`
	Recent       []Reading `json:"recent"`
}

const (
	// CurrentMonth and PreviousMonth are the months the dashboard highlights
	CurrentMonth  = "Jul 25"
	PreviousMonth = "Jun 25"

	recentFrom = 13
	recentTo   = 18
)

var monthly = []Point{
	{"Jan 24", 354}, {"Feb 24", 217}, {"Mar 24", 175}, {"Apr 24", 183},
	{"May 24", 224}, {"Jun 24", 179}, {"Jul 24", 96}, {"Aug 24", 72},
	{"Sep 24", 105}, {"Oct 24", 234}, {"Nov 24", 374}, {"Dec 24", 293},
	{"Jan 25", 305}, {"Feb 25", 214}, {"Mar 25", 169}, {"Apr 25", 207},
	{"May 25", 237}, {"Jun 25", 173}, {"Jul 25", 105}, {"Aug 25", 85},
	{"Sep 25", 153}, {"Oct 25", 224}, {"Nov 25", 328}, {"Dec 25", 257},
}

// Monthly returns a copy of the 24 month table, oldest first
func Monthly() []Point {
	return append([]Point(nil), monthly...)
}

// Summarize derives the dashboard values from points.
//
// The current month falls back to the last point and the previous month to
// the second to last when their labels are missing. Recent readings are points
// 13 through 17, newest first. A reading goes up when it is strictly above the
// month before it; the very first month is compared against zero.
func Summarize(points []Point, currentLabel, previousLabel string) Summary {
	if len(points) == 0 {
		return Summary{Recent: []Reading{}}
	}

	current, ok := find(points, currentLabel)
	if !ok {
		current = points[len(points)-1]
	}
	previous, ok := find(points, previousLabel)
	if !ok {
		previous = points[max(len(points)-2, 0)]
	}

	return Summary{
		Current:      current,
		Previous:     previous,
		Difference:   current.AverageAQI - previous.AverageAQI,
		Band:         BandFor(current.AverageAQI),
		HealthImpact: HealthImpact(current.AverageAQI),
		Recent:       recent(points),
	}
}

func recent(points []Point) []Reading {
	from, to := min(recentFrom, len(points)), min(recentTo, len(points))

	out := make([]Reading, 0, to-from)
	for i := to - 1; i >= from; i-- {
		prev := 0
		if i > 0 {
			prev = points[i-1].AverageAQI
		}
		dir := Down
		if points[i].AverageAQI > prev {
			dir = Up
		}
		out = append(out, Reading{
			Label:     strings.Replace(points[i].Month, " ", "'", 1),
			AQI:       points[i].AverageAQI,
			Direction: dir,
		})
	}
	return out
}

func find(points []Point, label string) (Point, bool) {
	for _, p := range points {
		if p.Month == label {
			return p, true
		}
	}
	return Point{}, false
}
