// Package forecast projects when a wearing measurement will cross its
// replacement threshold.
package forecast

import (
	"math"
	"sort"
	"time"
)

const day = 24 * time.Hour

// maxHorizonDays bounds a projection; slower wear gives no forecast.
const maxHorizonDays = 1_000_000

// Sample is the worst-case measurement of one inspection.
type Sample struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Forecast is a projected threshold crossing.
type Forecast struct {
	ReplacementDate time.Time `json:"replacement_date"`
	RatePerDay      float64   `json:"rate_per_day"`
	DaysRemaining   float64   `json:"days_remaining"`
	LastDate        time.Time `json:"last_date"`
	LastValue       float64   `json:"last_value"`
	Threshold       float64   `json:"threshold"`
	Samples         int       `json:"samples"`
}

// Replacement fits a least-squares line through history, with time expressed
// in days since the first sample, and projects the date at which the value
// reaches critical. ok is false when there are fewer than two samples, the
// trend is not decreasing, or the crossing lies beyond maxHorizonDays.
func Replacement(history []Sample, critical float64) (Forecast, bool) {
	pts := make([]Sample, 0, len(history))
	for _, s := range history {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		pts = append(pts, s)
	}
	if len(pts) < 2 {
		return Forecast{}, false
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })

	slope, ok := slopePerDay(pts)
	if !ok || slope >= 0 {
		return Forecast{}, false
	}

	last := pts[len(pts)-1]
	days := (last.Value - critical) / -slope
	if days < 0 {
		// already past the threshold
		days = 0
	}
	if days > maxHorizonDays {
		return Forecast{}, false
	}
	return Forecast{
		ReplacementDate: project(last.Date, days),
		RatePerDay:      slope,
		DaysRemaining:   days,
		LastDate:        last.Date,
		LastValue:       last.Value,
		Threshold:       critical,
		Samples:         len(pts),
	}, true
}

// project adds whole calendar days then the remainder, keeping each
// time.Duration well inside its range.
func project(from time.Time, days float64) time.Time {
	whole := math.Floor(days)
	return from.AddDate(0, 0, int(whole)).Add(time.Duration((days - whole) * float64(day)))
}

func slopePerDay(pts []Sample) (float64, bool) {
	origin := pts[0].Date
	n := float64(len(pts))
	var sx, sy, sxx, sxy float64
	for _, p := range pts {
		x := p.Date.Sub(origin).Hours() / 24
		sx += x
		sy += p.Value
		sxx += x * x
		sxy += x * p.Value
	}
	den := n*sxx - sx*sx
	if den == 0 {
		// every sample on the same day
		return 0, false
	}
	slope := (n*sxy - sx*sy) / den
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, false
	}
	return slope, true
}
