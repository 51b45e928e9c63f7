package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"
)

// Stats summarises a set of named measurement points.
type Stats struct {
	Count int   `json:"count"`
	Min   Value `json:"min"`
	Max   Value `json:"max"`
	Mean  Value `json:"mean"`
	// MinPoint and MaxPoint name the points holding the extremes.
	MinPoint string `json:"min_point,omitempty"`
	MaxPoint string `json:"max_point,omitempty"`
}

// Aggregate computes min, max and mean over the finite values in points.
// An empty input yields Count 0 and undefined statistics.
func Aggregate(points map[string]float64) Stats {
	names := make([]string, 0, len(points))
	for name, v := range points {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return Stats{Min: Undefined, Max: Undefined, Mean: Undefined}
	}
	sort.Strings(names)

	series := make([]aggregator.Point, 0, len(names))
	var st Stats
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, name := range names {
		v := points[name]
		series = append(series, aggregator.Point{Value: v, Timestamp: time.Time{}})
		if v < lo {
			lo, st.MinPoint = v, name
		}
		if v > hi {
			hi, st.MaxPoint = v, name
		}
	}
	st.Count = len(names)
	st.Min = Defined(lo)
	st.Max = Defined(hi)
	st.Mean = Defined(aggregator.Average(series))
	return st
}
