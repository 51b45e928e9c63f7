// Package views attaches derived metrics and status bands to stored records.
// Nothing here is persisted; views are rebuilt on every read.
package views

import (
	"sort"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/metrics"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

// Classify bands a possibly undefined value; undefined is Unknown.
func Classify(v metrics.Value, k status.Kind) status.Band {
	f, ok := v.Get()
	if !ok {
		return status.Unknown
	}
	return status.Classify(f, k)
}

type BrushView struct {
	domain.BrushInspection
	Heights      metrics.Stats `json:"heights"`
	HeightBand   status.Band   `json:"height_band"`
	SlipRingBand status.Band   `json:"slip_ring_band"`
}

func Brush(rec domain.BrushInspection) BrushView {
	st := metrics.Aggregate(rec.BrushHeights)
	return BrushView{
		BrushInspection: rec,
		Heights:         st,
		HeightBand:      Classify(st.Min, status.KindBrushHeight),
		SlipRingBand:    Classify(metrics.Ptr(rec.SlipRingIR), status.KindSlipRingIR),
	}
}

func (v BrushView) Bands() []status.Band { return []status.Band{v.HeightBand, v.SlipRingBand} }

type WindingView struct {
	domain.WindingTest
	Phases  map[string]metrics.PhaseMetrics `json:"phases"`
	PI      metrics.Value                   `json:"pi"`
	DAR     metrics.Value                   `json:"dar"`
	PIBand  status.Band                     `json:"pi_band"`
	DARBand status.Band                     `json:"dar_band"`
	IRBand  status.Band                     `json:"ir_band"`
}

func Winding(rec domain.WindingTest) WindingView {
	r := rec.Readings()
	pi := metrics.ComputePI(r)
	dar := metrics.ComputeDAR(r)
	return WindingView{
		WindingTest: rec,
		Phases:      metrics.Breakdown(r),
		PI:          pi,
		DAR:         dar,
		PIBand:      Classify(pi, status.KindPolarizationIndex),
		DARBand:     Classify(dar, status.KindDielectricAbsorption),
		IRBand:      Classify(metrics.LowestOneMinute(r), status.KindWindingIR),
	}
}

func (v WindingView) Bands() []status.Band { return []status.Band{v.PIBand, v.DARBand, v.IRBand} }

type ThermographyView struct {
	domain.ThermographySession
	Stats      metrics.Stats          `json:"stats"`
	Band       status.Band            `json:"band"`
	PointBands map[string]status.Band `json:"point_bands"`
}

func Thermography(rec domain.ThermographySession) ThermographyView {
	st := metrics.Aggregate(rec.Temperatures)
	bands := make(map[string]status.Band, len(rec.Temperatures))
	for name, c := range rec.Temperatures {
		bands[name] = status.Temperature(c)
	}
	return ThermographyView{
		ThermographySession: rec,
		Stats:               st,
		Band:                Classify(st.Max, status.KindTemperature),
		PointBands:          bands,
	}
}

func (v ThermographyView) Bands() []status.Band { return []status.Band{v.Band} }

// PointNames returns the sorted union of point names across sets.
func PointNames(sets ...domain.Points) []string {
	seen := map[string]struct{}{}
	for _, s := range sets {
		for name := range s {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
