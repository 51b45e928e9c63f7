// Package status maps raw equipment measurements onto qualitative bands.
package status

import "math"

// Kind identifies which threshold table applies to a measurement.
type Kind int

const (
	KindBrushHeight Kind = iota // mm
	KindSlipRingIR              // GΩ, pass/fail scale
	KindWindingIR               // GΩ, three-band scale
	KindPolarizationIndex
	KindDielectricAbsorption
	KindTemperature // °C
)

var kindNames = map[Kind]string{
	KindBrushHeight:          "brush_height",
	KindSlipRingIR:           "slip_ring_ir",
	KindWindingIR:            "winding_ir",
	KindPolarizationIndex:    "polarization_index",
	KindDielectricAbsorption: "dielectric_absorption_ratio",
	KindTemperature:          "temperature",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Band is a status label.
type Band string

const (
	Critical   Band = "Critical"
	Warning    Band = "Warning"
	Good       Band = "Good"
	Poor       Band = "Poor"
	Acceptable Band = "Acceptable"
	Excellent  Band = "Excellent"
	Normal     Band = "Normal"
	// Unknown is returned for NaN input and for metrics that were never computed.
	Unknown Band = "Unknown"
)

// Thresholds, lower bound inclusive unless noted.
const (
	BrushCritical = 25.0
	BrushWarning  = 32.0

	SlipRingIRMin = 2.0

	WindingIRPoor = 1.0
	WindingIRGood = 10.0

	PIPoor      = 1.5
	PIGood      = 2.0
	PIExcellent = 4.0

	DARPoor      = 1.25
	DARGood      = 1.6
	DARExcellent = 4.0

	// Temperature bands are upper bound inclusive.
	TempNormal  = 60.0
	TempWarning = 80.0
)

// Classify returns the band for v under the given kind's thresholds.
// Infinite values fall into the outermost band on their side.
func Classify(v float64, k Kind) Band {
	if math.IsNaN(v) {
		return Unknown
	}
	switch k {
	case KindBrushHeight:
		return BrushHeight(v)
	case KindSlipRingIR:
		return SlipRingIR(v)
	case KindWindingIR:
		return WindingIR(v)
	case KindPolarizationIndex:
		return PolarizationIndex(v)
	case KindDielectricAbsorption:
		return DielectricAbsorption(v)
	case KindTemperature:
		return Temperature(v)
	}
	return Unknown
}

func BrushHeight(mm float64) Band {
	switch {
	case math.IsNaN(mm):
		return Unknown
	case mm < BrushCritical:
		return Critical
	case mm < BrushWarning:
		return Warning
	}
	return Good
}

// SlipRingIR is the coarse pass/fail scale used on brush inspection sheets.
func SlipRingIR(gohm float64) Band {
	switch {
	case math.IsNaN(gohm):
		return Unknown
	case gohm < SlipRingIRMin:
		return Poor
	}
	return Good
}

// WindingIR is the three-band scale used on winding resistance tests. It is kept
// separate from SlipRingIR.
func WindingIR(gohm float64) Band {
	switch {
	case math.IsNaN(gohm):
		return Unknown
	case gohm < WindingIRPoor:
		return Poor
	case gohm < WindingIRGood:
		return Acceptable
	}
	return Good
}

func PolarizationIndex(pi float64) Band {
	switch {
	case math.IsNaN(pi):
		return Unknown
	case pi < PIPoor:
		return Poor
	case pi < PIGood:
		return Acceptable
	case pi < PIExcellent:
		return Good
	}
	return Excellent
}

func DielectricAbsorption(dar float64) Band {
	switch {
	case math.IsNaN(dar):
		return Unknown
	case dar < DARPoor:
		return Poor
	case dar < DARGood:
		return Acceptable
	case dar < DARExcellent:
		return Good
	}
	return Excellent
}

func Temperature(c float64) Band {
	switch {
	case math.IsNaN(c):
		return Unknown
	case c <= TempNormal:
		return Normal
	case c <= TempWarning:
		return Warning
	}
	return Critical
}

// Alarming reports whether b should raise an alert.
func (b Band) Alarming() bool {
	return b == Critical || b == Poor
}

// Severity orders bands from best (0) to worst so the worst of several
// readings can be picked. Unknown sorts below everything.
func (b Band) Severity() int {
	switch b {
	case Excellent, Normal:
		return 1
	case Good:
		return 2
	case Acceptable:
		return 3
	case Warning:
		return 4
	case Poor:
		return 5
	case Critical:
		return 6
	}
	return 0
}

// Worst returns the most severe band in bs, or Unknown when bs is empty.
func Worst(bs ...Band) Band {
	worst := Unknown
	for _, b := range bs {
		if b.Severity() > worst.Severity() {
			worst = b
		}
	}
	return worst
}
