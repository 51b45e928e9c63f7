package metrics

// PhaseReading holds the timed insulation resistance readings of one phase
// against ground, in GΩ. Missing readings are nil.
type PhaseReading struct {
	Sec30 *float64 `json:"sec30"`
	Min1  *float64 `json:"min1"`
	Min10 *float64 `json:"min10"`
}

// PhaseReadings groups the U, V and W phase readings of one test.
type PhaseReadings struct {
	U PhaseReading `json:"u"`
	V PhaseReading `json:"v"`
	W PhaseReading `json:"w"`
}

func (r PhaseReadings) phases() [3]PhaseReading {
	return [3]PhaseReading{r.U, r.V, r.W}
}

// PhasePI is IR(10 min) / IR(1 min) for a single phase.
func PhasePI(p PhaseReading) Value {
	return ratio(Ptr(p.Min10), Ptr(p.Min1))
}

// PhaseDAR is IR(1 min) / IR(30 s) for a single phase.
func PhaseDAR(p PhaseReading) Value {
	return ratio(Ptr(p.Min1), Ptr(p.Sec30))
}

// ComputePI returns the mean polarization index over the phases whose ratio is
// defined. It is undefined when no phase qualifies.
func ComputePI(r PhaseReadings) Value {
	return meanOf(r, PhasePI)
}

// ComputeDAR returns the mean dielectric absorption ratio over the phases
// whose ratio is defined.
func ComputeDAR(r PhaseReadings) Value {
	return meanOf(r, PhaseDAR)
}

func meanOf(r PhaseReadings, f func(PhaseReading) Value) Value {
	var sum float64
	var n int
	for _, p := range r.phases() {
		if v, ok := f(p).Get(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return Undefined
	}
	return Defined(sum / float64(n))
}

// PhaseMetrics is the per-phase breakdown shown on a winding test.
type PhaseMetrics struct {
	PI  Value `json:"pi"`
	DAR Value `json:"dar"`
}

// Breakdown returns the per-phase PI and DAR keyed by phase letter.
func Breakdown(r PhaseReadings) map[string]PhaseMetrics {
	return map[string]PhaseMetrics{
		"U": {PI: PhasePI(r.U), DAR: PhaseDAR(r.U)},
		"V": {PI: PhasePI(r.V), DAR: PhaseDAR(r.V)},
		"W": {PI: PhasePI(r.W), DAR: PhaseDAR(r.W)},
	}
}

// LowestOneMinute returns the smallest 1-minute reading across phases.
func LowestOneMinute(r PhaseReadings) Value {
	out := Undefined
	for _, p := range r.phases() {
		v, ok := Ptr(p.Min1).Get()
		if !ok {
			continue
		}
		if cur, set := out.Get(); !set || v < cur {
			out = Defined(v)
		}
	}
	return out
}
