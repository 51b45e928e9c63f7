package metrics

import (
	"encoding/json"
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputePIThreePhases(t *testing.T) {
	r := PhaseReadings{
		U: PhaseReading{Min1: f(15.2), Min10: f(18.5)},
		V: PhaseReading{Min1: f(14.8), Min10: f(17.9)},
		W: PhaseReading{Min1: f(15.1), Min10: f(18.2)},
	}
	want := (18.5/15.2 + 17.9/14.8 + 18.2/15.1) / 3
	got, ok := ComputePI(r).Get()
	if !ok {
		t.Fatal("PI undefined")
	}
	if !approx(got, want) {
		t.Fatalf("PI = %v, want %v", got, want)
	}
	if got < 1.21 || got > 1.22 {
		t.Fatalf("PI = %v, expected about 1.217", got)
	}
}

func TestComputePISymmetric(t *testing.T) {
	a := PhaseReading{Min1: f(10), Min10: f(25)}
	b := PhaseReading{Min1: f(3), Min10: f(4)}
	c := PhaseReading{Min1: f(7.5), Min10: f(9)}
	x, _ := ComputePI(PhaseReadings{U: a, V: b, W: c}).Get()
	y, _ := ComputePI(PhaseReadings{U: c, V: a, W: b}).Get()
	z, _ := ComputePI(PhaseReadings{U: b, V: c, W: a}).Get()
	if !approx(x, y) || !approx(y, z) {
		t.Fatalf("PI not symmetric: %v %v %v", x, y, z)
	}
}

func TestComputePIDropsZeroDenominator(t *testing.T) {
	r := PhaseReadings{
		U: PhaseReading{Min1: f(0), Min10: f(18)},
		V: PhaseReading{Min1: f(10), Min10: f(20)},
		W: PhaseReading{Min1: f(10), Min10: f(30)},
	}
	got, ok := ComputePI(r).Get()
	if !ok || !approx(got, 2.5) {
		t.Fatalf("PI = %v,%v want 2.5", got, ok)
	}
}

func TestComputePIAllDropped(t *testing.T) {
	r := PhaseReadings{
		U: PhaseReading{Min1: f(0), Min10: f(1)},
		V: PhaseReading{Min10: f(1)},
	}
	if ComputePI(r).IsDefined() {
		t.Fatal("expected undefined PI")
	}
}

func TestDARZeroThirtySeconds(t *testing.T) {
	v := PhaseDAR(PhaseReading{Sec30: f(0), Min1: f(12)})
	if v.IsDefined() {
		t.Fatal("expected undefined DAR")
	}
	if v.OrZero() != 0 {
		t.Fatalf("OrZero = %v", v.OrZero())
	}
	if v.Format(2) != "N/A" {
		t.Fatalf("Format = %q", v.Format(2))
	}
	got, _ := v.Get()
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("leaked non-finite %v", got)
	}
}

func TestComputeDAR(t *testing.T) {
	r := PhaseReadings{
		U: PhaseReading{Sec30: f(10), Min1: f(15)},
		V: PhaseReading{Sec30: f(0), Min1: f(15)},
		W: PhaseReading{Sec30: f(10), Min1: f(17)},
	}
	got, ok := ComputeDAR(r).Get()
	if !ok || !approx(got, 1.6) {
		t.Fatalf("DAR = %v,%v want 1.6", got, ok)
	}
}

func TestMeasuredZeroIsDefined(t *testing.T) {
	v := Defined(0)
	if !v.IsDefined() {
		t.Fatal("measured zero must be defined")
	}
	if v.Format(1) != "0.0" {
		t.Fatalf("Format = %q", v.Format(1))
	}
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Defined(1.5), B: Undefined})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":1.5,"b":null}` {
		t.Fatalf("json = %s", b)
	}
	var back Value
	if err := json.Unmarshal([]byte("null"), &back); err != nil || back.IsDefined() {
		t.Fatalf("unmarshal null: %v %v", back, err)
	}
}

func TestAggregate(t *testing.T) {
	st := Aggregate(map[string]float64{"A1": 30, "A2": 42, "B1": 27, "bad": math.NaN()})
	if st.Count != 3 {
		t.Fatalf("count = %d", st.Count)
	}
	if v, _ := st.Min.Get(); v != 27 || st.MinPoint != "B1" {
		t.Errorf("min = %v at %s", v, st.MinPoint)
	}
	if v, _ := st.Max.Get(); v != 42 || st.MaxPoint != "A2" {
		t.Errorf("max = %v at %s", v, st.MaxPoint)
	}
	if v, _ := st.Mean.Get(); !approx(v, 33) {
		t.Errorf("mean = %v", v)
	}
}

func TestAggregateEmpty(t *testing.T) {
	st := Aggregate(map[string]float64{})
	if st.Count != 0 || st.Mean.IsDefined() || st.Min.IsDefined() || st.Max.IsDefined() {
		t.Fatalf("expected undefined stats, got %+v", st)
	}
}

func TestLowestOneMinute(t *testing.T) {
	r := PhaseReadings{U: PhaseReading{Min1: f(4)}, W: PhaseReading{Min1: f(2.5)}}
	if v, ok := LowestOneMinute(r).Get(); !ok || v != 2.5 {
		t.Fatalf("lowest = %v,%v", v, ok)
	}
	if LowestOneMinute(PhaseReadings{}).IsDefined() {
		t.Fatal("expected undefined")
	}
}
