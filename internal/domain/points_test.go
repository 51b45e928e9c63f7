package domain

import (
	"encoding/json"
	"testing"
)

func TestPointsDropsNonNumeric(t *testing.T) {
	var p Points
	in := `{"A1": 31.5, "A2": "29", "A3": "", "A4": null, "A5": "worn", "A6": true}`
	if err := json.Unmarshal([]byte(in), &p); err != nil {
		t.Fatal(err)
	}
	if len(p) != 2 || p["A1"] != 31.5 || p["A2"] != 29 {
		t.Fatalf("got %v", p)
	}
	if _, ok := p["A3"]; ok {
		t.Fatal("blank entry must be absent, not zero")
	}
}

func TestPointsScanValue(t *testing.T) {
	p := Points{"MCCB": 54.2}
	v, err := p.Value()
	if err != nil {
		t.Fatal(err)
	}
	var back Points
	if err := back.Scan(v); err != nil {
		t.Fatal(err)
	}
	if back["MCCB"] != 54.2 {
		t.Fatalf("got %v", back)
	}
	if err := back.Scan([]byte(`{"x":1}`)); err != nil || back["x"] != 1 {
		t.Fatalf("bytes scan: %v %v", back, err)
	}
	if err := back.Scan(nil); err != nil || len(back) != 0 {
		t.Fatalf("nil scan: %v %v", back, err)
	}
	if err := back.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}

func TestWindingReadings(t *testing.T) {
	one := 1.0
	w := WindingTest{UG1Min: &one, WG30s: &one}
	r := w.Readings()
	if r.U.Min1 != &one || r.W.Sec30 != &one || r.V.Min1 != nil {
		t.Fatalf("got %+v", r)
	}
}
