package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Points maps a named measurement point to its numeric value. Stored as JSON.
type Points map[string]float64

// UnmarshalJSON accepts numbers and numeric strings, as submitted by forms.
// Blank, null and non-numeric entries are dropped rather than read as zero.
func (p *Points) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Points, len(raw))
	for name, v := range raw {
		if f, ok := numeric(v); ok {
			out[name] = f
		}
	}
	*p = out
	return nil
}

func numeric(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (p Points) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Points) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = Points{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("points: unsupported scan type %T", src)
	}
	return p.UnmarshalJSON(b)
}
