package domain

import (
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/metrics"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/qr"
)

type EquipmentType string

const (
	Motor                 EquipmentType = "motor"
	ESPTransformer        EquipmentType = "esp_transformer"
	LiquidResistorStarter EquipmentType = "liquid_resistor_starter"
)

func (t EquipmentType) Valid() bool {
	switch t {
	case Motor, ESPTransformer, LiquidResistorStarter:
		return true
	}
	return false
}

type Equipment struct {
	ID        int64         `db:"id" json:"id"`
	TagNo     string        `db:"tag_no" json:"tag_no"`
	Name      string        `db:"name" json:"name"`
	Type      EquipmentType `db:"type" json:"type"`
	Location  string        `db:"location" json:"location"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Reference is the view of e used when resolving QR scans.
func (e Equipment) Reference() qr.EquipmentReference {
	return qr.EquipmentReference{ID: e.ID, Tag: e.TagNo, Name: e.Name, Type: string(e.Type)}
}

// RecordMeta is shared by every inspection record.
type RecordMeta struct {
	ID          int64     `db:"id" json:"id"`
	EquipmentID int64     `db:"equipment_id" json:"equipment_id"`
	TagNo       string    `db:"tag_no" json:"tag_no"`
	Date        time.Time `db:"record_date" json:"date"`
	Inspector   string    `db:"inspector" json:"inspector"`
	Remarks     string    `db:"remarks" json:"remarks"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// BrushInspection is a carbon brush and slip ring inspection.
type BrushInspection struct {
	RecordMeta
	BrushHeights Points   `db:"brush_heights" json:"brush_heights"`
	SlipRingIR   *float64 `db:"slip_ring_ir" json:"slip_ring_ir"`
}

// WindingTest is a winding resistance and insulation resistance test.
type WindingTest struct {
	RecordMeta
	ResistanceUV *float64 `db:"resistance_uv" json:"resistance_uv"`
	ResistanceVW *float64 `db:"resistance_vw" json:"resistance_vw"`
	ResistanceWU *float64 `db:"resistance_wu" json:"resistance_wu"`
	UG30s        *float64 `db:"ug_30s" json:"ug_30s"`
	UG1Min       *float64 `db:"ug_1min" json:"ug_1min"`
	UG10Min      *float64 `db:"ug_10min" json:"ug_10min"`
	VG30s        *float64 `db:"vg_30s" json:"vg_30s"`
	VG1Min       *float64 `db:"vg_1min" json:"vg_1min"`
	VG10Min      *float64 `db:"vg_10min" json:"vg_10min"`
	WG30s        *float64 `db:"wg_30s" json:"wg_30s"`
	WG1Min       *float64 `db:"wg_1min" json:"wg_1min"`
	WG10Min      *float64 `db:"wg_10min" json:"wg_10min"`
}

// Readings returns the insulation readings grouped per phase.
func (w WindingTest) Readings() metrics.PhaseReadings {
	return metrics.PhaseReadings{
		U: metrics.PhaseReading{Sec30: w.UG30s, Min1: w.UG1Min, Min10: w.UG10Min},
		V: metrics.PhaseReading{Sec30: w.VG30s, Min1: w.VG1Min, Min10: w.VG10Min},
		W: metrics.PhaseReading{Sec30: w.WG30s, Min1: w.WG1Min, Min10: w.WG10Min},
	}
}

// ThermographySession is a set of component temperatures taken with a thermal camera.
type ThermographySession struct {
	RecordMeta
	Temperatures Points   `db:"temperatures" json:"temperatures"`
	AmbientC     *float64 `db:"ambient_c" json:"ambient_c"`
}

// RecordKind names a record collection.
type RecordKind string

const (
	KindBrush        RecordKind = "carbon_brush"
	KindWinding      RecordKind = "winding_resistance"
	KindThermography RecordKind = "thermography"
)

func (k RecordKind) Title() string {
	switch k {
	case KindBrush:
		return "Carbon brush inspection"
	case KindWinding:
		return "Winding resistance test"
	case KindThermography:
		return "Thermography session"
	}
	return string(k)
}

// RecordFilter narrows a record listing. Zero fields are ignored.
type RecordFilter struct {
	EquipmentID int64
	TagNo       string
	From        *time.Time
	To          *time.Time
	Limit       int
	Ascending   bool
}
