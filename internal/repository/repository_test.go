package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/database"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
)

func newRepos(t *testing.T) *Repos {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func ptr(v float64) *float64 { return &v }

func TestEquipmentCRUD(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	e := &domain.Equipment{TagNo: "BO.3161.04.M1", Name: "ID fan", Type: domain.Motor}
	if err := r.CreateEquipment(ctx, e); err != nil {
		t.Fatal(err)
	}
	if e.ID == 0 {
		t.Fatal("id not assigned")
	}

	got, err := r.GetEquipmentByTag(ctx, "BO.3161.04.M1")
	if err != nil || got.ID != e.ID || got.Type != domain.Motor {
		t.Fatalf("by tag: %+v %v", got, err)
	}

	e.Location = "Line 4"
	if err := r.UpdateEquipment(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetEquipment(ctx, e.ID)
	if got.Location != "Line 4" {
		t.Fatalf("location = %q", got.Location)
	}

	if _, err := r.GetEquipment(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id err = %v", err)
	}
	if err := r.DeleteEquipment(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing err = %v", err)
	}

	motors, err := r.ListEquipment(ctx, domain.Motor)
	if err != nil || len(motors) != 1 {
		t.Fatalf("list motors: %v %v", motors, err)
	}
	esp, _ := r.ListEquipment(ctx, domain.ESPTransformer)
	if len(esp) != 0 {
		t.Fatalf("esp list = %v", esp)
	}
}

func TestFindOrCreateEquipment(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	a, err := r.FindOrCreateEquipment(ctx, &domain.Equipment{TagNo: "ESP-T1", Type: domain.ESPTransformer})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.FindOrCreateEquipment(ctx, &domain.Equipment{TagNo: "ESP-T1", Name: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID || b.Name != "" {
		t.Fatalf("expected existing row, got %+v vs %+v", a, b)
	}
	tags, _ := r.EquipmentTags(ctx)
	if len(tags) != 1 || tags[0] != "ESP-T1" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestBrushInspectionLifecycle(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	e := &domain.Equipment{TagNo: "M-7", Type: domain.Motor}
	if err := r.CreateEquipment(ctx, e); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	for i, h := range []float64{40, 37, 35} {
		rec := &domain.BrushInspection{
			RecordMeta:   domain.RecordMeta{EquipmentID: e.ID, Date: base.AddDate(0, 0, 7*i), Inspector: "amal"},
			BrushHeights: domain.Points{"A1": h, "A2": h + 1},
			SlipRingIR:   ptr(3.2),
		}
		if err := r.CreateBrushInspection(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	desc, err := r.ListBrushInspections(ctx, domain.RecordFilter{TagNo: "M-7"})
	if err != nil {
		t.Fatal(err)
	}
	if len(desc) != 3 || desc[0].BrushHeights["A1"] != 35 || desc[0].TagNo != "M-7" {
		t.Fatalf("desc = %+v", desc)
	}

	asc, _ := r.ListBrushInspections(ctx, domain.RecordFilter{EquipmentID: e.ID, Ascending: true, Limit: 2})
	if len(asc) != 2 || asc[0].BrushHeights["A1"] != 40 {
		t.Fatalf("asc = %+v", asc)
	}

	from := base.AddDate(0, 0, 6)
	ranged, _ := r.ListBrushInspections(ctx, domain.RecordFilter{From: &from})
	if len(ranged) != 2 {
		t.Fatalf("ranged = %d", len(ranged))
	}

	one, err := r.GetBrushInspection(ctx, desc[0].ID)
	if err != nil || *one.SlipRingIR != 3.2 {
		t.Fatalf("get: %+v %v", one, err)
	}
	one.Remarks = "A1 chipped"
	one.SlipRingIR = nil
	if err := r.UpdateBrushInspection(ctx, one); err != nil {
		t.Fatal(err)
	}
	one, _ = r.GetBrushInspection(ctx, one.ID)
	if one.Remarks != "A1 chipped" || one.SlipRingIR != nil {
		t.Fatalf("after update: %+v", one)
	}

	if err := r.DeleteBrushInspection(ctx, one.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetBrushInspection(ctx, one.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	last, err := r.LastRecordDate(ctx, e.ID)
	if err != nil || !last.Equal(base.AddDate(0, 0, 7)) {
		t.Fatalf("last = %v %v", last, err)
	}
}

func TestWindingAndThermography(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	e := &domain.Equipment{TagNo: "ESP-T3", Type: domain.ESPTransformer}
	if err := r.CreateEquipment(ctx, e); err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	w := &domain.WindingTest{
		RecordMeta: domain.RecordMeta{EquipmentID: e.ID, Date: day},
		UG1Min:     ptr(15.2), UG10Min: ptr(18.5),
	}
	if err := r.CreateWindingTest(ctx, w); err != nil {
		t.Fatal(err)
	}
	got, err := r.GetWindingTest(ctx, w.ID)
	if err != nil || *got.UG10Min != 18.5 || got.VG1Min != nil {
		t.Fatalf("winding: %+v %v", got, err)
	}
	got.VG1Min = ptr(14.8)
	if err := r.UpdateWindingTest(ctx, got); err != nil {
		t.Fatal(err)
	}

	th := &domain.ThermographySession{
		RecordMeta:   domain.RecordMeta{EquipmentID: e.ID, Date: day.AddDate(0, 0, 1)},
		Temperatures: domain.Points{"MCCB": 58, "Bushing": 83.5},
	}
	if err := r.CreateThermographySession(ctx, th); err != nil {
		t.Fatal(err)
	}
	list, _ := r.ListThermographySessions(ctx, domain.RecordFilter{TagNo: "ESP-T3"})
	if len(list) != 1 || list[0].Temperatures["Bushing"] != 83.5 {
		t.Fatalf("thermo list = %+v", list)
	}

	// cascading delete removes dependent records
	if err := r.DeleteEquipment(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetThermographySession(ctx, th.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cascade, err = %v", err)
	}
	if err := r.DeleteWindingTest(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cascade, err = %v", err)
	}
}
