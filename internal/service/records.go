package service

import (
	"context"
	"strings"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/export"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/views"
)

// RecordInput carries the fields shared by every record kind. Equipment is
// created on first use of a tag with EquipmentName and EquipmentType.
type RecordInput struct {
	TagNo         string               `json:"tag_no"`
	EquipmentName string               `json:"equipment_name"`
	EquipmentType domain.EquipmentType `json:"equipment_type"`
	Date          string               `json:"date"`
	Inspector     string               `json:"inspector"`
	Remarks       string               `json:"remarks"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts a full timestamp or a bare date; empty means now.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid("date %q is not YYYY-MM-DD or RFC 3339", s)
}

func resolveMeta(ctx context.Context, repos *repository.Repos, in RecordInput) (domain.RecordMeta, error) {
	tag := strings.TrimSpace(in.TagNo)
	if tag == "" {
		return domain.RecordMeta{}, invalid("tag_no is required")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return domain.RecordMeta{}, err
	}
	typ := in.EquipmentType
	if typ == "" {
		typ = domain.Motor
	}
	if !typ.Valid() {
		return domain.RecordMeta{}, invalid("unknown equipment_type %q", typ)
	}
	name := strings.TrimSpace(in.EquipmentName)
	if name == "" {
		name = tag
	}
	eq, err := repos.FindOrCreateEquipment(ctx, &domain.Equipment{TagNo: tag, Name: name, Type: typ})
	if err != nil {
		return domain.RecordMeta{}, err
	}
	return domain.RecordMeta{
		EquipmentID: eq.ID,
		TagNo:       eq.TagNo,
		Date:        date,
		Inspector:   strings.TrimSpace(in.Inspector),
		Remarks:     in.Remarks,
	}, nil
}

func nonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return invalid("%s must not be negative", field)
	}
	return nil
}

func nonNegativePoints(field string, pts domain.Points) error {
	for name, v := range pts {
		if v < 0 {
			return invalid("%s[%s] must not be negative", field, name)
		}
	}
	return nil
}

func workbook(add func(*export.Workbook) error) ([]byte, error) {
	wb := export.NewWorkbook()
	if err := add(wb); err != nil {
		return nil, err
	}
	return wb.Bytes()
}

// Carbon brush inspections

type BrushInput struct {
	RecordInput
	BrushHeights domain.Points `json:"brush_heights"`
	SlipRingIR   *float64      `json:"slip_ring_ir"`
}

func (in BrushInput) validate() error {
	if err := nonNegativePoints("brush_heights", in.BrushHeights); err != nil {
		return err
	}
	return nonNegative("slip_ring_ir", in.SlipRingIR)
}

type BrushService struct {
	repos *repository.Repos
	fx    *effects
}

func (s *BrushService) List(ctx context.Context, f domain.RecordFilter) ([]views.BrushView, error) {
	recs, err := s.repos.ListBrushInspections(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]views.BrushView, len(recs))
	for i, r := range recs {
		out[i] = views.Brush(r)
	}
	return out, nil
}

func (s *BrushService) Get(ctx context.Context, id int64) (views.BrushView, error) {
	rec, err := s.repos.GetBrushInspection(ctx, id)
	if err != nil {
		return views.BrushView{}, err
	}
	return views.Brush(*rec), nil
}

func (s *BrushService) build(ctx context.Context, in BrushInput) (domain.BrushInspection, error) {
	if err := in.validate(); err != nil {
		return domain.BrushInspection{}, err
	}
	meta, err := resolveMeta(ctx, s.repos, in.RecordInput)
	if err != nil {
		return domain.BrushInspection{}, err
	}
	return domain.BrushInspection{RecordMeta: meta, BrushHeights: in.BrushHeights, SlipRingIR: in.SlipRingIR}, nil
}

func (s *BrushService) Create(ctx context.Context, in BrushInput) (views.BrushView, error) {
	rec, err := s.build(ctx, in)
	if err != nil {
		return views.BrushView{}, err
	}
	if err := s.repos.CreateBrushInspection(ctx, &rec); err != nil {
		return views.BrushView{}, err
	}
	v := views.Brush(rec)
	s.fx.recordCreated(ctx, created{
		kind:  domain.KindBrush,
		meta:  rec.RecordMeta,
		bands: v.Bands(),
		sheet: func(wb *export.Workbook) error { return wb.AddBrush([]views.BrushView{v}) },
	})
	return v, nil
}

func (s *BrushService) Update(ctx context.Context, id int64, in BrushInput) (views.BrushView, error) {
	if _, err := s.repos.GetBrushInspection(ctx, id); err != nil {
		return views.BrushView{}, err
	}
	rec, err := s.build(ctx, in)
	if err != nil {
		return views.BrushView{}, err
	}
	rec.ID = id
	if err := s.repos.UpdateBrushInspection(ctx, &rec); err != nil {
		return views.BrushView{}, err
	}
	return s.Get(ctx, id)
}

func (s *BrushService) Delete(ctx context.Context, id int64) error {
	return s.repos.DeleteBrushInspection(ctx, id)
}

// Export renders the inspections matching f as a workbook.
func (s *BrushService) Export(ctx context.Context, f domain.RecordFilter) ([]byte, error) {
	recs, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return workbook(func(wb *export.Workbook) error { return wb.AddBrush(recs) })
}

func (s *BrushService) ExportOne(ctx context.Context, id int64) ([]byte, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return workbook(func(wb *export.Workbook) error { return wb.AddBrush([]views.BrushView{v}) })
}

// Winding resistance tests

type WindingInput struct {
	RecordInput
	ResistanceUV *float64 `json:"resistance_uv"`
	ResistanceVW *float64 `json:"resistance_vw"`
	ResistanceWU *float64 `json:"resistance_wu"`
	UG30s        *float64 `json:"ug_30s"`
	UG1Min       *float64 `json:"ug_1min"`
	UG10Min      *float64 `json:"ug_10min"`
	VG30s        *float64 `json:"vg_30s"`
	VG1Min       *float64 `json:"vg_1min"`
	VG10Min      *float64 `json:"vg_10min"`
	WG30s        *float64 `json:"wg_30s"`
	WG1Min       *float64 `json:"wg_1min"`
	WG10Min      *float64 `json:"wg_10min"`
}

func (in WindingInput) validate() error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"resistance_uv", in.ResistanceUV}, {"resistance_vw", in.ResistanceVW}, {"resistance_wu", in.ResistanceWU},
		{"ug_30s", in.UG30s}, {"ug_1min", in.UG1Min}, {"ug_10min", in.UG10Min},
		{"vg_30s", in.VG30s}, {"vg_1min", in.VG1Min}, {"vg_10min", in.VG10Min},
		{"wg_30s", in.WG30s}, {"wg_1min", in.WG1Min}, {"wg_10min", in.WG10Min},
	}
	for _, f := range fields {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

type WindingService struct {
	repos *repository.Repos
	fx    *effects
}

func (s *WindingService) List(ctx context.Context, f domain.RecordFilter) ([]views.WindingView, error) {
	recs, err := s.repos.ListWindingTests(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]views.WindingView, len(recs))
	for i, r := range recs {
		out[i] = views.Winding(r)
	}
	return out, nil
}

func (s *WindingService) Get(ctx context.Context, id int64) (views.WindingView, error) {
	rec, err := s.repos.GetWindingTest(ctx, id)
	if err != nil {
		return views.WindingView{}, err
	}
	return views.Winding(*rec), nil
}

func (s *WindingService) build(ctx context.Context, in WindingInput) (domain.WindingTest, error) {
	if err := in.validate(); err != nil {
		return domain.WindingTest{}, err
	}
	meta, err := resolveMeta(ctx, s.repos, in.RecordInput)
	if err != nil {
		return domain.WindingTest{}, err
	}
	return domain.WindingTest{
		RecordMeta:   meta,
		ResistanceUV: in.ResistanceUV, ResistanceVW: in.ResistanceVW, ResistanceWU: in.ResistanceWU,
		UG30s: in.UG30s, UG1Min: in.UG1Min, UG10Min: in.UG10Min,
		VG30s: in.VG30s, VG1Min: in.VG1Min, VG10Min: in.VG10Min,
		WG30s: in.WG30s, WG1Min: in.WG1Min, WG10Min: in.WG10Min,
	}, nil
}

func (s *WindingService) Create(ctx context.Context, in WindingInput) (views.WindingView, error) {
	rec, err := s.build(ctx, in)
	if err != nil {
		return views.WindingView{}, err
	}
	if err := s.repos.CreateWindingTest(ctx, &rec); err != nil {
		return views.WindingView{}, err
	}
	v := views.Winding(rec)
	s.fx.recordCreated(ctx, created{
		kind:  domain.KindWinding,
		meta:  rec.RecordMeta,
		bands: v.Bands(),
		sheet: func(wb *export.Workbook) error { return wb.AddWinding([]views.WindingView{v}) },
	})
	return v, nil
}

func (s *WindingService) Update(ctx context.Context, id int64, in WindingInput) (views.WindingView, error) {
	if _, err := s.repos.GetWindingTest(ctx, id); err != nil {
		return views.WindingView{}, err
	}
	rec, err := s.build(ctx, in)
	if err != nil {
		return views.WindingView{}, err
	}
	rec.ID = id
	if err := s.repos.UpdateWindingTest(ctx, &rec); err != nil {
		return views.WindingView{}, err
	}
	return s.Get(ctx, id)
}

func (s *WindingService) Delete(ctx context.Context, id int64) error {
	return s.repos.DeleteWindingTest(ctx, id)
}

func (s *WindingService) Export(ctx context.Context, f domain.RecordFilter) ([]byte, error) {
	recs, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return workbook(func(wb *export.Workbook) error { return wb.AddWinding(recs) })
}

func (s *WindingService) ExportOne(ctx context.Context, id int64) ([]byte, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return workbook(func(wb *export.Workbook) error { return wb.AddWinding([]views.WindingView{v}) })
}

// Thermography sessions

type ThermographyInput struct {
	RecordInput
	Temperatures domain.Points `json:"temperatures"`
	AmbientC     *float64      `json:"ambient_c"`
}

type ThermographyService struct {
	repos *repository.Repos
	fx    *effects
}

func (s *ThermographyService) List(ctx context.Context, f domain.RecordFilter) ([]views.ThermographyView, error) {
	recs, err := s.repos.ListThermographySessions(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]views.ThermographyView, len(recs))
	for i, r := range recs {
		out[i] = views.Thermography(r)
	}
	return out, nil
}

func (s *ThermographyService) Get(ctx context.Context, id int64) (views.ThermographyView, error) {
	rec, err := s.repos.GetThermographySession(ctx, id)
	if err != nil {
		return views.ThermographyView{}, err
	}
	return views.Thermography(*rec), nil
}

func (s *ThermographyService) build(ctx context.Context, in ThermographyInput) (domain.ThermographySession, error) {
	meta, err := resolveMeta(ctx, s.repos, in.RecordInput)
	if err != nil {
		return domain.ThermographySession{}, err
	}
	return domain.ThermographySession{RecordMeta: meta, Temperatures: in.Temperatures, AmbientC: in.AmbientC}, nil
}

func (s *ThermographyService) Create(ctx context.Context, in ThermographyInput) (views.ThermographyView, error) {
	rec, err := s.build(ctx, in)
	if err != nil {
		return views.ThermographyView{}, err
	}
	if err := s.repos.CreateThermographySession(ctx, &rec); err != nil {
		return views.ThermographyView{}, err
	}
	v := views.Thermography(rec)
	s.fx.recordCreated(ctx, created{
		kind:  domain.KindThermography,
		meta:  rec.RecordMeta,
		bands: v.Bands(),
		sheet: func(wb *export.Workbook) error { return wb.AddThermography([]views.ThermographyView{v}) },
	})
	return v, nil
}

func (s *ThermographyService) Update(ctx context.Context, id int64, in ThermographyInput) (views.ThermographyView, error) {
	if _, err := s.repos.GetThermographySession(ctx, id); err != nil {
		return views.ThermographyView{}, err
	}
	rec, err := s.build(ctx, in)
	if err != nil {
		return views.ThermographyView{}, err
	}
	rec.ID = id
	if err := s.repos.UpdateThermographySession(ctx, &rec); err != nil {
		return views.ThermographyView{}, err
	}
	return s.Get(ctx, id)
}

func (s *ThermographyService) Delete(ctx context.Context, id int64) error {
	return s.repos.DeleteThermographySession(ctx, id)
}

func (s *ThermographyService) Export(ctx context.Context, f domain.RecordFilter) ([]byte, error) {
	recs, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return workbook(func(wb *export.Workbook) error { return wb.AddThermography(recs) })
}

func (s *ThermographyService) ExportOne(ctx context.Context, id int64) ([]byte, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return workbook(func(wb *export.Workbook) error { return wb.AddThermography([]views.ThermographyView{v}) })
}
