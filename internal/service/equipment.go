package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cache"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/forecast"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/metrics"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/qr"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

type EquipmentInput struct {
	TagNo    string               `json:"tag_no"`
	Name     string               `json:"name"`
	Type     domain.EquipmentType `json:"type"`
	Location string               `json:"location"`
}

func (in EquipmentInput) equipment() (domain.Equipment, error) {
	e := domain.Equipment{
		TagNo:    strings.TrimSpace(in.TagNo),
		Name:     strings.TrimSpace(in.Name),
		Type:     in.Type,
		Location: strings.TrimSpace(in.Location),
	}
	if e.TagNo == "" {
		return e, invalid("tag_no is required")
	}
	if !e.Type.Valid() {
		return e, invalid("unknown equipment type %q", e.Type)
	}
	if e.Name == "" {
		e.Name = e.TagNo
	}
	return e, nil
}

type EquipmentService struct {
	repos *repository.Repos
	deps  Deps
}

func (s *EquipmentService) List(ctx context.Context, typ domain.EquipmentType) ([]domain.Equipment, error) {
	if typ != "" && !typ.Valid() {
		return nil, invalid("unknown equipment type %q", typ)
	}
	return s.repos.ListEquipment(ctx, typ)
}

func (s *EquipmentService) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	return s.repos.GetEquipment(ctx, id)
}

// tagFree reports ErrConflict when tag belongs to equipment other than id.
func (s *EquipmentService) tagFree(ctx context.Context, tag string, id int64) error {
	other, err := s.repos.GetEquipmentByTag(ctx, tag)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != id:
		return fmt.Errorf("%w: tag %s already registered", ErrConflict, tag)
	}
	return nil
}

func (s *EquipmentService) Create(ctx context.Context, in EquipmentInput) (*domain.Equipment, error) {
	e, err := in.equipment()
	if err != nil {
		return nil, err
	}
	if err := s.tagFree(ctx, e.TagNo, 0); err != nil {
		return nil, err
	}
	if err := s.repos.CreateEquipment(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EquipmentService) Update(ctx context.Context, id int64, in EquipmentInput) (*domain.Equipment, error) {
	cur, err := s.repos.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := in.equipment()
	if err != nil {
		return nil, err
	}
	if err := s.tagFree(ctx, e.TagNo, id); err != nil {
		return nil, err
	}
	e.ID, e.CreatedAt = id, cur.CreatedAt
	if err := s.repos.UpdateEquipment(ctx, &e); err != nil {
		return nil, err
	}
	if e.TagNo != cur.TagNo {
		s.forget(ctx, cur.TagNo)
	}
	return &e, nil
}

// Delete removes the equipment and, through the schema, all of its records.
func (s *EquipmentService) Delete(ctx context.Context, id int64) error {
	cur, err := s.repos.GetEquipment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.DeleteEquipment(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, cur.TagNo)
	return nil
}

func (s *EquipmentService) forget(ctx context.Context, tag string) {
	if s.deps.Status == nil {
		return
	}
	if err := s.deps.Status.Forget(ctx, tag); err != nil {
		logCacheError(err, tag)
	}
}

// Identifiers lists every identifier a scan may carry: the static ESP codes
// followed by the registered tags.
func (s *EquipmentService) Identifiers(ctx context.Context) ([]string, error) {
	tags, err := s.repos.EquipmentTags(ctx)
	if err != nil {
		return nil, err
	}
	return qr.MergeKnownIdentifiers(s.deps.StaticIdentifiers, tags), nil
}

// QRCode renders the label for id. asURL selects the link form, which needs a
// public base URL. size above qr.MaxSize is rejected.
func (s *EquipmentService) QRCode(ctx context.Context, id int64, size int, asURL bool) ([]byte, error) {
	if size > qr.MaxSize {
		return nil, invalid("size must be at most %d", qr.MaxSize)
	}
	e, err := s.repos.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if asURL {
		if s.deps.PublicBaseURL == "" {
			return nil, fmt.Errorf("%w: PUBLIC_BASE_URL is not set", ErrUnavailable)
		}
		return qr.URLLabelPNG(s.deps.PublicBaseURL, e.ID, size)
	}
	return qr.LabelPNG(e.Reference(), size)
}

// Scan resolves a scanned payload against the registry.
func (s *EquipmentService) Scan(ctx context.Context, payload string) (qr.Resolution, bool, error) {
	all, err := s.repos.ListEquipment(ctx, "")
	if err != nil {
		return qr.Resolution{}, false, err
	}
	refs := make([]qr.EquipmentReference, len(all))
	for i, e := range all {
		refs[i] = e.Reference()
	}
	res, ok := qr.Resolve(payload, refs)
	return res, ok, nil
}

// Status returns the cached band per record kind for id.
func (s *EquipmentService) Status(ctx context.Context, id int64) (map[domain.RecordKind]cache.Entry, error) {
	e, err := s.repos.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.deps.Status == nil {
		return nil, fmt.Errorf("%w: status cache is not configured", ErrUnavailable)
	}
	return s.deps.Status.Get(ctx, e.TagNo)
}

// Alerts lists the critical findings logged for id, newest first.
func (s *EquipmentService) Alerts(ctx context.Context, id int64) ([]cloud.Alert, error) {
	e, err := s.repos.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.deps.Alerts == nil {
		return nil, fmt.Errorf("%w: alert log is not configured", ErrUnavailable)
	}
	return s.deps.Alerts.AlertsForTag(ctx, e.TagNo)
}

func (s *EquipmentService) AcknowledgeAlert(ctx context.Context, alertID string) error {
	if strings.TrimSpace(alertID) == "" {
		return invalid("alert id is required")
	}
	if s.deps.Alerts == nil {
		return fmt.Errorf("%w: alert log is not configured", ErrUnavailable)
	}
	err := s.deps.Alerts.AcknowledgeAlert(ctx, alertID)
	if errors.Is(err, cloud.ErrAlertNotFound) {
		return fmt.Errorf("%w: alert %s", repository.ErrNotFound, alertID)
	}
	return err
}

// BrushHistory is the lowest brush height of each inspection of id, oldest
// first. Inspections without heights are skipped.
func (s *EquipmentService) BrushHistory(ctx context.Context, id int64) ([]forecast.Sample, error) {
	recs, err := s.repos.ListBrushInspections(ctx, domain.RecordFilter{EquipmentID: id, Ascending: true})
	if err != nil {
		return nil, err
	}
	out := make([]forecast.Sample, 0, len(recs))
	for _, r := range recs {
		if lo, ok := metrics.Aggregate(r.BrushHeights).Min.Get(); ok {
			out = append(out, forecast.Sample{Date: r.Date, Value: lo})
		}
	}
	return out, nil
}

// Forecast projects when the brushes of id reach the critical height. A nil
// forecast with a nil error means the history gives no projection.
func (s *EquipmentService) Forecast(ctx context.Context, id int64) (*forecast.Forecast, error) {
	if _, err := s.repos.GetEquipment(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.BrushHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	f, ok := forecast.Replacement(history, status.BrushCritical)
	if !ok {
		return nil, nil
	}
	return &f, nil
}
