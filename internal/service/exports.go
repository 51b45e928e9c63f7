package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/export"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/views"
)

const monthLayout = "2006-01"

// ParseMonth reads YYYY-MM as the first instant of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, invalid("month %q is not YYYY-MM", s)
	}
	return t.UTC(), nil
}

type ExportService struct {
	repos   *repository.Repos
	invoker ExportInvoker
}

// RequestMonthly queues the monthly workbook for month.
func (s *ExportService) RequestMonthly(ctx context.Context, month string) error {
	if _, err := ParseMonth(month); err != nil {
		return err
	}
	if s.invoker == nil {
		return fmt.Errorf("%w: export function is not configured", ErrUnavailable)
	}
	return s.invoker.InvokeExportAsync(ctx, month)
}

// Monthly builds a workbook with one sheet per record kind holding every
// record dated within month. rows is the total record count.
func (s *ExportService) Monthly(ctx context.Context, month string) (data []byte, rows int, err error) {
	start, err := ParseMonth(month)
	if err != nil {
		return nil, 0, err
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	f := domain.RecordFilter{From: &start, To: &end, Ascending: true}

	brush, err := s.repos.ListBrushInspections(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	winding, err := s.repos.ListWindingTests(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	thermo, err := s.repos.ListThermographySessions(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	bv := make([]views.BrushView, len(brush))
	for i, r := range brush {
		bv[i] = views.Brush(r)
	}
	wv := make([]views.WindingView, len(winding))
	for i, r := range winding {
		wv[i] = views.Winding(r)
	}
	tv := make([]views.ThermographyView, len(thermo))
	for i, r := range thermo {
		tv[i] = views.Thermography(r)
	}

	data, err = workbook(func(wb *export.Workbook) error {
		if err := wb.AddBrush(bv); err != nil {
			return err
		}
		if err := wb.AddWinding(wv); err != nil {
			return err
		}
		return wb.AddThermography(tv)
	})
	if err != nil {
		return nil, 0, err
	}
	return data, len(bv) + len(wv) + len(tv), nil
}
