// Package service holds the record-keeping use cases: storing inspections,
// deriving their status, and fanning out notifications.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cache"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/events"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
)

var (
	// ErrValidation marks input the caller must fix.
	ErrValidation = errors.New("invalid input")
	// ErrConflict marks a write that clashes with existing data.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable is returned when an optional collaborator is not configured.
	ErrUnavailable = errors.New("service unavailable")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Notifier sends an email-style message.
type Notifier interface {
	Send(ctx context.Context, subject, message string) error
}

// Uploader stores a spreadsheet and returns a download link.
type Uploader interface {
	UploadSpreadsheet(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Alerter is the log of critical findings.
type Alerter interface {
	CreateAlert(ctx context.Context, a cloud.Alert) (cloud.Alert, error)
	AlertsForTag(ctx context.Context, tag string) ([]cloud.Alert, error)
	AcknowledgeAlert(ctx context.Context, alertID string) error
}

type Publisher interface {
	Publish(evt events.RecordCreated) error
}

type StatusCache interface {
	Set(ctx context.Context, tag string, kind domain.RecordKind, e cache.Entry) error
	Get(ctx context.Context, tag string) (map[domain.RecordKind]cache.Entry, error)
	Forget(ctx context.Context, tag string) error
}

type ExportInvoker interface {
	InvokeExportAsync(ctx context.Context, month string) error
}

// Deps are the optional collaborators. Nil fields are skipped.
type Deps struct {
	Notifier Notifier
	Uploader Uploader
	Alerts   Alerter
	Events   Publisher
	Status   StatusCache
	Exports  ExportInvoker

	StaticIdentifiers []string
	PublicBaseURL     string
	FailureRate       float64
	ServiceInterval   time.Duration
}

type Services struct {
	Repos        *repository.Repos
	Equipment    *EquipmentService
	Brush        *BrushService
	Winding      *WindingService
	Thermography *ThermographyService
	Maintenance  *MaintenanceService
	Exports      *ExportService
}

func New(db *sqlx.DB, deps Deps) *Services {
	repos := repository.New(db)
	fx := &effects{deps: deps}
	return &Services{
		Repos:        repos,
		Equipment:    &EquipmentService{repos: repos, deps: deps},
		Brush:        &BrushService{repos: repos, fx: fx},
		Winding:      &WindingService{repos: repos, fx: fx},
		Thermography: &ThermographyService{repos: repos, fx: fx},
		Maintenance:  &MaintenanceService{repos: repos, rate: deps.FailureRate, interval: deps.ServiceInterval},
		Exports:      &ExportService{repos: repos, invoker: deps.Exports},
	}
}
