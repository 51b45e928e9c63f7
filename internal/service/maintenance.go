package service

import (
	"context"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/anomaly"
	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/maintenance"
	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/metrics"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
)

const (
	defaultFailureRate     = 0.3
	defaultServiceInterval = 90 * 24 * time.Hour
	hoursPerDay            = 20
)

// ServicePlan is the maintenance outlook for one piece of equipment.
type ServicePlan struct {
	EquipmentID       int64     `json:"equipment_id"`
	TagNo             string    `json:"tag_no"`
	LastService       time.Time `json:"last_service"`
	HoursRun          float64   `json:"hours_run"`
	FailureRisk30Days float64   `json:"failure_risk_30_days"`
	FailureRisk90Days float64   `json:"failure_risk_90_days"`
	NextServiceDate   time.Time `json:"next_service_date"`
	DaysUntilService  int       `json:"days_until_service"`
	TemperatureSpikes int       `json:"temperature_spikes"`
	Recommendation    string    `json:"recommendation"`
}

type MaintenanceService struct {
	repos    *repository.Repos
	rate     float64
	interval time.Duration
}

// ServicePlan projects the next service of id. The last service is the most
// recent record of any kind, or the registration date when there is none.
func (s *MaintenanceService) ServicePlan(ctx context.Context, id int64) (*ServicePlan, error) {
	e, err := s.repos.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	last, err := s.repos.LastRecordDate(ctx, id)
	if err != nil {
		return nil, err
	}
	if last.IsZero() {
		last = e.CreatedAt
	}
	rate, interval := s.rate, s.interval
	if rate <= 0 {
		rate = defaultFailureRate
	}
	if interval <= 0 {
		interval = defaultServiceInterval
	}

	health := maintenance.AssetHealth{
		HoursRun:           time.Since(e.CreatedAt).Hours() / 24 * hoursPerDay,
		FailureRatePerYear: rate,
		LastService:        last,
		ServiceInterval:    interval,
	}
	risk30 := maintenance.FailureRisk(health.FailureRatePerYear, 30*24*time.Hour)
	risk90 := maintenance.FailureRisk(health.FailureRatePerYear, 90*24*time.Hour)
	next := maintenance.NextServiceDate(health)

	spikes, err := s.temperatureSpikes(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("tag", e.TagNo).Msg("thermography history unavailable")
	}

	days := int(time.Until(next).Hours() / 24)
	return &ServicePlan{
		EquipmentID:       e.ID,
		TagNo:             e.TagNo,
		LastService:       last,
		HoursRun:          health.HoursRun,
		FailureRisk30Days: risk30 * 100,
		FailureRisk90Days: risk90 * 100,
		NextServiceDate:   next,
		DaysUntilService:  days,
		TemperatureSpikes: spikes,
		Recommendation:    recommend(risk30, days, spikes),
	}, nil
}

// temperatureSpikes counts sessions whose hottest point jumps away from the
// recent trend.
func (s *MaintenanceService) temperatureSpikes(ctx context.Context, id int64) (int, error) {
	recs, err := s.repos.ListThermographySessions(ctx, domain.RecordFilter{EquipmentID: id, Ascending: true})
	if err != nil {
		return 0, err
	}
	readings := make([]anomaly.Reading, 0, len(recs))
	for _, r := range recs {
		if hot, ok := metrics.Aggregate(r.Temperatures).Max.Get(); ok {
			readings = append(readings, anomaly.Reading{Consumption: hot})
		}
	}
	if len(readings) < 4 {
		return 0, nil
	}
	detector := &anomaly.AnomalyDetector{Threshold: 2.0, WindowSize: 3}
	return len(detector.DetectSpikes(readings)), nil
}

func recommend(risk30 float64, days, spikes int) string {
	switch {
	case days < 0:
		return "Service overdue: schedule immediately"
	case risk30 > 0.5 || spikes > 0:
		return "Schedule inspection within the next 7 days"
	case days <= 30:
		return "Schedule service within the next 30 days"
	}
	return "Equipment operating normally"
}
