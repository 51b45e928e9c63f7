package repository

import (
	"context"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
)

const (
	brushTable   = "carbon_brush_inspections"
	windingTable = "winding_resistance_tests"
	thermoTable  = "thermography_sessions"
)

func stamp(m *domain.RecordMeta) {
	m.Date = m.Date.UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
}

// Carbon brush inspections

func (r *Repos) ListBrushInspections(ctx context.Context, f domain.RecordFilter) ([]domain.BrushInspection, error) {
	out := []domain.BrushInspection{}
	q, args := recordQuery(brushTable, f)
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *Repos) GetBrushInspection(ctx context.Context, id int64) (*domain.BrushInspection, error) {
	var rec domain.BrushInspection
	q := `SELECT r.*, e.tag_no FROM ` + brushTable + ` r JOIN equipment e ON e.id = r.equipment_id WHERE r.id = ?`
	if err := r.db.GetContext(ctx, &rec, r.db.Rebind(q), id); err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *Repos) CreateBrushInspection(ctx context.Context, rec *domain.BrushInspection) error {
	stamp(&rec.RecordMeta)
	q := r.db.Rebind(`INSERT INTO ` + brushTable + ` (equipment_id, record_date, inspector, remarks, brush_heights, slip_ring_ir, created_at)
		VALUES (?,?,?,?,?,?,?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, q,
		rec.EquipmentID, rec.Date, rec.Inspector, rec.Remarks, rec.BrushHeights, rec.SlipRingIR, rec.CreatedAt,
	).Scan(&rec.ID)
}

func (r *Repos) UpdateBrushInspection(ctx context.Context, rec *domain.BrushInspection) error {
	rec.Date = rec.Date.UTC()
	q := r.db.Rebind(`UPDATE ` + brushTable + ` SET equipment_id = ?, record_date = ?, inspector = ?, remarks = ?,
		brush_heights = ?, slip_ring_ir = ? WHERE id = ?`)
	return affected(r.db.ExecContext(ctx, q,
		rec.EquipmentID, rec.Date, rec.Inspector, rec.Remarks, rec.BrushHeights, rec.SlipRingIR, rec.ID))
}

func (r *Repos) DeleteBrushInspection(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM `+brushTable+` WHERE id = ?`), id))
}

// Winding resistance tests

func (r *Repos) ListWindingTests(ctx context.Context, f domain.RecordFilter) ([]domain.WindingTest, error) {
	out := []domain.WindingTest{}
	q, args := recordQuery(windingTable, f)
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *Repos) GetWindingTest(ctx context.Context, id int64) (*domain.WindingTest, error) {
	var rec domain.WindingTest
	q := `SELECT r.*, e.tag_no FROM ` + windingTable + ` r JOIN equipment e ON e.id = r.equipment_id WHERE r.id = ?`
	if err := r.db.GetContext(ctx, &rec, r.db.Rebind(q), id); err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *Repos) CreateWindingTest(ctx context.Context, rec *domain.WindingTest) error {
	stamp(&rec.RecordMeta)
	q := r.db.Rebind(`INSERT INTO ` + windingTable + ` (equipment_id, record_date, inspector, remarks,
		resistance_uv, resistance_vw, resistance_wu,
		ug_30s, ug_1min, ug_10min, vg_30s, vg_1min, vg_10min, wg_30s, wg_1min, wg_10min, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, q,
		rec.EquipmentID, rec.Date, rec.Inspector, rec.Remarks,
		rec.ResistanceUV, rec.ResistanceVW, rec.ResistanceWU,
		rec.UG30s, rec.UG1Min, rec.UG10Min, rec.VG30s, rec.VG1Min, rec.VG10Min, rec.WG30s, rec.WG1Min, rec.WG10Min,
		rec.CreatedAt,
	).Scan(&rec.ID)
}

func (r *Repos) UpdateWindingTest(ctx context.Context, rec *domain.WindingTest) error {
	rec.Date = rec.Date.UTC()
	q := r.db.Rebind(`UPDATE ` + windingTable + ` SET equipment_id = ?, record_date = ?, inspector = ?, remarks = ?,
		resistance_uv = ?, resistance_vw = ?, resistance_wu = ?,
		ug_30s = ?, ug_1min = ?, ug_10min = ?, vg_30s = ?, vg_1min = ?, vg_10min = ?, wg_30s = ?, wg_1min = ?, wg_10min = ?
		WHERE id = ?`)
	return affected(r.db.ExecContext(ctx, q,
		rec.EquipmentID, rec.Date, rec.Inspector, rec.Remarks,
		rec.ResistanceUV, rec.ResistanceVW, rec.ResistanceWU,
		rec.UG30s, rec.UG1Min, rec.UG10Min, rec.VG30s, rec.VG1Min, rec.VG10Min, rec.WG30s, rec.WG1Min, rec.WG10Min,
		rec.ID))
}

func (r *Repos) DeleteWindingTest(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM `+windingTable+` WHERE id = ?`), id))
}

// Thermography sessions

func (r *Repos) ListThermographySessions(ctx context.Context, f domain.RecordFilter) ([]domain.ThermographySession, error) {
	out := []domain.ThermographySession{}
	q, args := recordQuery(thermoTable, f)
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *Repos) GetThermographySession(ctx context.Context, id int64) (*domain.ThermographySession, error) {
	var rec domain.ThermographySession
	q := `SELECT r.*, e.tag_no FROM ` + thermoTable + ` r JOIN equipment e ON e.id = r.equipment_id WHERE r.id = ?`
	if err := r.db.GetContext(ctx, &rec, r.db.Rebind(q), id); err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *Repos) CreateThermographySession(ctx context.Context, rec *domain.ThermographySession) error {
	stamp(&rec.RecordMeta)
	q := r.db.Rebind(`INSERT INTO ` + thermoTable + ` (equipment_id, record_date, inspector, remarks, temperatures, ambient_c, created_at)
		VALUES (?,?,?,?,?,?,?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, q,
		rec.EquipmentID, rec.Date, rec.Inspector, rec.Remarks, rec.Temperatures, rec.AmbientC, rec.CreatedAt,
	).Scan(&rec.ID)
}

func (r *Repos) UpdateThermographySession(ctx context.Context, rec *domain.ThermographySession) error {
	rec.Date = rec.Date.UTC()
	q := r.db.Rebind(`UPDATE ` + thermoTable + ` SET equipment_id = ?, record_date = ?, inspector = ?, remarks = ?,
		temperatures = ?, ambient_c = ? WHERE id = ?`)
	return affected(r.db.ExecContext(ctx, q,
		rec.EquipmentID, rec.Date, rec.Inspector, rec.Remarks, rec.Temperatures, rec.AmbientC, rec.ID))
}

func (r *Repos) DeleteThermographySession(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM `+thermoTable+` WHERE id = ?`), id))
}

// LastRecordDate returns the most recent record date of any kind for the
// equipment, or the zero time when it has none.
func (r *Repos) LastRecordDate(ctx context.Context, equipmentID int64) (time.Time, error) {
	var last time.Time
	for _, table := range []string{brushTable, windingTable, thermoTable} {
		var dates []time.Time
		q := r.db.Rebind(`SELECT record_date FROM ` + table + ` WHERE equipment_id = ? ORDER BY record_date DESC LIMIT 1`)
		if err := r.db.SelectContext(ctx, &dates, q, equipmentID); err != nil {
			return time.Time{}, err
		}
		if len(dates) > 0 && dates[0].After(last) {
			last = dates[0]
		}
	}
	return last, nil
}
