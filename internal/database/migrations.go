package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// column types differing between postgres and sqlite
type dialect struct {
	pk     string
	ts     string
	jsonb  string
	number string
}

var (
	postgres = dialect{pk: "BIGSERIAL PRIMARY KEY", ts: "TIMESTAMPTZ", jsonb: "JSONB", number: "DOUBLE PRECISION"}
	sqlite   = dialect{pk: "INTEGER PRIMARY KEY AUTOINCREMENT", ts: "DATETIME", jsonb: "TEXT", number: "REAL"}
)

const schema = `
CREATE TABLE IF NOT EXISTS equipment (
    id {{pk}},
    tag_no TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT 'motor',
    location TEXT NOT NULL DEFAULT '',
    created_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS carbon_brush_inspections (
    id {{pk}},
    equipment_id BIGINT NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
    record_date {{ts}} NOT NULL,
    inspector TEXT NOT NULL DEFAULT '',
    remarks TEXT NOT NULL DEFAULT '',
    brush_heights {{json}} NOT NULL,
    slip_ring_ir {{num}},
    created_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS winding_resistance_tests (
    id {{pk}},
    equipment_id BIGINT NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
    record_date {{ts}} NOT NULL,
    inspector TEXT NOT NULL DEFAULT '',
    remarks TEXT NOT NULL DEFAULT '',
    resistance_uv {{num}},
    resistance_vw {{num}},
    resistance_wu {{num}},
    ug_30s {{num}},
    ug_1min {{num}},
    ug_10min {{num}},
    vg_30s {{num}},
    vg_1min {{num}},
    vg_10min {{num}},
    wg_30s {{num}},
    wg_1min {{num}},
    wg_10min {{num}},
    created_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS thermography_sessions (
    id {{pk}},
    equipment_id BIGINT NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
    record_date {{ts}} NOT NULL,
    inspector TEXT NOT NULL DEFAULT '',
    remarks TEXT NOT NULL DEFAULT '',
    temperatures {{json}} NOT NULL,
    ambient_c {{num}},
    created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_brush_equipment_date ON carbon_brush_inspections(equipment_id, record_date);
CREATE INDEX IF NOT EXISTS idx_winding_equipment_date ON winding_resistance_tests(equipment_id, record_date);
CREATE INDEX IF NOT EXISTS idx_thermo_equipment_date ON thermography_sessions(equipment_id, record_date);
`

func dialectFor(driver string) dialect {
	if driver == "sqlite3" {
		return sqlite
	}
	return postgres
}

func render(d dialect) []string {
	ddl := strings.NewReplacer(
		"{{pk}}", d.pk,
		"{{ts}}", d.ts,
		"{{json}}", d.jsonb,
		"{{num}}", d.number,
	).Replace(schema)

	var stmts []string
	for _, s := range strings.Split(ddl, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Migrate creates missing tables and indexes.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range render(dialectFor(db.DriverName())) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
