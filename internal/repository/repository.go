package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = fmt.Errorf("not found: %w", sql.ErrNoRows)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// recordQuery builds the SELECT for a record table joined to its equipment.
func recordQuery(table string, f domain.RecordFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.EquipmentID != 0 {
		conds = append(conds, "r.equipment_id = ?")
		args = append(args, f.EquipmentID)
	}
	if f.TagNo != "" {
		conds = append(conds, "e.tag_no = ?")
		args = append(args, f.TagNo)
	}
	if f.From != nil {
		conds = append(conds, "r.record_date >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		conds = append(conds, "r.record_date <= ?")
		args = append(args, f.To.UTC())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT r.*, e.tag_no FROM %s r JOIN equipment e ON e.id = r.equipment_id", table)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	if f.Ascending {
		b.WriteString(" ORDER BY r.record_date ASC, r.id ASC")
	} else {
		b.WriteString(" ORDER BY r.record_date DESC, r.id DESC")
	}
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return b.String(), args
}
