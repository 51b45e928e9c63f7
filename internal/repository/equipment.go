package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
)

func (r *Repos) ListEquipment(ctx context.Context, typ domain.EquipmentType) ([]domain.Equipment, error) {
	out := []domain.Equipment{}
	q := `SELECT id, tag_no, name, type, location, created_at FROM equipment`
	var args []any
	if typ != "" {
		q += ` WHERE type = ?`
		args = append(args, typ)
	}
	q += ` ORDER BY tag_no`
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *Repos) GetEquipment(ctx context.Context, id int64) (*domain.Equipment, error) {
	var e domain.Equipment
	err := r.db.GetContext(ctx, &e, r.db.Rebind(`SELECT id, tag_no, name, type, location, created_at FROM equipment WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *Repos) GetEquipmentByTag(ctx context.Context, tag string) (*domain.Equipment, error) {
	var e domain.Equipment
	err := r.db.GetContext(ctx, &e, r.db.Rebind(`SELECT id, tag_no, name, type, location, created_at FROM equipment WHERE tag_no = ?`), tag)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// EquipmentTags lists every tag number in the registry.
func (r *Repos) EquipmentTags(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `SELECT tag_no FROM equipment ORDER BY tag_no`)
	return out, err
}

func (r *Repos) CreateEquipment(ctx context.Context, e *domain.Equipment) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	q := r.db.Rebind(`INSERT INTO equipment(tag_no, name, type, location, created_at) VALUES (?,?,?,?,?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, q, e.TagNo, e.Name, e.Type, e.Location, e.CreatedAt).Scan(&e.ID)
}

func (r *Repos) UpdateEquipment(ctx context.Context, e *domain.Equipment) error {
	q := r.db.Rebind(`UPDATE equipment SET tag_no = ?, name = ?, type = ?, location = ? WHERE id = ?`)
	return affected(r.db.ExecContext(ctx, q, e.TagNo, e.Name, e.Type, e.Location, e.ID))
}

func (r *Repos) DeleteEquipment(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM equipment WHERE id = ?`), id))
}

// FindOrCreateEquipment returns the equipment tagged e.TagNo, inserting e when
// absent. The lookup and insert are not in one transaction; two concurrent
// calls for a new tag can race and the loser fails on the unique constraint.
func (r *Repos) FindOrCreateEquipment(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	found, err := r.GetEquipmentByTag(ctx, e.TagNo)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := r.CreateEquipment(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
