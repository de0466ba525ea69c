package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// ShiftRepo provides access to shifts and implements the scheduling
// engine's ShiftStore.  Overlap checking is the engine's job; this
// repository answers "which non-cancelled shifts does this staff
// member hold" and persists commits.
type ShiftRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewShiftRepo returns a ShiftRepo bound to the given database and
// store adapter.
func NewShiftRepo(db *sql.DB, adapter *store.Adapter) *ShiftRepo {
	return &ShiftRepo{db: db, adapter: adapter}
}

const shiftColumns = `id, staff_id, zone_id, role, starts_at, ends_at, break_minutes, status, created_at, updated_at`

// ActiveByStaff returns every non-cancelled shift of the staff member.
func (r *ShiftRepo) ActiveByStaff(ctx context.Context, staffID uint64) ([]model.Shift, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableShifts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE staff_id = ? AND status != ? ORDER BY starts_at`,
		staffID, model.ShiftCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Create inserts a shift and populates its generated ID.
func (r *ShiftRepo) Create(ctx context.Context, s *model.Shift) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableShifts)
	if err != nil {
		return err
	}
	if !ok {
		s.ID = r.adapter.SyntheticID()
		return nil
	}
	var zoneID sql.NullInt64
	if s.ZoneID != nil {
		zoneID = sql.NullInt64{Int64: int64(*s.ZoneID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shifts (staff_id, zone_id, role, starts_at, ends_at, break_minutes, status) VALUES (?,?,?,?,?,?,?)`,
		s.StaffID, zoneID, s.Role, s.StartsAt, s.EndsAt, s.BreakMinutes, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Get fetches a shift by id.
func (r *ShiftRepo) Get(ctx context.Context, id uint64) (*model.Shift, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableShifts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id)
	return scanShift(row)
}

// UpdateStatus persists a shift status transition.  The write is
// guarded on the expected current status so a transition computed
// against a stale read matches zero rows and reports ErrConflict
// instead of clobbering a newer state.
func (r *ShiftRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ShiftStatus) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableShifts)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE shifts SET status = ? WHERE id = ? AND status = ?`, to, id, from)
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

func scanShift(row rowScanner) (*model.Shift, error) {
	var (
		s      model.Shift
		zoneID sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.StaffID, &zoneID, &s.Role, &s.StartsAt, &s.EndsAt, &s.BreakMinutes, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if zoneID.Valid {
		z := uint64(zoneID.Int64)
		s.ZoneID = &z
	}
	return &s, nil
}
