package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// StaffRepo provides access to activated staff members.  Rows are
// inserted exactly once per approved candidate — CreateTx is the only
// insert path and runs inside the approval transaction — and are never
// deleted, only status-transitioned.
type StaffRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewStaffRepo returns a StaffRepo bound to the given database and
// store adapter.
func NewStaffRepo(db *sql.DB, adapter *store.Adapter) *StaffRepo {
	return &StaffRepo{db: db, adapter: adapter}
}

const staffColumns = `id, candidate_id, name, email, role, department, employment_type, status, created_at, updated_at`

// CreateTx inserts a staff member inside the approval transaction and
// populates the generated ID.
func (r *StaffRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.StaffMember) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO staff_members (candidate_id, name, email, role, department, employment_type, status) VALUES (?,?,?,?,?,?,?)`,
		s.CandidateID, s.Name, s.Email, s.Role, s.Department, s.Employment, s.Status)
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

// GetByID fetches a staff member, serving the fallback dataset when
// the table is not yet provisioned.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.StaffMember, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableStaff)
	if err != nil {
		return nil, err
	}
	if !ok {
		for _, s := range store.FallbackStaff() {
			if s.ID == id {
				return &s, nil
			}
		}
		return nil, ErrNotFound
	}
	var s model.StaffMember
	err = r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff_members WHERE id = ?`, id).
		Scan(&s.ID, &s.CandidateID, &s.Name, &s.Email, &s.Role, &s.Department, &s.Employment, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStatus applies an HR status transition.  Staff rows are never
// deleted; termination is just another status.
func (r *StaffRepo) UpdateStatus(ctx context.Context, id uint64, status model.StaffStatus) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableStaff)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff_members SET status = ? WHERE id = ?`, status, id)
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
