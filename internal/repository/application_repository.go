package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// ApplicationRepo provides CRUD operations for applications.  The
// typed response map and the latest screening result are stored as
// JSON columns; re-running screening overwrites the stored result in
// place, results never accumulate.
type ApplicationRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewApplicationRepo returns an ApplicationRepo bound to the given
// database and store adapter.
func NewApplicationRepo(db *sql.DB, adapter *store.Adapter) *ApplicationRepo {
	return &ApplicationRepo{db: db, adapter: adapter}
}

const applicationColumns = `id, posting_id, applicant_name, applicant_email, responses, status, screening, created_at, updated_at`

// Create inserts an application and populates its generated ID.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableApplications)
	if err != nil {
		return err
	}
	if !ok {
		a.ID = r.adapter.SyntheticID()
		return nil
	}
	responses, err := json.Marshal(a.Responses)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (posting_id, applicant_name, applicant_email, responses, status) VALUES (?,?,?,?,?)`,
		a.PostingID, a.ApplicantName, a.ApplicantEmail, responses, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an application.  There is no fallback dataset for
// applications; against an unprovisioned table every ID is absent.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (*model.Application, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableApplications)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	return scanApplication(row)
}

// ListByPosting returns every application submitted to a posting.
func (r *ApplicationRepo) ListByPosting(ctx context.Context, postingID uint64) ([]model.Application, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableApplications)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE posting_id = ? ORDER BY created_at`, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// StoreScreening overwrites the application's screening result and
// advances the status to SCREENED.
func (r *ApplicationRepo) StoreScreening(ctx context.Context, id uint64, result *model.ScreeningResult) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableApplications)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET screening = ?, status = ? WHERE id = ?`,
		b, model.ApplicationScreened, id)
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

// UpdateStatus transitions an application's lifecycle state.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ApplicationStatus) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableApplications)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?`, status, id)
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

func scanApplication(row rowScanner) (*model.Application, error) {
	var (
		a         model.Application
		responses []byte
		screening []byte
	)
	err := row.Scan(&a.ID, &a.PostingID, &a.ApplicantName, &a.ApplicantEmail, &responses, &a.Status, &screening, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &a.Responses); err != nil {
			return nil, err
		}
	}
	if len(screening) > 0 {
		if err := json.Unmarshal(screening, &a.Screening); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
