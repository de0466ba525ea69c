package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// CandidateRepo provides access to onboarding candidates.  Step
// completion and approval serialize writes per candidate through
// GetForUpdateTx, so two near-simultaneous completions cannot lose an
// update and approval is at-most-once even under concurrent calls.
// The Tx methods run only inside caller-owned transactions and assume
// a provisioned table; handlers check provisioning before opening the
// transaction.
type CandidateRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewCandidateRepo returns a CandidateRepo bound to the given database
// and store adapter.
func NewCandidateRepo(db *sql.DB, adapter *store.Adapter) *CandidateRepo {
	return &CandidateRepo{db: db, adapter: adapter}
}

// DB exposes the underlying handle so handlers can open transactions.
func (r *CandidateRepo) DB() *sql.DB { return r.db }

const candidateColumns = `id, application_id, template_id, steps, completed_steps, stage, staff_id, reject_reason, created_at, updated_at`

// Provisioned reports whether the candidates table is ready for the
// transactional paths.
func (r *CandidateRepo) Provisioned(ctx context.Context) (bool, error) {
	return r.adapter.Provisioned(ctx, store.TableCandidates)
}

// Create inserts a candidate with its template snapshot and populates
// the generated ID.
func (r *CandidateRepo) Create(ctx context.Context, c *model.Candidate) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableCandidates)
	if err != nil {
		return err
	}
	if !ok {
		c.ID = r.adapter.SyntheticID()
		return nil
	}
	steps, err := json.Marshal(c.Steps)
	if err != nil {
		return err
	}
	completed, err := json.Marshal(c.CompletedSteps)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO candidates (application_id, template_id, steps, completed_steps, stage, staff_id, reject_reason) VALUES (?,?,?,?,?,0,'')`,
		c.ApplicationID, c.TemplateID, steps, completed, c.Stage)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a candidate outside a transaction.
func (r *CandidateRepo) GetByID(ctx context.Context, id uint64) (*model.Candidate, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableCandidates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	return scanCandidate(row)
}

// GetForUpdateTx fetches a candidate inside the given transaction with
// a row lock, serializing all mutations of the same candidate.
func (r *CandidateRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Candidate, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ? FOR UPDATE`, id)
	return scanCandidate(row)
}

// UpdateTx writes the candidate's mutable fields inside the given
// transaction.  The step snapshot is immutable and is never updated.
func (r *CandidateRepo) UpdateTx(ctx context.Context, tx *sql.Tx, c *model.Candidate) error {
	completed, err := json.Marshal(c.CompletedSteps)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE candidates SET completed_steps = ?, stage = ?, staff_id = ?, reject_reason = ? WHERE id = ?`,
		completed, c.Stage, c.StaffID, c.RejectReason, c.ID)
	return err
}

func scanCandidate(row rowScanner) (*model.Candidate, error) {
	var (
		c         model.Candidate
		steps     []byte
		completed []byte
	)
	err := row.Scan(&c.ID, &c.ApplicationID, &c.TemplateID, &steps, &completed, &c.Stage, &c.StaffID, &c.RejectReason, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(steps, &c.Steps); err != nil {
		return nil, err
	}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &c.CompletedSteps); err != nil {
			return nil, err
		}
	}
	if c.CompletedSteps == nil {
		c.CompletedSteps = []string{}
	}
	return &c, nil
}
