package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// TemplateRepo provides access to workflow templates.  Templates are
// immutable once created: versioning happens by inserting a new row,
// never by destructive mutation, so in-flight candidates holding a
// snapshot are never surprised.
type TemplateRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewTemplateRepo returns a TemplateRepo bound to the given database
// and store adapter.
func NewTemplateRepo(db *sql.DB, adapter *store.Adapter) *TemplateRepo {
	return &TemplateRepo{db: db, adapter: adapter}
}

const templateColumns = `id, name, department, position, steps, estimated_days, created_by, created_at`

// Create inserts a template and populates its generated ID.  Graph
// validation is the caller's responsibility; only valid templates
// reach this method.
func (r *TemplateRepo) Create(ctx context.Context, t *model.WorkflowTemplate) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableTemplates)
	if err != nil {
		return err
	}
	if !ok {
		t.ID = r.adapter.SyntheticID()
		return nil
	}
	steps, err := json.Marshal(t.Steps)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workflow_templates (name, department, position, steps, estimated_days, created_by) VALUES (?,?,?,?,?,?)`,
		t.Name, t.Department, t.Position, steps, t.EstimatedDays, t.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches a template.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*model.WorkflowTemplate, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableTemplates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	var (
		t     model.WorkflowTemplate
		steps []byte
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Department, &t.Position, &steps, &t.EstimatedDays, &t.CreatedBy, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(steps, &t.Steps); err != nil {
		return nil, err
	}
	return &t, nil
}
