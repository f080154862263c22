// internal/database/audits.sql.go
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"audit-dashboard/internal/model"
)

const getAuditRunByKey = `
SELECT id, run_key, project_id, started_at, finished_at, status, created_at, updated_at
FROM audit_runs
WHERE run_key = $1
`

func (q *Queries) GetAuditRunByKey(ctx context.Context, runKey string) (AuditRun, error) {
	row := q.db.QueryRow(ctx, getAuditRunByKey, runKey)
	return scanAuditRun(row)
}

const getAuditRunByID = `
SELECT id, run_key, project_id, started_at, finished_at, status, created_at, updated_at
FROM audit_runs
WHERE id = $1
`

func (q *Queries) GetAuditRunByID(ctx context.Context, id int64) (AuditRun, error) {
	row := q.db.QueryRow(ctx, getAuditRunByID, id)
	return scanAuditRun(row)
}

const createAuditRun = `
INSERT INTO audit_runs (run_key, project_id, started_at, finished_at, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, run_key, project_id, started_at, finished_at, status, created_at, updated_at
`

type CreateAuditRunParams struct {
	RunKey     string
	ProjectID  int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     model.RunStatus
}

func (q *Queries) CreateAuditRun(ctx context.Context, arg CreateAuditRunParams) (AuditRun, error) {
	row := q.db.QueryRow(ctx, createAuditRun,
		arg.RunKey, arg.ProjectID, arg.StartedAt, arg.FinishedAt, arg.Status)
	return scanAuditRun(row)
}

// Only status and finished_at are mutable; an existing run never moves to a
// different project.
const updateAuditRunStatus = `
UPDATE audit_runs
SET status = $2, finished_at = $3, updated_at = now()
WHERE id = $1
RETURNING id, run_key, project_id, started_at, finished_at, status, created_at, updated_at
`

type UpdateAuditRunStatusParams struct {
	ID         int64
	Status     model.RunStatus
	FinishedAt *time.Time
}

func (q *Queries) UpdateAuditRunStatus(ctx context.Context, arg UpdateAuditRunStatusParams) (AuditRun, error) {
	row := q.db.QueryRow(ctx, updateAuditRunStatus, arg.ID, arg.Status, arg.FinishedAt)
	return scanAuditRun(row)
}

// Cursor is the id of the last item of the previous page; 0 means first page.
// Audit lists read newest-first.
const listAuditRunsByProject = `
SELECT id, run_key, project_id, started_at, finished_at, status, created_at, updated_at
FROM audit_runs
WHERE project_id = $1 AND ($2 = 0 OR id < $2)
ORDER BY id DESC
LIMIT $3
`

type ListAuditRunsByProjectParams struct {
	ProjectID int64
	Cursor    int64
	Limit     int32
}

func (q *Queries) ListAuditRunsByProject(ctx context.Context, arg ListAuditRunsByProjectParams) ([]AuditRun, error) {
	rows, err := q.db.Query(ctx, listAuditRunsByProject, arg.ProjectID, arg.Cursor, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuditRun
	for rows.Next() {
		var a AuditRun
		if err := rows.Scan(&a.ID, &a.RunKey, &a.ProjectID, &a.StartedAt, &a.FinishedAt,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const getLatestAuditRunForProject = `
SELECT id, run_key, project_id, started_at, finished_at, status, created_at, updated_at
FROM audit_runs
WHERE project_id = $1
ORDER BY id DESC
LIMIT 1
`

func (q *Queries) GetLatestAuditRunForProject(ctx context.Context, projectID int64) (AuditRun, error) {
	row := q.db.QueryRow(ctx, getLatestAuditRunForProject, projectID)
	return scanAuditRun(row)
}

func scanAuditRun(row pgx.Row) (AuditRun, error) {
	var a AuditRun
	err := row.Scan(&a.ID, &a.RunKey, &a.ProjectID, &a.StartedAt, &a.FinishedAt,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
