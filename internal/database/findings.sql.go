// internal/database/findings.sql.go
package database

import (
	"context"
	"encoding/json"
	"time"

	"audit-dashboard/internal/model"
)

const deleteFindingsByAuditRun = `
DELETE FROM findings WHERE audit_run_id = $1
`

func (q *Queries) DeleteFindingsByAuditRun(ctx context.Context, auditRunID int64) error {
	_, err := q.db.Exec(ctx, deleteFindingsByAuditRun, auditRunID)
	return err
}

const createFinding = `
INSERT INTO findings (audit_run_id, external_id, kind, severity, message, file_refs, line, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, audit_run_id, external_id, kind, severity, message, file_refs, line, detail, created_at
`

type CreateFindingParams struct {
	AuditRunID int64
	ExternalID string
	Kind       string
	Severity   model.Severity
	Message    string
	FileRefs   []string
	Line       *int32
	Detail     json.RawMessage
	CreatedAt  time.Time
}

func (q *Queries) CreateFinding(ctx context.Context, arg CreateFindingParams) (Finding, error) {
	row := q.db.QueryRow(ctx, createFinding,
		arg.AuditRunID, arg.ExternalID, arg.Kind, arg.Severity, arg.Message,
		arg.FileRefs, arg.Line, arg.Detail, arg.CreatedAt)
	var f Finding
	err := row.Scan(&f.ID, &f.AuditRunID, &f.ExternalID, &f.Kind, &f.Severity,
		&f.Message, &f.FileRefs, &f.Line, &f.Detail, &f.CreatedAt)
	return f, err
}

// Findings page in insertion order; display relies on that order only.
const listFindingsByAuditRun = `
SELECT id, audit_run_id, external_id, kind, severity, message, file_refs, line, detail, created_at
FROM findings
WHERE audit_run_id = $1 AND id > $2
ORDER BY id ASC
LIMIT $3
`

type ListFindingsByAuditRunParams struct {
	AuditRunID int64
	Cursor     int64
	Limit      int32
}

func (q *Queries) ListFindingsByAuditRun(ctx context.Context, arg ListFindingsByAuditRunParams) ([]Finding, error) {
	rows, err := q.db.Query(ctx, listFindingsByAuditRun, arg.AuditRunID, arg.Cursor, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.ID, &f.AuditRunID, &f.ExternalID, &f.Kind, &f.Severity,
			&f.Message, &f.FileRefs, &f.Line, &f.Detail, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

const countFindingsBySeverity = `
SELECT severity, count(*)
FROM findings
WHERE audit_run_id = $1
GROUP BY severity
`

func (q *Queries) CountFindingsBySeverity(ctx context.Context, auditRunID int64) ([]SeverityCount, error) {
	rows, err := q.db.Query(ctx, countFindingsBySeverity, auditRunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SeverityCount
	for rows.Next() {
		var c SeverityCount
		if err := rows.Scan(&c.Severity, &c.Count); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
