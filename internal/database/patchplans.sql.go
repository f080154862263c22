// internal/database/patchplans.sql.go
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"audit-dashboard/internal/model"
)

const deletePatchPlansByAuditRun = `
DELETE FROM patch_plans WHERE audit_run_id = $1
`

func (q *Queries) DeletePatchPlansByAuditRun(ctx context.Context, auditRunID int64) error {
	_, err := q.db.Exec(ctx, deletePatchPlansByAuditRun, auditRunID)
	return err
}

type CreatePatchPlansParams struct {
	AuditRunID  int64
	FindingID   int64
	ExternalID  string
	Rank        int32
	Description string
	Files       []string
	Diff        string
	Rollback    string
	Status      model.PlanStatus
	CreatedAt   time.Time
}

// CreatePatchPlans bulk-inserts a run's patch plans via the COPY protocol.
func (q *Queries) CreatePatchPlans(ctx context.Context, arg []CreatePatchPlansParams) (int64, error) {
	if len(arg) == 0 {
		return 0, nil
	}
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"patch_plans"},
		[]string{"audit_run_id", "finding_id", "external_id", "rank", "description",
			"files", "diff", "rollback", "status", "created_at"},
		pgx.CopyFromSlice(len(arg), func(i int) ([]any, error) {
			p := arg[i]
			return []any{p.AuditRunID, p.FindingID, p.ExternalID, p.Rank, p.Description,
				p.Files, p.Diff, p.Rollback, p.Status, p.CreatedAt}, nil
		}),
	)
}

const listPatchPlansByAuditRun = `
SELECT id, audit_run_id, finding_id, external_id, rank, description, files, diff, rollback, status, created_at
FROM patch_plans
WHERE audit_run_id = $1
ORDER BY rank ASC, id ASC
`

func (q *Queries) ListPatchPlansByAuditRun(ctx context.Context, auditRunID int64) ([]PatchPlan, error) {
	rows, err := q.db.Query(ctx, listPatchPlansByAuditRun, auditRunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PatchPlan
	for rows.Next() {
		var p PatchPlan
		if err := rows.Scan(&p.ID, &p.AuditRunID, &p.FindingID, &p.ExternalID, &p.Rank,
			&p.Description, &p.Files, &p.Diff, &p.Rollback, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
