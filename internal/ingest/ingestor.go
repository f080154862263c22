// internal/ingest/ingestor.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"audit-dashboard/internal/apperr"
	"audit-dashboard/internal/database"
	"audit-dashboard/internal/notify"
	"audit-dashboard/internal/payload"
)

const notifyTimeout = 10 * time.Second

// Ingestor reconciles validated audit payloads into the store, one payload
// per serializable transaction, and triggers best-effort notifications after
// commit.
type Ingestor struct {
	pool     *pgxpool.Pool
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewIngestor creates an Ingestor. notifier may be notify.Nop{} when outbound
// notifications are unconfigured.
func NewIngestor(pool *pgxpool.Pool, notifier notify.Notifier, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		pool:     pool,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest applies the payload as a single atomic unit of work and returns the
// audit run's internal id. Any failure rolls the whole transaction back; the
// caller may safely resubmit the same payload because reconciliation is
// idempotent per run key. There is no automatic retry here.
func (ing *Ingestor) Ingest(ctx context.Context, a *payload.Audit) (int64, error) {
	// Serializable keeps two concurrent ingestions of the same run key from
	// interleaving their delete/insert phases.
	tx, err := ing.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, &apperr.StoreError{Op: "begin", Err: err}
	}
	defer tx.Rollback(ctx) // no-op once committed

	q := database.New(tx)

	plan, err := resolve(ctx, q, a)
	if err != nil {
		return 0, err
	}

	runID, err := ing.apply(ctx, q, a, plan)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &apperr.StoreError{Op: "commit", Err: err}
	}

	// Past the point of no return: notification failures are logged and
	// swallowed, never surfaced to the caller.
	go ing.notifyHighSeverity(a)

	return runID, nil
}

// apply executes the resolved plan in referential dependency order:
// project, repos, audit run, then the wholesale replace of the run's
// findings and patch plans.
func (ing *Ingestor) apply(ctx context.Context, q database.Querier, a *payload.Audit, plan *Plan) (int64, error) {
	project, err := ing.applyProject(ctx, q, plan.Project)
	if err != nil {
		return 0, &apperr.StoreError{Op: "upsert project", Err: err}
	}

	for _, op := range plan.Repos {
		if err := applyRepo(ctx, q, project.ID, op); err != nil {
			return 0, &apperr.StoreError{Op: "upsert repo", Err: err}
		}
	}

	run, err := applyAuditRun(ctx, q, project.ID, plan.AuditRun)
	if err != nil {
		return 0, &apperr.StoreError{Op: "upsert audit run", Err: err}
	}

	// Wholesale replace: the run's previous generation of children is
	// destroyed before the new one is inserted. Plans go first, they
	// reference findings.
	if err := q.DeletePatchPlansByAuditRun(ctx, run.ID); err != nil {
		return 0, &apperr.StoreError{Op: "delete patch plans", Err: err}
	}
	if err := q.DeleteFindingsByAuditRun(ctx, run.ID); err != nil {
		return 0, &apperr.StoreError{Op: "delete findings", Err: err}
	}

	stamp := ing.now().UTC()

	findingIDs := make(map[string]int64, len(a.Findings))
	for _, f := range a.Findings {
		inserted, err := q.CreateFinding(ctx, database.CreateFindingParams{
			AuditRunID: run.ID,
			ExternalID: f.ID,
			Kind:       f.Type,
			Severity:   f.Severity,
			Message:    f.Message,
			FileRefs:   fileRefs(f),
			Line:       f.Line,
			Detail:     f.Detail,
			CreatedAt:  stamp,
		})
		if err != nil {
			return 0, &apperr.StoreError{Op: "insert finding", Err: err}
		}
		findingIDs[f.ID] = inserted.ID
	}

	if len(a.PatchPlans) > 0 {
		params := make([]database.CreatePatchPlansParams, len(a.PatchPlans))
		for i, p := range a.PatchPlans {
			params[i] = database.CreatePatchPlansParams{
				AuditRunID:  run.ID,
				FindingID:   findingIDs[p.FindingID],
				ExternalID:  p.ID,
				Rank:        planRank(p),
				Description: p.Description,
				Files:       p.Files,
				Diff:        p.Diff,
				Rollback:    p.Rollback,
				Status:      p.Status,
				CreatedAt:   stamp,
			}
		}
		if _, err := q.CreatePatchPlans(ctx, params); err != nil {
			return 0, &apperr.StoreError{Op: "insert patch plans", Err: err}
		}
	}

	return run.ID, nil
}

func (ing *Ingestor) applyProject(ctx context.Context, q database.Querier, op ProjectOp) (database.Project, error) {
	if op.Op == OpUpdate {
		return q.UpdateProjectName(ctx, database.UpdateProjectNameParams{
			ID:   op.Existing.ID,
			Name: op.Input.Name,
		})
	}
	createdAt := op.Input.CreatedAt
	if createdAt.IsZero() {
		createdAt = ing.now().UTC()
	}
	return q.CreateProject(ctx, database.CreateProjectParams{
		Slug:      op.Input.ID,
		Name:      op.Input.Name,
		CreatedAt: createdAt,
	})
}

func applyRepo(ctx context.Context, q database.Querier, projectID int64, op RepoOp) error {
	if op.Op == OpUpdate {
		_, err := q.UpdateRepoMetadata(ctx, database.UpdateRepoMetadataParams{
			ID:       op.Existing.ID,
			URL:      op.Input.URL,
			Provider: op.Input.Provider,
		})
		return err
	}
	_, err := q.CreateRepo(ctx, database.CreateRepoParams{
		FullName:  op.Input.ID,
		ProjectID: projectID,
		URL:       op.Input.URL,
		Provider:  op.Input.Provider,
	})
	return err
}

func applyAuditRun(ctx context.Context, q database.Querier, projectID int64, op AuditRunOp) (database.AuditRun, error) {
	if op.Op == OpUpdate {
		return q.UpdateAuditRunStatus(ctx, database.UpdateAuditRunStatusParams{
			ID:         op.Existing.ID,
			Status:     op.Input.Status,
			FinishedAt: op.Input.FinishedAt,
		})
	}
	return q.CreateAuditRun(ctx, database.CreateAuditRunParams{
		RunKey:     op.Input.ID,
		ProjectID:  projectID,
		StartedAt:  op.Input.StartedAt,
		FinishedAt: op.Input.FinishedAt,
		Status:     op.Input.Status,
	})
}

// notifyHighSeverity fires one outbound message when the freshly ingested run
// contains findings at or above high severity.
func (ing *Ingestor) notifyHighSeverity(a *payload.Audit) {
	count := 0
	for _, f := range a.Findings {
		if f.Severity.HighOrAbove() {
			count++
		}
	}
	if count == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	text := fmt.Sprintf("High-severity findings detected in project %s (run %s): %d",
		a.Project.Name, a.AuditRun.ID, count)
	if err := ing.notifier.Send(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
		ing.logger.Error("Failed to send high-severity notification",
			"run_key", a.AuditRun.ID, "error", err)
	}
}

func fileRefs(f payload.Finding) []string {
	if f.File == "" {
		return []string{}
	}
	return []string{f.File}
}

func planRank(p payload.PatchPlan) int32 {
	if p.Rank <= 0 {
		return 1
	}
	return p.Rank
}
