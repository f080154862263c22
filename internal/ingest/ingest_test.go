// internal/ingest/ingest_test.go
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"audit-dashboard/internal/apperr"
	"audit-dashboard/internal/database"
	"audit-dashboard/internal/database/dbmock"
	"audit-dashboard/internal/model"
	"audit-dashboard/internal/payload"
)

var testLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

func demoAudit() *payload.Audit {
	finished := time.Date(2025, 6, 1, 10, 2, 0, 0, time.UTC)
	return &payload.Audit{
		Project: payload.Project{ID: "demo", Name: "Demo"},
		Repos: []payload.Repo{{
			ID:        "demo/app",
			ProjectID: "demo",
			URL:       "https://github.com/demo/app",
			Provider:  "github",
		}},
		AuditRun: payload.AuditRun{
			ID:         "run-1",
			ProjectID:  "demo",
			StartedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			FinishedAt: &finished,
			Status:     model.RunStatusSuccess,
		},
		Findings: []payload.Finding{{
			ID:         "f-1",
			AuditRunID: "run-1",
			Type:       "ci",
			Severity:   model.SeverityHigh,
			Message:    "Node version mismatch",
			File:       ".github/workflows/deploy.yml",
		}},
		PatchPlans: []payload.PatchPlan{{
			ID:          "p-1",
			FindingID:   "f-1",
			Description: "Pin Node 20",
			Status:      model.PlanStatusOpen,
		}},
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("tags everything create on first sight", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		mockQ.On("GetProjectBySlug", ctx, "demo").Return(database.Project{}, pgx.ErrNoRows).Once()
		mockQ.On("GetRepoByFullName", ctx, "demo/app").Return(database.Repo{}, pgx.ErrNoRows).Once()
		mockQ.On("GetAuditRunByKey", ctx, "run-1").Return(database.AuditRun{}, pgx.ErrNoRows).Once()

		plan, err := resolve(ctx, mockQ, demoAudit())

		require.NoError(t, err)
		assert.Equal(t, OpCreate, plan.Project.Op)
		require.Len(t, plan.Repos, 1)
		assert.Equal(t, OpCreate, plan.Repos[0].Op)
		assert.Equal(t, OpCreate, plan.AuditRun.Op)
		mockQ.AssertExpectations(t)
	})

	t.Run("tags update when natural keys already exist", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		mockQ.On("GetProjectBySlug", ctx, "demo").
			Return(database.Project{ID: 7, Slug: "demo", Name: "Old Name"}, nil).Once()
		mockQ.On("GetRepoByFullName", ctx, "demo/app").
			Return(database.Repo{ID: 3, FullName: "demo/app", ProjectID: 7}, nil).Once()
		mockQ.On("GetAuditRunByKey", ctx, "run-1").
			Return(database.AuditRun{ID: 11, RunKey: "run-1", ProjectID: 7}, nil).Once()

		plan, err := resolve(ctx, mockQ, demoAudit())

		require.NoError(t, err)
		assert.Equal(t, OpUpdate, plan.Project.Op)
		assert.Equal(t, int64(7), plan.Project.Existing.ID)
		assert.Equal(t, OpUpdate, plan.Repos[0].Op)
		assert.Equal(t, OpUpdate, plan.AuditRun.Op)
		mockQ.AssertExpectations(t)
	})

	t.Run("rejects a repo that references another project in the payload", func(t *testing.T) {
		a := demoAudit()
		a.Repos[0].ProjectID = "someone-else"

		_, err := resolve(ctx, new(dbmock.Querier), a)

		var intErr *apperr.IntegrityError
		require.ErrorAs(t, err, &intErr)
		assert.Contains(t, intErr.Reason, "demo/app")
	})

	t.Run("rejects reparenting an existing repo", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		mockQ.On("GetProjectBySlug", ctx, "demo").
			Return(database.Project{ID: 7, Slug: "demo"}, nil).Once()
		// repo exists but belongs to project 99
		mockQ.On("GetRepoByFullName", ctx, "demo/app").
			Return(database.Repo{ID: 3, FullName: "demo/app", ProjectID: 99}, nil).Once()

		_, err := resolve(ctx, mockQ, demoAudit())

		var intErr *apperr.IntegrityError
		require.ErrorAs(t, err, &intErr)
		assert.Contains(t, intErr.Reason, "different project")
		mockQ.AssertExpectations(t)
	})

	t.Run("rejects duplicate finding ids within one run", func(t *testing.T) {
		a := demoAudit()
		a.Findings = append(a.Findings, a.Findings[0])

		_, err := resolve(ctx, new(dbmock.Querier), a)

		var intErr *apperr.IntegrityError
		require.ErrorAs(t, err, &intErr)
		assert.Contains(t, intErr.Reason, "duplicate finding id")
	})

	t.Run("rejects duplicate patch plan ids within one run", func(t *testing.T) {
		a := demoAudit()
		a.PatchPlans = append(a.PatchPlans, a.PatchPlans[0])

		_, err := resolve(ctx, new(dbmock.Querier), a)

		var intErr *apperr.IntegrityError
		require.ErrorAs(t, err, &intErr)
		assert.Contains(t, intErr.Reason, "duplicate patch plan id")
	})

	t.Run("rejects a patch plan pointing at an unknown finding", func(t *testing.T) {
		a := demoAudit()
		a.PatchPlans[0].FindingID = "f-does-not-exist"

		_, err := resolve(ctx, new(dbmock.Querier), a)

		var intErr *apperr.IntegrityError
		require.ErrorAs(t, err, &intErr)
		assert.Contains(t, intErr.Reason, "unknown finding")
	})

	t.Run("propagates unexpected store failures", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		boom := errors.New("connection reset")
		mockQ.On("GetProjectBySlug", ctx, "demo").Return(database.Project{}, boom).Once()

		_, err := resolve(ctx, mockQ, demoAudit())

		var storeErr *apperr.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.ErrorIs(t, err, boom)
	})
}

func newTestIngestor() *Ingestor {
	return &Ingestor{
		logger: testLogger,
		now:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the full graph on first ingestion", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		a := demoAudit()
		plan := &Plan{
			Project:  ProjectOp{Op: OpCreate, Input: a.Project},
			Repos:    []RepoOp{{Op: OpCreate, Input: a.Repos[0]}},
			AuditRun: AuditRunOp{Op: OpCreate, Input: a.AuditRun},
		}

		mockQ.On("CreateProject", ctx, mock.Anything).
			Return(database.Project{ID: 1, Slug: "demo"}, nil).Once()
		mockQ.On("CreateRepo", ctx, database.CreateRepoParams{
			FullName: "demo/app", ProjectID: 1, URL: "https://github.com/demo/app", Provider: "github",
		}).Return(database.Repo{ID: 2, ProjectID: 1}, nil).Once()
		mockQ.On("CreateAuditRun", ctx, mock.Anything).
			Return(database.AuditRun{ID: 3, RunKey: "run-1", ProjectID: 1}, nil).Once()
		mockQ.On("DeletePatchPlansByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("DeleteFindingsByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("CreateFinding", ctx, mock.MatchedBy(func(p database.CreateFindingParams) bool {
			return p.AuditRunID == 3 && p.ExternalID == "f-1" && p.Severity == model.SeverityHigh
		})).Return(database.Finding{ID: 10, AuditRunID: 3, ExternalID: "f-1"}, nil).Once()
		mockQ.On("CreatePatchPlans", ctx, mock.MatchedBy(func(ps []database.CreatePatchPlansParams) bool {
			return len(ps) == 1 && ps[0].AuditRunID == 3 && ps[0].FindingID == 10 && ps[0].Rank == 1
		})).Return(int64(1), nil).Once()

		runID, err := newTestIngestor().apply(ctx, mockQ, a, plan)

		require.NoError(t, err)
		assert.Equal(t, int64(3), runID)
		mockQ.AssertExpectations(t)
	})

	t.Run("updates mutable fields only on re-ingestion", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		a := demoAudit()
		plan := &Plan{
			Project:  ProjectOp{Op: OpUpdate, Existing: database.Project{ID: 1}, Input: a.Project},
			Repos:    []RepoOp{{Op: OpUpdate, Existing: database.Repo{ID: 2, ProjectID: 1}, Input: a.Repos[0]}},
			AuditRun: AuditRunOp{Op: OpUpdate, Existing: database.AuditRun{ID: 3}, Input: a.AuditRun},
		}

		mockQ.On("UpdateProjectName", ctx, database.UpdateProjectNameParams{ID: 1, Name: "Demo"}).
			Return(database.Project{ID: 1, Name: "Demo"}, nil).Once()
		mockQ.On("UpdateRepoMetadata", ctx, database.UpdateRepoMetadataParams{
			ID: 2, URL: "https://github.com/demo/app", Provider: "github",
		}).Return(database.Repo{ID: 2, ProjectID: 1}, nil).Once()
		mockQ.On("UpdateAuditRunStatus", ctx, mock.MatchedBy(func(p database.UpdateAuditRunStatusParams) bool {
			return p.ID == 3 && p.Status == model.RunStatusSuccess && p.FinishedAt != nil
		})).Return(database.AuditRun{ID: 3}, nil).Once()
		mockQ.On("DeletePatchPlansByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("DeleteFindingsByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("CreateFinding", ctx, mock.Anything).
			Return(database.Finding{ID: 20, AuditRunID: 3}, nil).Once()
		mockQ.On("CreatePatchPlans", ctx, mock.Anything).Return(int64(1), nil).Once()

		_, err := newTestIngestor().apply(ctx, mockQ, a, plan)

		require.NoError(t, err)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "CreateProject")
		mockQ.AssertNotCalled(t, "CreateRepo")
		mockQ.AssertNotCalled(t, "CreateAuditRun")
	})

	t.Run("fails the whole unit of work when the patch plan insert fails", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		a := demoAudit()
		plan := &Plan{
			Project:  ProjectOp{Op: OpCreate, Input: a.Project},
			Repos:    []RepoOp{{Op: OpCreate, Input: a.Repos[0]}},
			AuditRun: AuditRunOp{Op: OpCreate, Input: a.AuditRun},
		}

		boom := errors.New("unique constraint violated")
		mockQ.On("CreateProject", ctx, mock.Anything).Return(database.Project{ID: 1}, nil).Once()
		mockQ.On("CreateRepo", ctx, mock.Anything).Return(database.Repo{ID: 2}, nil).Once()
		mockQ.On("CreateAuditRun", ctx, mock.Anything).Return(database.AuditRun{ID: 3}, nil).Once()
		mockQ.On("DeletePatchPlansByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("DeleteFindingsByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("CreateFinding", ctx, mock.Anything).Return(database.Finding{ID: 10}, nil).Once()
		mockQ.On("CreatePatchPlans", ctx, mock.Anything).Return(int64(0), boom).Once()

		_, err := newTestIngestor().apply(ctx, mockQ, a, plan)

		var storeErr *apperr.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "insert patch plans", storeErr.Op)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("replaces children before inserting the new generation", func(t *testing.T) {
		mockQ := new(dbmock.Querier)
		a := demoAudit()
		a.Findings = nil
		a.PatchPlans = nil
		plan := &Plan{
			Project:  ProjectOp{Op: OpCreate, Input: a.Project},
			Repos:    []RepoOp{{Op: OpCreate, Input: a.Repos[0]}},
			AuditRun: AuditRunOp{Op: OpCreate, Input: a.AuditRun},
		}

		mockQ.On("CreateProject", ctx, mock.Anything).Return(database.Project{ID: 1}, nil).Once()
		mockQ.On("CreateRepo", ctx, mock.Anything).Return(database.Repo{ID: 2}, nil).Once()
		mockQ.On("CreateAuditRun", ctx, mock.Anything).Return(database.AuditRun{ID: 3}, nil).Once()
		mockQ.On("DeletePatchPlansByAuditRun", ctx, int64(3)).Return(nil).Once()
		mockQ.On("DeleteFindingsByAuditRun", ctx, int64(3)).Return(nil).Once()

		_, err := newTestIngestor().apply(ctx, mockQ, a, plan)

		require.NoError(t, err)
		mockQ.AssertExpectations(t)
		// Empty payloads still purge the previous generation, but insert nothing.
		mockQ.AssertNotCalled(t, "CreateFinding")
		mockQ.AssertNotCalled(t, "CreatePatchPlans")
	})
}

// spyNotifier records sends and optionally fails them.
type spyNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func newSpyNotifier(err error) *spyNotifier {
	return &spyNotifier{err: err}
}

func (s *spyNotifier) Send(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return s.err
}

func (s *spyNotifier) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func TestNotifyHighSeverity(t *testing.T) {
	t.Run("fires once when high-severity findings are present", func(t *testing.T) {
		spy := newSpyNotifier(nil)
		ing := newTestIngestor()
		ing.notifier = spy

		ing.notifyHighSeverity(demoAudit())

		msgs := spy.messages()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "run-1")
		assert.Contains(t, msgs[0], ": 1")
	})

	t.Run("counts critical findings as high severity", func(t *testing.T) {
		a := demoAudit()
		a.Findings[0].Severity = model.SeverityCritical
		spy := newSpyNotifier(nil)
		ing := newTestIngestor()
		ing.notifier = spy

		ing.notifyHighSeverity(a)

		require.Len(t, spy.messages(), 1)
	})

	t.Run("stays silent for low and medium findings", func(t *testing.T) {
		a := demoAudit()
		a.Findings[0].Severity = model.SeverityMedium
		spy := newSpyNotifier(nil)
		ing := newTestIngestor()
		ing.notifier = spy

		ing.notifyHighSeverity(a)

		assert.Empty(t, spy.messages())
	})

	t.Run("swallows notifier failures", func(t *testing.T) {
		spy := newSpyNotifier(errors.New("webhook down"))
		ing := newTestIngestor()
		ing.notifier = spy

		// Must not panic or propagate anything.
		ing.notifyHighSeverity(demoAudit())

		require.Len(t, spy.messages(), 1)
	})
}
