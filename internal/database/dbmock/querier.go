// internal/database/dbmock/querier.go
//
// Package dbmock provides a testify mock of database.Querier for unit tests.
package dbmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"audit-dashboard/internal/database"
)

// Querier is a mock of the database.Querier interface.
type Querier struct {
	mock.Mock
}

var _ database.Querier = (*Querier)(nil)

func (m *Querier) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Querier) GetProjectBySlug(ctx context.Context, slug string) (database.Project, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(database.Project), args.Error(1)
}

func (m *Querier) CreateProject(ctx context.Context, arg database.CreateProjectParams) (database.Project, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Project), args.Error(1)
}

func (m *Querier) UpdateProjectName(ctx context.Context, arg database.UpdateProjectNameParams) (database.Project, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Project), args.Error(1)
}

func (m *Querier) ListProjects(ctx context.Context, arg database.ListProjectsParams) ([]database.Project, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]database.Project), args.Error(1)
}

func (m *Querier) GetRepoByFullName(ctx context.Context, fullName string) (database.Repo, error) {
	args := m.Called(ctx, fullName)
	return args.Get(0).(database.Repo), args.Error(1)
}

func (m *Querier) GetRepoByID(ctx context.Context, id int64) (database.Repo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Repo), args.Error(1)
}

func (m *Querier) CreateRepo(ctx context.Context, arg database.CreateRepoParams) (database.Repo, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repo), args.Error(1)
}

func (m *Querier) UpdateRepoMetadata(ctx context.Context, arg database.UpdateRepoMetadataParams) (database.Repo, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repo), args.Error(1)
}

func (m *Querier) GetAuditRunByKey(ctx context.Context, runKey string) (database.AuditRun, error) {
	args := m.Called(ctx, runKey)
	return args.Get(0).(database.AuditRun), args.Error(1)
}

func (m *Querier) GetAuditRunByID(ctx context.Context, id int64) (database.AuditRun, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.AuditRun), args.Error(1)
}

func (m *Querier) CreateAuditRun(ctx context.Context, arg database.CreateAuditRunParams) (database.AuditRun, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.AuditRun), args.Error(1)
}

func (m *Querier) UpdateAuditRunStatus(ctx context.Context, arg database.UpdateAuditRunStatusParams) (database.AuditRun, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.AuditRun), args.Error(1)
}

func (m *Querier) ListAuditRunsByProject(ctx context.Context, arg database.ListAuditRunsByProjectParams) ([]database.AuditRun, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]database.AuditRun), args.Error(1)
}

func (m *Querier) GetLatestAuditRunForProject(ctx context.Context, projectID int64) (database.AuditRun, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(database.AuditRun), args.Error(1)
}

func (m *Querier) DeleteFindingsByAuditRun(ctx context.Context, auditRunID int64) error {
	args := m.Called(ctx, auditRunID)
	return args.Error(0)
}

func (m *Querier) CreateFinding(ctx context.Context, arg database.CreateFindingParams) (database.Finding, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Finding), args.Error(1)
}

func (m *Querier) ListFindingsByAuditRun(ctx context.Context, arg database.ListFindingsByAuditRunParams) ([]database.Finding, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]database.Finding), args.Error(1)
}

func (m *Querier) CountFindingsBySeverity(ctx context.Context, auditRunID int64) ([]database.SeverityCount, error) {
	args := m.Called(ctx, auditRunID)
	return args.Get(0).([]database.SeverityCount), args.Error(1)
}

func (m *Querier) DeletePatchPlansByAuditRun(ctx context.Context, auditRunID int64) error {
	args := m.Called(ctx, auditRunID)
	return args.Error(0)
}

func (m *Querier) CreatePatchPlans(ctx context.Context, arg []database.CreatePatchPlansParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Querier) ListPatchPlansByAuditRun(ctx context.Context, auditRunID int64) ([]database.PatchPlan, error) {
	args := m.Called(ctx, auditRunID)
	return args.Get(0).([]database.PatchPlan), args.Error(1)
}
