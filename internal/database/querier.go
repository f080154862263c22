// internal/database/querier.go
package database

import "context"

// Querier is the persistence contract consumed by the ingestion and read
// paths. Queries implements it; tests substitute a mock.
type Querier interface {
	Ping(ctx context.Context) error

	GetProjectBySlug(ctx context.Context, slug string) (Project, error)
	CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error)
	UpdateProjectName(ctx context.Context, arg UpdateProjectNameParams) (Project, error)
	ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error)

	GetRepoByFullName(ctx context.Context, fullName string) (Repo, error)
	GetRepoByID(ctx context.Context, id int64) (Repo, error)
	CreateRepo(ctx context.Context, arg CreateRepoParams) (Repo, error)
	UpdateRepoMetadata(ctx context.Context, arg UpdateRepoMetadataParams) (Repo, error)

	GetAuditRunByKey(ctx context.Context, runKey string) (AuditRun, error)
	GetAuditRunByID(ctx context.Context, id int64) (AuditRun, error)
	CreateAuditRun(ctx context.Context, arg CreateAuditRunParams) (AuditRun, error)
	UpdateAuditRunStatus(ctx context.Context, arg UpdateAuditRunStatusParams) (AuditRun, error)
	ListAuditRunsByProject(ctx context.Context, arg ListAuditRunsByProjectParams) ([]AuditRun, error)
	GetLatestAuditRunForProject(ctx context.Context, projectID int64) (AuditRun, error)

	DeleteFindingsByAuditRun(ctx context.Context, auditRunID int64) error
	CreateFinding(ctx context.Context, arg CreateFindingParams) (Finding, error)
	ListFindingsByAuditRun(ctx context.Context, arg ListFindingsByAuditRunParams) ([]Finding, error)
	CountFindingsBySeverity(ctx context.Context, auditRunID int64) ([]SeverityCount, error)

	DeletePatchPlansByAuditRun(ctx context.Context, auditRunID int64) error
	CreatePatchPlans(ctx context.Context, arg []CreatePatchPlansParams) (int64, error)
	ListPatchPlansByAuditRun(ctx context.Context, auditRunID int64) ([]PatchPlan, error)
}

var _ Querier = (*Queries)(nil)
