// internal/database/models.go
package database

import (
	"encoding/json"
	"time"

	"audit-dashboard/internal/model"
)

// Project row. Slug is the external natural key; ID is the surrogate key.
type Project struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repo row. FullName is the natural key; ProjectID is fixed at creation.
type Repo struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	ProjectID int64     `json:"project_id"`
	URL       string    `json:"url"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditRun row. RunKey is the natural key (run id or commit sha).
type AuditRun struct {
	ID         int64           `json:"id"`
	RunKey     string          `json:"run_key"`
	ProjectID  int64           `json:"project_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Status     model.RunStatus `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Finding row. ExternalID is unique within its audit run. Detail is an
// opaque JSON document stored verbatim.
type Finding struct {
	ID         int64           `json:"id"`
	AuditRunID int64           `json:"audit_run_id"`
	ExternalID string          `json:"external_id"`
	Kind       string          `json:"kind"`
	Severity   model.Severity  `json:"severity"`
	Message    string          `json:"message"`
	FileRefs   []string        `json:"file_refs"`
	Line       *int32          `json:"line"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PatchPlan row. Replaced wholesale together with findings on re-ingestion.
type PatchPlan struct {
	ID          int64            `json:"id"`
	AuditRunID  int64            `json:"audit_run_id"`
	FindingID   int64            `json:"finding_id"`
	ExternalID  string           `json:"external_id"`
	Rank        int32            `json:"rank"`
	Description string           `json:"description"`
	Files       []string         `json:"files"`
	Diff        string           `json:"diff"`
	Rollback    string           `json:"rollback"`
	Status      model.PlanStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SeverityCount is one bucket of the per-run severity aggregate.
type SeverityCount struct {
	Severity model.Severity `json:"severity"`
	Count    int64          `json:"count"`
}
