// internal/payload/payload.go
package payload

import (
	"encoding/json"
	"time"

	"audit-dashboard/internal/model"
)

// Audit is the normalized payload POSTed by external CI audit workflows.
type Audit struct {
	Project    Project     `json:"project"`
	Repos      []Repo      `json:"repos" validate:"dive"`
	AuditRun   AuditRun    `json:"audit_run"`
	Findings   []Finding   `json:"findings" validate:"dive"`
	PatchPlans []PatchPlan `json:"patch_plans" validate:"dive"`
}

// Project carries the project's natural key (slug) and mutable display name.
type Project struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo carries a repository keyed by its full name. ProjectID must match the
// project in the same payload.
type Repo struct {
	ID        string `json:"id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	URL       string `json:"url" validate:"required"`
	Provider  string `json:"provider" validate:"required"`
}

// AuditRun is one execution of an audit, keyed by run id or commit sha.
type AuditRun struct {
	ID         string          `json:"id" validate:"required"`
	ProjectID  string          `json:"project_id" validate:"required"`
	StartedAt  time.Time       `json:"started_at" validate:"required"`
	FinishedAt *time.Time      `json:"finished_at"`
	Status     model.RunStatus `json:"status" validate:"required,oneof=pending success failed"`
}

// Finding is a single issue reported by the audit run. Detail is an opaque
// JSON document stored and returned verbatim.
type Finding struct {
	ID         string          `json:"id" validate:"required"`
	AuditRunID string          `json:"audit_run_id" validate:"required"`
	Type       string          `json:"type" validate:"required"`
	Severity   model.Severity  `json:"severity" validate:"required,oneof=low medium high critical"`
	Message    string          `json:"message" validate:"required"`
	File       string          `json:"file" validate:"required"`
	Line       *int32          `json:"line"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

// PatchPlan is a proposed remediation for one finding in the same payload.
type PatchPlan struct {
	ID          string           `json:"id" validate:"required"`
	FindingID   string           `json:"finding_id" validate:"required"`
	Rank        int32            `json:"rank"`
	Description string           `json:"description" validate:"required"`
	Files       []string         `json:"files"`
	Diff        string           `json:"diff"`
	Rollback    string           `json:"rollback"`
	Status      model.PlanStatus `json:"status" validate:"required,oneof=open in_progress closed"`
}
