// internal/model/models.go
package model

import "time"

// Severity is the closed set of finding severities accepted on ingestion.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// HighOrAbove reports whether a finding with this severity should trigger an
// outbound notification.
func (s Severity) HighOrAbove() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// RunStatus is the lifecycle status of an audit run.
type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// PlanStatus is the lifecycle status of a patch plan.
type PlanStatus string

const (
	PlanStatusOpen       PlanStatus = "open"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusClosed     PlanStatus = "closed"
)

// SourceRepo is a repository visible to the configured source-control token,
// as surfaced by the repo discovery endpoint.
type SourceRepo struct {
	FullName      string    `json:"full_name"`
	URL           string    `json:"url"`
	Description   *string   `json:"description,omitempty"`
	DefaultBranch string    `json:"default_branch"`
	Private       bool      `json:"private"`
	PushedAt      time.Time `json:"pushed_at"`
}
