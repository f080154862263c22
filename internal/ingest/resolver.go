// internal/ingest/resolver.go
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"audit-dashboard/internal/apperr"
	"audit-dashboard/internal/database"
	"audit-dashboard/internal/payload"
)

// Op tags a resolved entity as a fresh insert or an update of an existing row.
type Op int8

const (
	OpCreate Op = iota
	OpUpdate
)

// Plan is the Identity Resolver's output: every entity in the payload mapped
// to an operation against existing relational state. Building it performs
// reads only.
type Plan struct {
	Project  ProjectOp
	Repos    []RepoOp
	AuditRun AuditRunOp
}

type ProjectOp struct {
	Op       Op
	Existing database.Project // valid when Op == OpUpdate
	Input    payload.Project
}

type RepoOp struct {
	Op       Op
	Existing database.Repo
	Input    payload.Repo
}

type AuditRunOp struct {
	Op       Op
	Existing database.AuditRun
	Input    payload.AuditRun
}

// resolve checks payload-internal consistency and determines, per entity,
// whether ingestion will create or update it. It rejects any payload that
// would silently reparent a repo or an audit run.
func resolve(ctx context.Context, q database.Querier, a *payload.Audit) (*Plan, error) {
	if err := checkIntegrity(a); err != nil {
		return nil, err
	}

	plan := &Plan{
		Project:  ProjectOp{Op: OpCreate, Input: a.Project},
		AuditRun: AuditRunOp{Op: OpCreate, Input: a.AuditRun},
	}

	project, err := q.GetProjectBySlug(ctx, a.Project.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// first sight, create below
	case err != nil:
		return nil, &apperr.StoreError{Op: "resolve project", Err: err}
	default:
		plan.Project = ProjectOp{Op: OpUpdate, Existing: project, Input: a.Project}
	}

	for _, r := range a.Repos {
		existing, err := q.GetRepoByFullName(ctx, r.ID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			plan.Repos = append(plan.Repos, RepoOp{Op: OpCreate, Input: r})
		case err != nil:
			return nil, &apperr.StoreError{Op: "resolve repo", Err: err}
		default:
			// An existing repo must already belong to the project in this
			// payload; anything else is a reparenting attempt.
			if plan.Project.Op == OpCreate || existing.ProjectID != plan.Project.Existing.ID {
				return nil, &apperr.IntegrityError{
					Reason: fmt.Sprintf("repo %q belongs to a different project", r.ID),
				}
			}
			plan.Repos = append(plan.Repos, RepoOp{Op: OpUpdate, Existing: existing, Input: r})
		}
	}

	run, err := q.GetAuditRunByKey(ctx, a.AuditRun.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// first sight, create below
	case err != nil:
		return nil, &apperr.StoreError{Op: "resolve audit run", Err: err}
	default:
		if plan.Project.Op == OpCreate || run.ProjectID != plan.Project.Existing.ID {
			return nil, &apperr.IntegrityError{
				Reason: fmt.Sprintf("audit run %q belongs to a different project", a.AuditRun.ID),
			}
		}
		plan.AuditRun = AuditRunOp{Op: OpUpdate, Existing: run, Input: a.AuditRun}
	}

	return plan, nil
}

// checkIntegrity rejects payloads whose entities disagree with each other.
// These are deliberate abstraction-level checks, not a reliance on store
// foreign-key failures.
func checkIntegrity(a *payload.Audit) error {
	for _, r := range a.Repos {
		if r.ProjectID != a.Project.ID {
			return &apperr.IntegrityError{
				Reason: fmt.Sprintf("repo %q references project %q, payload carries project %q",
					r.ID, r.ProjectID, a.Project.ID),
			}
		}
	}

	if a.AuditRun.ProjectID != a.Project.ID {
		return &apperr.IntegrityError{
			Reason: fmt.Sprintf("audit run %q references project %q, payload carries project %q",
				a.AuditRun.ID, a.AuditRun.ProjectID, a.Project.ID),
		}
	}

	seen := make(map[string]struct{}, len(a.Findings))
	for _, f := range a.Findings {
		if f.AuditRunID != a.AuditRun.ID {
			return &apperr.IntegrityError{
				Reason: fmt.Sprintf("finding %q references audit run %q, payload carries run %q",
					f.ID, f.AuditRunID, a.AuditRun.ID),
			}
		}
		if _, dup := seen[f.ID]; dup {
			return &apperr.IntegrityError{
				Reason: fmt.Sprintf("duplicate finding id %q within audit run", f.ID),
			}
		}
		seen[f.ID] = struct{}{}
	}

	seenPlans := make(map[string]struct{}, len(a.PatchPlans))
	for _, p := range a.PatchPlans {
		if _, ok := seen[p.FindingID]; !ok {
			return &apperr.IntegrityError{
				Reason: fmt.Sprintf("patch plan %q references unknown finding %q", p.ID, p.FindingID),
			}
		}
		if _, dup := seenPlans[p.ID]; dup {
			return &apperr.IntegrityError{
				Reason: fmt.Sprintf("duplicate patch plan id %q within audit run", p.ID),
			}
		}
		seenPlans[p.ID] = struct{}{}
	}

	return nil
}
