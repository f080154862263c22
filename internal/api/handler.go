// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"audit-dashboard/internal/apperr"
	"audit-dashboard/internal/database"
	"audit-dashboard/internal/model"
	"audit-dashboard/internal/payload"
	"audit-dashboard/internal/ratelimit"
)

// Ingestor is the write-side dependency of the ingestion endpoint.
type Ingestor interface {
	Ingest(ctx context.Context, a *payload.Audit) (int64, error)
}

// RepoLister is the source-control discovery dependency; nil when no token
// is configured.
type RepoLister interface {
	ListRepositories(ctx context.Context) ([]model.SourceRepo, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db       database.Querier
	ingestor Ingestor
	gh       RepoLister
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, ingestor Ingestor, gh RepoLister, limiter *ratelimit.Limiter, ingestToken string, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:       db,
		ingestor: ingestor,
		gh:       gh,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)

	r.Group(func(r chi.Router) {
		r.Use(requireBearer(ingestToken))
		r.Use(rateLimit(limiter))
		r.Post("/ingest", h.ingest)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/projects", h.listProjects)
		r.Get("/audits/{auditID}", h.getAudit)
		r.Get("/repos/{repoID}/audits", h.listRepoAudits)
		r.Get("/github/repos", h.listGitHubRepos)
	})

	return r
}

// healthCheck reports degraded health rather than failing: ok stays true
// even when the store is unreachable, db flags the difference.
// GET /health
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	dbOK := h.db.Ping(r.Context()) == nil
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "db": dbOK})
}

// ingest accepts an audit payload from an external CI workflow.
// POST /ingest
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	audit, err := payload.Decode(r.Body)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}
	if err := payload.Validate(audit); err != nil {
		h.respondIngestError(w, err)
		return
	}

	runID, err := h.ingestor.Ingest(r.Context(), audit)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "audit_run_id": runID})
}

func (h *Handler) respondIngestError(w http.ResponseWriter, err error) {
	var (
		valErr   *apperr.ValidationError
		intErr   *apperr.IntegrityError
		storeErr *apperr.StoreError
	)
	switch {
	case errors.As(err, &valErr):
		respondBadRequest(w, valErr.Fields)
	case errors.As(err, &intErr):
		respondBadRequest(w, intErr.Reason)
	case errors.As(err, &storeErr):
		h.logger.Error("Ingestion failed", "op", storeErr.Op, "error", storeErr.Err)
		// Opaque to the caller; the wrapped cause stays in the logs.
		respondWithJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "server error",
			"details": "store failure during " + storeErr.Op,
		})
	default:
		h.logger.Error("Ingestion failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "server error")
	}
}

// listProjects returns a cursor-paginated project list, each item carrying
// its latest audit run and that run's severity buckets.
// GET /v1/projects?cursor&limit
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	cursor, limit, ok := paginationParams(w, r)
	if !ok {
		return
	}

	projects, err := h.db.ListProjects(r.Context(), database.ListProjectsParams{
		Cursor: cursor,
		Limit:  limit + 1,
	})
	if err != nil {
		h.logger.Error("Failed to list projects", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hasNext := len(projects) > int(limit)
	if hasNext {
		projects = projects[:limit]
	}

	items := make([]projectItem, 0, len(projects))
	for _, p := range projects {
		item := projectItem{ID: p.ID, Slug: p.Slug, Name: p.Name}

		latest, err := h.db.GetLatestAuditRunForProject(r.Context(), p.ID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// project has no audits yet
		case err != nil:
			h.logger.Error("Failed to load latest audit run", "project_id", p.ID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		default:
			item.LatestAudit = &auditSummary{
				ID:        latest.ID,
				RunKey:    latest.RunKey,
				Status:    latest.Status,
				StartedAt: latest.StartedAt,
			}
			counts, err := h.severityCounts(r.Context(), latest.ID)
			if err != nil {
				h.logger.Error("Failed to count finding severities", "audit_run_id", latest.ID, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			item.SeverityCounts = counts
		}

		items = append(items, item)
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"projects":    items,
		"next_cursor": nextCursor(hasNext, lastProjectID(projects)),
	})
}

// getAudit returns one audit run with its patch plans and a cursor-paginated
// findings page.
// GET /v1/audits/{auditID}?findings_cursor&findings_limit
func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	auditID, err := strconv.ParseInt(chi.URLParam(r, "auditID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid audit id")
		return
	}

	run, err := h.db.GetAuditRunByID(r.Context(), auditID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Audit run not found")
			return
		}
		h.logger.Error("Failed to get audit run", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	cursor, limit, ok := namedPaginationParams(w, r, "findings_cursor", "findings_limit")
	if !ok {
		return
	}

	findings, err := h.db.ListFindingsByAuditRun(r.Context(), database.ListFindingsByAuditRunParams{
		AuditRunID: run.ID,
		Cursor:     cursor,
		Limit:      limit + 1,
	})
	if err != nil {
		h.logger.Error("Failed to list findings", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	hasNext := len(findings) > int(limit)
	if hasNext {
		findings = findings[:limit]
	}

	plans, err := h.db.ListPatchPlansByAuditRun(r.Context(), run.ID)
	if err != nil {
		h.logger.Error("Failed to list patch plans", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"audit_run":            run,
		"findings":             emptyIfNilFindings(findings),
		"findings_next_cursor": nextCursor(hasNext, lastFindingID(findings)),
		"patch_plans":          emptyIfNilPlans(plans),
	})
}

// listRepoAudits returns the audit runs of the repo's parent project,
// newest-first.
// GET /v1/repos/{repoID}/audits?cursor&limit
func (h *Handler) listRepoAudits(w http.ResponseWriter, r *http.Request) {
	repoID, err := strconv.ParseInt(chi.URLParam(r, "repoID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid repo id")
		return
	}

	repo, err := h.db.GetRepoByID(r.Context(), repoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return
		}
		h.logger.Error("Failed to get repository", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	cursor, limit, ok := paginationParams(w, r)
	if !ok {
		return
	}

	runs, err := h.db.ListAuditRunsByProject(r.Context(), database.ListAuditRunsByProjectParams{
		ProjectID: repo.ProjectID,
		Cursor:    cursor,
		Limit:     limit + 1,
	})
	if err != nil {
		h.logger.Error("Failed to list audit runs", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	hasNext := len(runs) > int(limit)
	if hasNext {
		runs = runs[:limit]
	}

	items := make([]auditItem, 0, len(runs))
	for _, run := range runs {
		counts, err := h.severityCounts(r.Context(), run.ID)
		if err != nil {
			h.logger.Error("Failed to count finding severities", "audit_run_id", run.ID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		items = append(items, auditItem{
			ID:             run.ID,
			RunKey:         run.RunKey,
			Status:         run.Status,
			StartedAt:      run.StartedAt,
			FinishedAt:     run.FinishedAt,
			SeverityCounts: counts,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"audits":      items,
		"next_cursor": nextCursor(hasNext, lastRunID(runs)),
	})
}

// listGitHubRepos lists repositories visible to the configured GitHub token.
// GET /v1/github/repos
func (h *Handler) listGitHubRepos(w http.ResponseWriter, r *http.Request) {
	if h.gh == nil {
		respondWithError(w, http.StatusServiceUnavailable, "GitHub integration is not configured")
		return
	}

	repos, err := h.gh.ListRepositories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list GitHub repositories", "error", err)
		respondWithError(w, http.StatusBadGateway, "Failed to reach GitHub")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"repos": repos})
}

func (h *Handler) severityCounts(ctx context.Context, auditRunID int64) (severityBuckets, error) {
	counts, err := h.db.CountFindingsBySeverity(ctx, auditRunID)
	if err != nil {
		return severityBuckets{}, err
	}
	var b severityBuckets
	for _, c := range counts {
		switch c.Severity {
		case model.SeverityLow:
			b.Low = c.Count
		case model.SeverityMedium:
			b.Medium = c.Count
		case model.SeverityHigh:
			b.High = c.Count
		case model.SeverityCritical:
			b.Critical = c.Count
		}
	}
	return b, nil
}
