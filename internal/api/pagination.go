// internal/api/pagination.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"audit-dashboard/internal/database"
	"audit-dashboard/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type projectItem struct {
	ID             int64           `json:"id"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	LatestAudit    *auditSummary   `json:"latest_audit"`
	SeverityCounts severityBuckets `json:"severity_counts"`
}

type auditSummary struct {
	ID        int64           `json:"id"`
	RunKey    string          `json:"run_key"`
	Status    model.RunStatus `json:"status"`
	StartedAt time.Time       `json:"started_at"`
}

type auditItem struct {
	ID             int64           `json:"id"`
	RunKey         string          `json:"run_key"`
	Status         model.RunStatus `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at"`
	SeverityCounts severityBuckets `json:"severity_counts"`
}

type severityBuckets struct {
	Low      int64 `json:"low"`
	Medium   int64 `json:"medium"`
	High     int64 `json:"high"`
	Critical int64 `json:"critical"`
}

// paginationParams parses the standard cursor/limit query parameters,
// responding with 400 itself when they are malformed.
func paginationParams(w http.ResponseWriter, r *http.Request) (cursor int64, limit int32, ok bool) {
	return namedPaginationParams(w, r, "cursor", "limit")
}

func namedPaginationParams(w http.ResponseWriter, r *http.Request, cursorKey, limitKey string) (int64, int32, bool) {
	var cursor int64
	if raw := r.URL.Query().Get(cursorKey); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid '"+cursorKey+"' parameter")
			return 0, 0, false
		}
		cursor = parsed
	}

	limit := int32(defaultPageSize)
	if raw := r.URL.Query().Get(limitKey); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxPageSize {
			respondWithError(w, http.StatusBadRequest,
				"Invalid '"+limitKey+"' parameter. Must be an integer between 1 and 100.")
			return 0, 0, false
		}
		limit = int32(parsed)
	}

	return cursor, limit, true
}

// nextCursor is null once the listing is exhausted; otherwise it is the id
// of the last item on this page.
func nextCursor(hasNext bool, lastID int64) *int64 {
	if !hasNext {
		return nil
	}
	return &lastID
}

func lastProjectID(items []database.Project) int64 {
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].ID
}

func lastRunID(items []database.AuditRun) int64 {
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].ID
}

func lastFindingID(items []database.Finding) int64 {
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].ID
}

func emptyIfNilFindings(items []database.Finding) []database.Finding {
	if items == nil {
		return []database.Finding{}
	}
	return items
}

func emptyIfNilPlans(items []database.PatchPlan) []database.PatchPlan {
	if items == nil {
		return []database.PatchPlan{}
	}
	return items
}
