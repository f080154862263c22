// cmd/auditseed/main.go
//
// auditseed posts demo audit payloads to a running service, the way the CI
// audit workflows would. Useful for seeding a fresh dashboard.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"audit-dashboard/internal/model"
	"audit-dashboard/internal/payload"
)

const concurrency = 5

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the audit dashboard service")
	token := flag.String("token", "", "ingest bearer token")
	n := flag.Int("n", 1, "number of audit payloads to submit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *token == "" {
		logger.Error("-token is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := 0; i < *n; i++ {
		i := i
		g.Go(func() error {
			runID, err := submit(gctx, *addr, *token, samplePayload(i))
			if err != nil {
				return fmt.Errorf("payload %d: %w", i, err)
			}
			logger.Info("Payload ingested", "index", i, "audit_run_id", runID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Seeding finished", "count", *n)
}

func submit(ctx context.Context, addr, token string, a *payload.Audit) (int64, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/ingest", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}

	var out struct {
		AuditRunID int64 `json:"audit_run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.AuditRunID, nil
}

// samplePayload mirrors the shape real audit workflows submit: one project,
// one repo, one run with a mixed bag of findings and a patch plan each.
func samplePayload(i int) *payload.Audit {
	runKey := uuid.NewString()
	projectSlug := fmt.Sprintf("demo-project-%d", i)
	repoName := fmt.Sprintf("demo/%s", projectSlug)
	now := time.Now().UTC()
	finished := now.Add(90 * time.Second)
	line := int32(14)

	return &payload.Audit{
		Project: payload.Project{
			ID:        projectSlug,
			Name:      fmt.Sprintf("Demo Project %d", i),
			CreatedAt: now,
		},
		Repos: []payload.Repo{{
			ID:        repoName,
			ProjectID: projectSlug,
			URL:       "https://github.com/" + repoName,
			Provider:  "github",
		}},
		AuditRun: payload.AuditRun{
			ID:         runKey,
			ProjectID:  projectSlug,
			StartedAt:  now,
			FinishedAt: &finished,
			Status:     model.RunStatusSuccess,
		},
		Findings: []payload.Finding{
			{
				ID:         runKey + "-f1",
				AuditRunID: runKey,
				Type:       "ci",
				Severity:   model.SeverityHigh,
				Message:    "Node version mismatch in deploy workflow",
				File:       ".github/workflows/deploy.yml",
				Line:       &line,
				Detail:     json.RawMessage(`{"workflow":"16","required":"20"}`),
			},
			{
				ID:         runKey + "-f2",
				AuditRunID: runKey,
				Type:       "compliance",
				Severity:   model.SeverityMedium,
				Message:    "Missing privacy policy page",
				File:       "README.md",
			},
		},
		PatchPlans: []payload.PatchPlan{
			{
				ID:          runKey + "-p1",
				FindingID:   runKey + "-f1",
				Rank:        1,
				Description: "Pin Node 20 in the deploy workflow",
				Files:       []string{".github/workflows/deploy.yml"},
				Rollback:    "Revert the workflow change",
				Status:      model.PlanStatusOpen,
			},
		},
	}
}
