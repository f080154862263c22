// internal/notify/notify.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier sends a single outbound notification. Implementations are
// best-effort; the ingestion path never blocks on them.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop is the notifier used when no webhook is configured.
type Nop struct{}

func (Nop) Send(context.Context, string) error { return nil }

// SlackWebhook posts messages to a Slack incoming webhook.
type SlackWebhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewSlackWebhook creates a webhook notifier for the given URL.
func NewSlackWebhook(url string, logger *slog.Logger) *SlackWebhook {
	return &SlackWebhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (s *SlackWebhook) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	s.logger.Debug("Slack notification sent")
	return nil
}
