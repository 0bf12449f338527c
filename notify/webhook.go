package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/livecheck/telemetry"
)

// Notifier delivers a report text.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// WebhookError is a non-2xx webhook response.
type WebhookError struct {
	Status string
	Body   string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook failed %s: %s", e.Status, strings.TrimSpace(e.Body))
}

// Webhook posts {"content": text} to a fixed URL. The URL carries its own secret.
type Webhook struct {
	URL        string
	HTTPClient *http.Client
}

func (w *Webhook) http() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return http.DefaultClient
}

// Notify sends text once.
func (w *Webhook) Notify(ctx context.Context, text string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "webhook.post")
	defer func() {
		telemetry.EndSpan(span, err)
		if err != nil {
			telemetry.IncCounter(telemetry.WebhookFailed)
		} else {
			telemetry.IncCounter(telemetry.WebhookSent)
		}
	}()

	payload, err := json.Marshal(struct {
		Content string `json:"content"`
	}{Content: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.http().Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return &WebhookError{Status: resp.Status, Body: string(b)}
	}
	return nil
}

// LogOnly writes reports to the log instead of posting them.
type LogOnly struct{}

func (LogOnly) Notify(ctx context.Context, text string) error {
	telemetry.LoggerWithCorr(ctx).Info("dry run: report not sent", slog.String("report", text))
	return nil
}
