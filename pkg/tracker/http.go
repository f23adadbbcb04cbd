package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Submit posts snapshot to the collector in the background and returns
// immediately. The outcome is only logged.
func (t *Tracker) Submit(ctx context.Context, snapshot *Snapshot) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		t.logger.Error("Failed to marshal report", "error", err)
		return
	}

	homeURL, err := t.host.HomeURL(ctx)
	if err != nil {
		homeURL = snapshot.URL
	}
	userAgent := UserAgent(homeURL)
	reportID := uuid.NewString()

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()

		// Outlive the caller; only the transport timeout bounds the request.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()

		sendCtx, span := tracer.Start(sendCtx, "tracker.submit",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attribute.String("tracker.report_id", reportID)))
		defer span.End()

		t.logger.Debug("Sending report", "endpoint", t.endpoint, "report_id", reportID, "payload_size", len(body))
		if err := t.performHTTPRequest(sendCtx, body, userAgent, reportID); err != nil {
			span.SetStatus(codes.Error, err.Error())
			t.logger.Debug("Failed to send report", "error", err, "report_id", reportID)
			return
		}
		t.logger.Debug("Report sent", "report_id", reportID)
	}()
}

// Wait blocks until every submission started so far has finished or ctx is done.
// When ctx wins, a helper goroutine stays parked until the submissions end;
// each submission is bounded by the client timeout, and the helper exits with the last one.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) performHTTPRequest(ctx context.Context, body []byte, userAgent, reportID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Tracker-Report-ID", reportID)
	// The collector matches these names exactly, so bypass canonicalization.
	req.Header["api_key"] = []string{t.apiKey}
	req.Header["api_secret_key"] = []string{t.apiSecretKey}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, snippet)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
