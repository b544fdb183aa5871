package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Forwarder relays completed transcription results to an external URL.
// Forwarding is fire-and-forget: failures are logged and never surfaced
// to the request that produced the result.
type Forwarder struct {
	client *http.Client
}

// NewForwarder creates a Forwarder.
func NewForwarder() *Forwarder {
	return &Forwarder{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts payload as JSON to url in the background.
func (f *Forwarder) Send(url string, payload any) {
	if url == "" {
		return
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			slog.Error("Failed to encode forwarded result", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			slog.Error("Failed to build forward request", "url", url, "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			slog.Warn("Failed to forward result", "url", url, "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			slog.Warn("Forward target rejected result", "url", url, "status", resp.StatusCode)
		}
	}()
}
