package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ekisa-team/scribe/internal/config"
	"github.com/ekisa-team/scribe/internal/model"
	"github.com/ekisa-team/scribe/internal/stt"
)

// TunablesProvider returns the current tunables snapshot. Wired to
// config.Watcher.Snapshot in the server, to a fixed value in tests.
type TunablesProvider func() *config.Tunables

// TranscribeRequest is one transcription job as received over HTTP.
type TranscribeRequest struct {
	// Filename is the original upload name; its extension is preserved
	// on the staged file because the capability may dispatch on it.
	Filename string

	// Audio is the uploaded payload.
	Audio io.Reader

	// Model selects a model by alias or filesystem path; empty picks
	// the default.
	Model string

	// Language is an ISO code; empty enables auto-detection.
	Language string

	// VAD enables voice-activity filtering.
	VAD bool

	// WordTimestamps requests word-level timing.
	WordTimestamps bool
}

// TranscribeResponse is the full response payload of one request.
type TranscribeResponse struct {
	Text                string        `json:"text"`
	Segments            []stt.Segment `json:"segments"`
	Language            string        `json:"language,omitempty"`
	LanguageProbability float64       `json:"language_probability,omitempty"`
	WordCount           int           `json:"word_count"`
	CharCount           int           `json:"char_count"`
	SegmentCount        int           `json:"segment_count"`
	Model               string        `json:"model"`
	ModelPath           string        `json:"model_path"`
	Device              string        `json:"device"`
	ComputeType         string        `json:"compute_type"`
}

// Transcriber orchestrates the per-request transcription pipeline:
// resolve selection, fetch the cached bundle, stage the upload, run
// blocking inference on a bounded worker gate, aggregate the segment
// stream, and record the outcome.
type Transcriber struct {
	registry  *model.Registry
	cache     *model.Cache
	store     *ResponseStore
	forwarder *Forwarder
	tunables  TunablesProvider
	workers   chan struct{}
}

// NewTranscriber creates a Transcriber. maxWorkers bounds the number of
// concurrent inference calls dispatched at once.
func NewTranscriber(
	registry *model.Registry,
	cache *model.Cache,
	store *ResponseStore,
	forwarder *Forwarder,
	tunables TunablesProvider,
	maxWorkers int,
) *Transcriber {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &Transcriber{
		registry:  registry,
		cache:     cache,
		store:     store,
		forwarder: forwarder,
		tunables:  tunables,
		workers:   make(chan struct{}, maxWorkers),
	}
}

// Transcribe runs one request end to end. Selector errors surface as
// model.ErrNotFound, unloaded models as model.ErrNotLoaded (wrapped with
// the alias), and capability failures as ErrInference. The staged file is
// deleted on every exit path.
func (t *Transcriber) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	alias, path, err := t.registry.ResolveSelection(req.Model)
	if err != nil {
		return nil, err
	}

	// Handlers must never trigger a synchronous load mid-request; eager
	// startup loading is the loading policy.
	bundle, ok := t.cache.TryGet(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrNotLoaded, alias)
	}

	stagedPath, err := stageUpload(req.Filename, req.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		// A file already gone at cleanup time is not an error.
		if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove staged audio", "path", stagedPath, "error", err)
		}
	}()

	if err := t.acquireWorker(ctx); err != nil {
		return nil, err
	}
	defer t.releaseWorker()

	opts := t.options(req)

	start := time.Now()
	stream, info, err := bundle.Instance.Transcribe(ctx, stagedPath, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInference, err)
	}

	result, err := stt.Aggregate(stream, info, req.WordTimestamps)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInference, err)
	}

	resp := &TranscribeResponse{
		Text:                result.Text(),
		Segments:            result.Segments,
		Language:            result.Language,
		LanguageProbability: result.LanguageProbability,
		WordCount:           result.WordCount,
		CharCount:           result.CharCount,
		SegmentCount:        result.SegmentCount,
		Model:               alias,
		ModelPath:           bundle.Path,
		Device:              bundle.Device,
		ComputeType:         bundle.ComputeType,
	}

	t.record(req, resp, time.Since(start))

	return resp, nil
}

// options merges request fields with the tunable decoding defaults.
func (t *Transcriber) options(req *TranscribeRequest) stt.Options {
	opts := stt.DefaultOptions()
	if tun := t.tunables(); tun != nil {
		opts.BeamSize = tun.Transcribe.BeamSize
		opts.Temperature = tun.Transcribe.Temperature
		opts.BestOf = tun.Transcribe.BestOf
	}

	opts.Language = req.Language
	opts.VAD = req.VAD
	opts.WordTimestamps = req.WordTimestamps

	return opts
}

// record stores the outcome (completion order) and relays it when a
// forward URL is configured.
func (t *Transcriber) record(req *TranscribeRequest, resp *TranscribeResponse, elapsed time.Duration) {
	entry := Entry{
		"request_id":       uuid.NewString(),
		"filename":         req.Filename,
		"model":            resp.Model,
		"model_path":       resp.ModelPath,
		"device":           resp.Device,
		"compute_type":     resp.ComputeType,
		"language":         resp.Language,
		"text":             resp.Text,
		"word_count":       resp.WordCount,
		"char_count":       resp.CharCount,
		"segment_count":    resp.SegmentCount,
		"duration_seconds": elapsed.Seconds(),
		"completed_at":     time.Now().UTC().Format(time.RFC3339),
	}
	t.store.Add(entry)

	if tun := t.tunables(); tun != nil && tun.ForwardURL != "" {
		t.forwarder.Send(tun.ForwardURL, resp)
	}
}

// acquireWorker blocks until an inference slot is free or ctx is done.
func (t *Transcriber) acquireWorker(ctx context.Context) error {
	select {
	case t.workers <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transcriber) releaseWorker() {
	<-t.workers
}

// stageUpload writes the payload to a uniquely named temporary file,
// preserving the upload's extension so the capability can dispatch on it.
func stageUpload(filename string, audio io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".tmp"
	}

	tmp, err := os.CreateTemp("", "scribe-upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}
