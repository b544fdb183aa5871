package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/scribe/internal/backend"
	"github.com/ekisa-team/scribe/internal/config"
	"github.com/ekisa-team/scribe/internal/model"
	"github.com/ekisa-team/scribe/internal/stt"
)

// fakeRecognizer loads fakeInstances that replay canned segments or fail.
type fakeRecognizer struct {
	instances map[string]*fakeInstance // keyed by artifact base name
}

func (f *fakeRecognizer) Load(_ context.Context, path string) (backend.Instance, error) {
	if in, ok := f.instances[filepath.Base(path)]; ok {
		return in, nil
	}
	return &fakeInstance{}, nil
}

func (f *fakeRecognizer) Device() string      { return "cpu" }
func (f *fakeRecognizer) ComputeType() string { return "float32" }
func (f *fakeRecognizer) Close() error        { return nil }

type fakeInstance struct {
	segments   []stt.Segment
	info       stt.Info
	err        error
	stagedPath string
}

func (f *fakeInstance) Transcribe(_ context.Context, audioPath string, _ stt.Options) (stt.SegmentStream, *stt.Info, error) {
	f.stagedPath = audioPath
	if f.err != nil {
		return nil, nil, f.err
	}
	info := f.info
	return stt.Segments(f.segments), &info, nil
}

func (f *fakeInstance) Close() error { return nil }

type fixture struct {
	transcriber *Transcriber
	store       *ResponseStore
	instances   map[string]*fakeInstance
}

// newFixture builds a registry with aliases a and b (default a), loads
// both into a cache backed by fake instances, and wires a transcriber.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))

	registry := model.Discover(root)
	_, err := registry.ResolveDefault(filepath.Join(root, "a"))
	require.NoError(t, err)

	instances := map[string]*fakeInstance{
		"a": {segments: []stt.Segment{{Start: 0, End: 1, Text: "bonjour tout le monde"}}, info: stt.Info{Language: "fr", LanguageProbability: 0.99}},
		"b": {segments: []stt.Segment{{Start: 0, End: 1, Text: "hello"}}},
	}

	cache := model.NewCache(&fakeRecognizer{instances: instances})
	require.Empty(t, cache.LoadAll(context.Background(), registry))

	store := NewResponseStore(10)
	transcriber := NewTranscriber(registry, cache, store, NewForwarder(), config.DefaultTunables, 2)

	return &fixture{transcriber: transcriber, store: store, instances: instances}
}

func TestTranscribe_Pipeline(t *testing.T) {
	f := newFixture(t)

	resp, err := f.transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "meeting.wav",
		Audio:    strings.NewReader("fake audio bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "bonjour tout le monde", resp.Text)
	assert.Equal(t, 4, resp.WordCount)
	assert.Equal(t, 1, resp.SegmentCount)
	assert.Equal(t, "fr", resp.Language)
	assert.Equal(t, "a", resp.Model)
	assert.Equal(t, "cpu", resp.Device)
	assert.Equal(t, "float32", resp.ComputeType)

	latest, ok := f.store.Latest()
	require.True(t, ok)
	assert.Equal(t, "a", latest["model"])
	assert.NotEmpty(t, latest["request_id"])
}

func TestTranscribe_StagedFileRemovedOnSuccess(t *testing.T) {
	f := newFixture(t)

	_, err := f.transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "clip.mp3",
		Audio:    strings.NewReader("payload"),
		Model:    "b",
	})
	require.NoError(t, err)

	staged := f.instances["b"].stagedPath
	require.NotEmpty(t, staged)
	assert.Equal(t, ".mp3", filepath.Ext(staged), "upload extension must be preserved")
	assert.NoFileExists(t, staged)
}

func TestTranscribe_StagedFileRemovedOnInferenceError(t *testing.T) {
	f := newFixture(t)
	f.instances["b"].err = errors.New("unreadable audio")

	_, err := f.transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "broken.ogg",
		Audio:    strings.NewReader("garbage"),
		Model:    "b",
	})
	require.ErrorIs(t, err, ErrInference)

	staged := f.instances["b"].stagedPath
	require.NotEmpty(t, staged)
	assert.NoFileExists(t, staged)
}

func TestTranscribe_UnknownSelector(t *testing.T) {
	f := newFixture(t)

	_, err := f.transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "x.wav",
		Audio:    strings.NewReader("x"),
		Model:    "missing-alias",
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTranscribe_ModelNotLoaded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))

	registry := model.Discover(root)
	_, err := registry.ResolveDefault(filepath.Join(root, "a"))
	require.NoError(t, err)

	// Cache stays empty: startup loading has not finished.
	cache := model.NewCache(&fakeRecognizer{})
	transcriber := NewTranscriber(registry, cache, NewResponseStore(5), NewForwarder(), config.DefaultTunables, 1)

	_, err = transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "x.wav",
		Audio:    strings.NewReader("x"),
	})
	require.ErrorIs(t, err, model.ErrNotLoaded)
	assert.ErrorContains(t, err, `"a"`)
}

func TestTranscribe_GenericExtensionFallback(t *testing.T) {
	f := newFixture(t)

	_, err := f.transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "upload-without-extension",
		Audio:    strings.NewReader("payload"),
	})
	require.NoError(t, err)

	staged := f.instances["a"].stagedPath
	assert.Equal(t, ".tmp", filepath.Ext(staged))
}

func TestTranscribe_NoEntryRecordedOnFailure(t *testing.T) {
	f := newFixture(t)
	f.instances["a"].err = errors.New("boom")

	_, err := f.transcriber.Transcribe(context.Background(), &TranscribeRequest{
		Filename: "x.wav",
		Audio:    strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len())
}
