package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/scribe/internal/backend"
	"github.com/ekisa-team/scribe/internal/config"
	"github.com/ekisa-team/scribe/internal/model"
	"github.com/ekisa-team/scribe/internal/service"
	"github.com/ekisa-team/scribe/internal/stt"
)

type cannedRecognizer struct {
	failFor map[string]bool
}

func (c *cannedRecognizer) Load(_ context.Context, path string) (backend.Instance, error) {
	if c.failFor[filepath.Base(path)] {
		return nil, os.ErrInvalid
	}
	return &cannedInstance{}, nil
}

func (c *cannedRecognizer) Device() string      { return "cpu" }
func (c *cannedRecognizer) ComputeType() string { return "float32" }
func (c *cannedRecognizer) Close() error        { return nil }

type cannedInstance struct{}

func (c *cannedInstance) Transcribe(context.Context, string, stt.Options) (stt.SegmentStream, *stt.Info, error) {
	return stt.Segments([]stt.Segment{{Start: 0, End: 1, Text: "hello world"}}),
		&stt.Info{Language: "en", LanguageProbability: 0.9}, nil
}

func (c *cannedInstance) Close() error { return nil }

type testEnv struct {
	api      humatest.TestAPI
	registry *model.Registry
	cache    *model.Cache
}

func newTestEnv(t *testing.T, failFor map[string]bool) *testEnv {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))

	registry := model.Discover(root)
	_, err := registry.ResolveDefault(filepath.Join(root, "a"))
	require.NoError(t, err)

	cache := model.NewCache(&cannedRecognizer{failFor: failFor})
	cache.LoadAll(context.Background(), registry)

	store := service.NewResponseStore(10)
	transcriber := service.NewTranscriber(registry, cache, store, service.NewForwarder(), config.DefaultTunables, 2)

	_, api := humatest.New(t)
	NewHealthHandler(api, registry, cache)
	NewTranscribeHandler(api, registry, transcriber)
	NewResponsesHandler(api, store)

	return &testEnv{api: api, registry: registry, cache: cache}
}

func multipartBody(t *testing.T, fields map[string]string, filename string, audio []byte) (string, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(audio)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return "Content-Type: " + writer.FormDataContentType(), &buf
}

func TestTranscribeEndpoint_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	contentType, body := multipartBody(t, map[string]string{"model": "b"}, "clip.wav", []byte("audio"))
	resp := env.api.Post("/transcribe", contentType, body)

	require.Equal(t, http.StatusOK, resp.Code)

	var decoded service.TranscribeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decoded))
	assert.Equal(t, "hello world", decoded.Text)
	assert.Equal(t, "b", decoded.Model)
	assert.Equal(t, 2, decoded.WordCount)
}

func TestTranscribeEndpoint_UnknownModelListsAliases(t *testing.T) {
	env := newTestEnv(t, nil)

	contentType, body := multipartBody(t, map[string]string{"model": "missing-alias"}, "clip.wav", []byte("x"))
	resp := env.api.Post("/transcribe", contentType, body)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "available models: a, b")
}

func TestTranscribeEndpoint_ModelNotLoaded(t *testing.T) {
	env := newTestEnv(t, map[string]bool{"b": true})

	contentType, body := multipartBody(t, map[string]string{"model": "b"}, "clip.wav", []byte("x"))
	resp := env.api.Post("/transcribe", contentType, body)

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "health")
}

func TestHealthEndpoint_PartialLoadFailure(t *testing.T) {
	env := newTestEnv(t, map[string]bool{"b": true})

	resp := env.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var decoded HealthResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decoded))

	assert.Equal(t, "ok", decoded.Status, "default loaded despite sibling failure")
	assert.Equal(t, "a", decoded.DefaultModel.Alias)
	assert.Equal(t, "cpu", decoded.DefaultModel.Device)

	loaded := map[string]bool{}
	for _, m := range decoded.LoadedModels {
		loaded[m.Alias] = m.Loaded
	}
	assert.True(t, loaded["a"])
	assert.False(t, loaded["b"])
}

func TestResponsesEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.api.Get("/responses/latest")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	contentType, body := multipartBody(t, nil, "clip.wav", []byte("audio"))
	require.Equal(t, http.StatusOK, env.api.Post("/transcribe", contentType, body).Code)

	resp = env.api.Get("/responses/latest")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "hello world")

	resp = env.api.Get("/responses/history")
	require.Equal(t, http.StatusOK, resp.Code)

	var history []service.Entry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	assert.Len(t, history, 1)
}
