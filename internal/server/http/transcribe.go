package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/scribe/internal/model"
	"github.com/ekisa-team/scribe/internal/service"
)

type (
	TranscribeInput struct {
		RawBody huma.MultipartFormFiles[struct {
			File           huma.FormFile `form:"file" contentType:"audio/*,video/*,application/octet-stream" required:"true"`
			Model          string        `form:"model"`
			Language       string        `form:"language"`
			VAD            string        `form:"vad"`
			WordTimestamps string        `form:"word_timestamps"`
		}]
	}

	TranscribeOutput struct {
		Body service.TranscribeResponse
	}
)

// TranscribeHandler handles HTTP requests for transcription.
type TranscribeHandler struct {
	registry    *model.Registry
	transcriber *service.Transcriber
}

// NewTranscribeHandler creates a TranscribeHandler instance.
func NewTranscribeHandler(api huma.API, registry *model.Registry, transcriber *service.Transcriber) *TranscribeHandler {
	h := &TranscribeHandler{
		registry:    registry,
		transcriber: transcriber,
	}

	huma.Register(api, huma.Operation{
		OperationID:   "transcribe",
		Method:        http.MethodPost,
		Path:          "/transcribe",
		Summary:       "Transcribe speech from an audio file",
		Tags:          []string{"stt"},
		DefaultStatus: http.StatusOK,
	}, h.handleTranscribe)

	return h
}

// handleTranscribe handles the transcribe operation.
func (h *TranscribeHandler) handleTranscribe(ctx context.Context, input *TranscribeInput) (*TranscribeOutput, error) {
	formData := input.RawBody.Data()
	audioFile := formData.File

	if !audioFile.IsSet {
		return nil, huma.Error400BadRequest("audio file is required")
	}

	resp, err := h.transcriber.Transcribe(ctx, &service.TranscribeRequest{
		Filename:       audioFile.Filename,
		Audio:          audioFile,
		Model:          formData.Model,
		Language:       formData.Language,
		VAD:            parseBool(formData.VAD),
		WordTimestamps: parseBool(formData.WordTimestamps),
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			return nil, huma.Error400BadRequest(
				"unknown model. available models: "+strings.Join(h.registry.Aliases(), ", "), err)
		case errors.Is(err, model.ErrNotLoaded):
			return nil, huma.Error503ServiceUnavailable(
				"model is not loaded yet; check GET /health for readiness", err)
		default:
			return nil, huma.Error500InternalServerError("failed to transcribe", err)
		}
	}

	return &TranscribeOutput{Body: *resp}, nil
}

// parseBool reads permissive form booleans ("true", "1", "on", "yes").
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "yes":
		return true
	default:
		b, err := strconv.ParseBool(value)
		return err == nil && b
	}
}
