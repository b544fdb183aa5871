package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/scribe/internal/service"
)

type (
	SynthesizeRequestDTO struct {
		Text     string `json:"text" minLength:"1" maxLength:"8192"`
		Language string `json:"language,omitempty"`
		Voice    string `json:"voice,omitempty"`
	}

	SynthesizeInput struct {
		Body SynthesizeRequestDTO
	}
)

// SynthesizeHandler handles HTTP requests for speech synthesis.
type SynthesizeHandler struct {
	synthesizer *service.Synthesizer
}

// NewSynthesizeHandler creates a SynthesizeHandler instance.
func NewSynthesizeHandler(api huma.API, synthesizer *service.Synthesizer) *SynthesizeHandler {
	h := &SynthesizeHandler{synthesizer: synthesizer}

	huma.Register(api, huma.Operation{
		OperationID:   "synthesize",
		Method:        http.MethodPost,
		Path:          "/tts",
		Summary:       "Synthesize speech from text",
		Tags:          []string{"tts"},
		DefaultStatus: http.StatusOK,
	}, h.handleSynthesize)

	return h
}

// handleSynthesize handles the synthesize operation, streaming WAV bytes.
func (h *SynthesizeHandler) handleSynthesize(ctx context.Context, input *SynthesizeInput) (*huma.StreamResponse, error) {
	audio, err := h.synthesizer.Synthesize(ctx, input.Body.Text, input.Body.Language, input.Body.Voice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyText):
			return nil, huma.Error400BadRequest("text to synthesize is empty", err)
		case errors.Is(err, service.ErrUnknownVoice):
			return nil, huma.Error400BadRequest(
				"unknown voice. configured voices: "+strings.Join(h.synthesizer.Voices(), ", "), err)
		default:
			return nil, huma.Error500InternalServerError("failed to synthesize", err)
		}
	}

	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Content-Type", "audio/wav")
			_, _ = ctx.BodyWriter().Write(audio)
		},
	}, nil
}
