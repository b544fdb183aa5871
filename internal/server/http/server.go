// Package http exposes the transcription and synthesis services over an
// HTTP API.
package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/ekisa-team/scribe/internal/model"
	"github.com/ekisa-team/scribe/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "0.2.0"

// Dependencies aggregates everything the handlers need. Handlers hold the
// service objects by reference; nothing is reachable through globals.
type Dependencies struct {
	Registry    *model.Registry
	Cache       *model.Cache
	Transcriber *service.Transcriber
	Synthesizer *service.Synthesizer
	Store       *service.ResponseStore
}

// New builds the HTTP server with all handlers registered.
func New(port int, deps Dependencies) *http.Server {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Scribe Voice API", Version))

	NewHealthHandler(api, deps.Registry, deps.Cache)
	NewTranscribeHandler(api, deps.Registry, deps.Transcriber)
	NewResponsesHandler(api, deps.Store)

	// Synthesis is optional: without a piper binary the endpoint is not
	// registered at all.
	if deps.Synthesizer != nil {
		NewSynthesizeHandler(api, deps.Synthesizer)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
