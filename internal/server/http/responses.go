package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/scribe/internal/service"
)

type (
	LatestOutput struct {
		Body service.Entry
	}

	HistoryOutput struct {
		Body []service.Entry
	}
)

// ResponsesHandler exposes the recorded request outcomes for inspection.
type ResponsesHandler struct {
	store *service.ResponseStore
}

// NewResponsesHandler creates a ResponsesHandler instance.
func NewResponsesHandler(api huma.API, store *service.ResponseStore) *ResponsesHandler {
	h := &ResponsesHandler{store: store}

	huma.Register(api, huma.Operation{
		OperationID:   "responses-latest",
		Method:        http.MethodGet,
		Path:          "/responses/latest",
		Summary:       "Return the most recent request outcome",
		Tags:          []string{"ops"},
		DefaultStatus: http.StatusOK,
	}, h.handleLatest)

	huma.Register(api, huma.Operation{
		OperationID:   "responses-history",
		Method:        http.MethodGet,
		Path:          "/responses/history",
		Summary:       "Return the retained request outcomes, oldest first",
		Tags:          []string{"ops"},
		DefaultStatus: http.StatusOK,
	}, h.handleHistory)

	return h
}

// handleLatest handles the responses-latest operation.
func (h *ResponsesHandler) handleLatest(_ context.Context, _ *struct{}) (*LatestOutput, error) {
	entry, ok := h.store.Latest()
	if !ok {
		return nil, huma.Error404NotFound("no responses recorded yet")
	}

	return &LatestOutput{Body: entry}, nil
}

// handleHistory handles the responses-history operation.
func (h *ResponsesHandler) handleHistory(_ context.Context, _ *struct{}) (*HistoryOutput, error) {
	return &HistoryOutput{Body: h.store.History()}, nil
}
