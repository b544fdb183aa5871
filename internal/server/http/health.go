package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/scribe/internal/model"
)

type (
	ModelStatusDTO struct {
		Alias  string `json:"alias"`
		Path   string `json:"path"`
		Loaded bool   `json:"loaded"`
	}

	DefaultModelDTO struct {
		Alias       string `json:"alias"`
		Path        string `json:"path"`
		Device      string `json:"device,omitempty"`
		ComputeType string `json:"compute_type,omitempty"`
	}

	HealthResponseDTO struct {
		Status       string           `json:"status" enum:"ok,loading"`
		DefaultModel DefaultModelDTO  `json:"default_model"`
		LoadedModels []ModelStatusDTO `json:"loaded_models"`
	}

	HealthOutput struct {
		Body HealthResponseDTO
	}
)

// HealthHandler reports readiness: ok once the default model is loaded,
// loading otherwise, plus the per-alias load state.
type HealthHandler struct {
	registry *model.Registry
	cache    *model.Cache
}

// NewHealthHandler creates a HealthHandler instance.
func NewHealthHandler(api huma.API, registry *model.Registry, cache *model.Cache) *HealthHandler {
	h := &HealthHandler{
		registry: registry,
		cache:    cache,
	}

	huma.Register(api, huma.Operation{
		OperationID:   "health",
		Method:        http.MethodGet,
		Path:          "/health",
		Summary:       "Report model readiness",
		Tags:          []string{"ops"},
		DefaultStatus: http.StatusOK,
	}, h.handleHealth)

	return h
}

// handleHealth handles the health operation.
func (h *HealthHandler) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	defaultAlias := h.registry.DefaultAlias()

	body := HealthResponseDTO{
		Status:       "loading",
		LoadedModels: []ModelStatusDTO{},
	}

	for _, alias := range h.registry.Aliases() {
		path, ok := h.registry.Path(alias)
		if !ok {
			continue
		}

		_, loaded := h.cache.TryGet(path)
		body.LoadedModels = append(body.LoadedModels, ModelStatusDTO{
			Alias:  alias,
			Path:   path,
			Loaded: loaded,
		})

		if alias != defaultAlias {
			continue
		}

		body.DefaultModel = DefaultModelDTO{Alias: alias, Path: path}
		if bundle, ok := h.cache.TryGet(path); ok {
			body.Status = "ok"
			body.DefaultModel.Device = bundle.Device
			body.DefaultModel.ComputeType = bundle.ComputeType
		}
	}

	return &HealthOutput{Body: body}, nil
}
