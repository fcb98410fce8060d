// Package api exposes the registry and the flattened input schema over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/partytracker/partytracker/internal/inputschema"
	webctx "github.com/partytracker/partytracker/internal/web/context"
	"github.com/partytracker/partytracker/internal/web/response"
	"github.com/partytracker/partytracker/internal/web/router"
	"github.com/partytracker/partytracker/runtime/metadata"
)

// Handler serves the schema endpoints for one Service
type Handler struct {
	service *inputschema.Service
	// The input schema never changes after startup, so its JSON is encoded once
	schemaJSON []byte
}

// NewHandler encodes the service's input schema up front so a marshal
// failure surfaces at startup rather than per request.
func NewHandler(service *inputschema.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("api: nil service")
	}
	body, err := json.Marshal(service.GetInputSchema())
	if err != nil {
		return nil, fmt.Errorf("encode input schema: %w", err)
	}
	return &Handler{service: service, schemaJSON: body}, nil
}

// InputSchema handles GET /api/input/schema: one key per participating
// variant label, in declaration order, each holding its ordered field list.
func (h *Handler) InputSchema(w http.ResponseWriter, r *http.Request) {
	response.RenderRawJSON(w, http.StatusOK, h.schemaJSON)
}

// Types handles GET /api/types
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, h.service.Registry().Types())
}

// Type handles GET /api/types/{name}
func (h *Handler) Type(w http.ResponseWriter, r *http.Request) {
	name := router.Param(r, "name")
	reg := h.service.Registry()

	data, err := reg.Describe(name)
	if errors.Is(err, metadata.ErrUnknownType) {
		httpErr := response.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown type %q", name)).
			WithCode("unknown_type")
		if suggestions := reg.Suggest(name); len(suggestions) > 0 {
			httpErr.WithDetails(map[string]any{"suggestions": suggestions})
		}
		httpErr.Render(w)
		return
	}
	if err != nil {
		webctx.Logger(r.Context()).Error("describe failed", zap.String("type", name), zap.Error(err))
		response.RenderInternalError(w)
		return
	}

	response.RenderJSON(w, http.StatusOK, data)
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
