package handlers

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/makima-ai/makima-go/internal/httpserver/errors"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

// ToolsHandler handles tool-related requests
type ToolsHandler struct {
	*Base
}

// NewToolsHandler creates a new ToolsHandler
func NewToolsHandler(base *Base) *ToolsHandler {
	return &ToolsHandler{Base: base}
}

// HandleListTools handles GET /tool/ requests
func (h *ToolsHandler) HandleListTools(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("tools-handler").WithValues("operation", "list")

	tools, err := h.Clients.Tool.ListTools(r.Context())
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to list tools", err))
		return
	}

	log.V(1).Info("Successfully listed tools", "count", len(tools))
	RespondWithJSON(w, http.StatusOK, tools)
}

// HandleGetTool handles GET /tool/{name} requests
func (h *ToolsHandler) HandleGetTool(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	tool, err := h.Clients.Tool.GetTool(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to get tool", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, tool)
}

// HandleCreateTool handles POST /tool/create requests
func (h *ToolsHandler) HandleCreateTool(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("tools-handler").WithValues("operation", "create")

	var params api.ToolParams
	if err := DecodeJSONBody(r, &params); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}
	log = log.WithValues("toolName", params.Name)

	tool, err := h.Clients.Tool.CreateTool(r.Context(), &params)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to create tool", err))
		return
	}

	log.Info("Successfully created tool", "toolID", tool.ID)
	RespondWithJSON(w, http.StatusCreated, tool)
}

// HandleUpdateTool handles PUT /tool/{name} requests
func (h *ToolsHandler) HandleUpdateTool(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("tools-handler").WithValues("operation", "update")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	log = log.WithValues("toolName", name)

	var update api.ToolUpdate
	if err := DecodeJSONBody(r, &update); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	tool, err := h.Clients.Tool.UpdateTool(r.Context(), name, &update)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to update tool", err))
		return
	}

	log.Info("Successfully updated tool")
	RespondWithJSON(w, http.StatusOK, tool)
}

// HandleDeleteTool handles DELETE /tool/{name} requests
func (h *ToolsHandler) HandleDeleteTool(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("tools-handler").WithValues("operation", "delete")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	status, err := h.Clients.Tool.DeleteTool(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to delete tool", err))
		return
	}

	log.Info("Successfully deleted tool", "toolName", name)
	RespondWithJSON(w, http.StatusOK, status)
}
