package handlers

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/makima-ai/makima-go/internal/httpserver/errors"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

// AgentsHandler handles agent-related requests
type AgentsHandler struct {
	*Base
}

// NewAgentsHandler creates a new AgentsHandler
func NewAgentsHandler(base *Base) *AgentsHandler {
	return &AgentsHandler{Base: base}
}

// HandleListAgents handles GET /agent/ requests
func (h *AgentsHandler) HandleListAgents(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", "list")

	agents, err := h.Clients.Agent.ListAgents(r.Context())
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to list agents", err))
		return
	}

	log.V(1).Info("Successfully listed agents", "count", len(agents))
	RespondWithJSON(w, http.StatusOK, agents)
}

// HandleGetAgent handles GET /agent/{name} requests
func (h *AgentsHandler) HandleGetAgent(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", "get")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	log = log.WithValues("agentName", name)

	agent, err := h.Clients.Agent.GetAgent(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to get agent", err))
		return
	}

	log.V(1).Info("Successfully retrieved agent")
	RespondWithJSON(w, http.StatusOK, agent)
}

// HandleCreateAgent handles POST /agent/create requests
func (h *AgentsHandler) HandleCreateAgent(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", "create")

	var params api.AgentParams
	if err := DecodeJSONBody(r, &params); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}
	log = log.WithValues("agentName", params.Name)

	agent, err := h.Clients.Agent.CreateAgent(r.Context(), &params)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to create agent", err))
		return
	}

	log.Info("Successfully created agent", "agentID", agent.ID)
	RespondWithJSON(w, http.StatusCreated, agent)
}

// HandleUpdateAgent handles PUT /agent/{name} requests
func (h *AgentsHandler) HandleUpdateAgent(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", "update")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	log = log.WithValues("agentName", name)

	var update api.AgentUpdate
	if err := DecodeJSONBody(r, &update); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	agent, err := h.Clients.Agent.UpdateAgent(r.Context(), name, &update)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to update agent", err))
		return
	}

	log.Info("Successfully updated agent")
	RespondWithJSON(w, http.StatusOK, agent)
}

// HandleDeleteAgent handles DELETE /agent/{name} requests
func (h *AgentsHandler) HandleDeleteAgent(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", "delete")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	log = log.WithValues("agentName", name)

	status, err := h.Clients.Agent.DeleteAgent(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to delete agent", err))
		return
	}

	log.Info("Successfully deleted agent")
	RespondWithJSON(w, http.StatusOK, status)
}

// HandleAddTool handles POST /agent/{name}/add-tool/{target} requests
func (h *AgentsHandler) HandleAddTool(w ErrorResponseWriter, r *http.Request) {
	h.relate(w, r, "add-tool", h.Clients.Agent.AddTool)
}

// HandleRemoveTool handles POST /agent/{name}/remove-tool/{target} requests
func (h *AgentsHandler) HandleRemoveTool(w ErrorResponseWriter, r *http.Request) {
	h.relate(w, r, "remove-tool", h.Clients.Agent.RemoveTool)
}

// HandleAddHelper handles POST /agent/{name}/add-helper/{target} requests
func (h *AgentsHandler) HandleAddHelper(w ErrorResponseWriter, r *http.Request) {
	h.relate(w, r, "add-helper", h.Clients.Agent.AddHelper)
}

// HandleRemoveHelper handles POST /agent/{name}/remove-helper/{target} requests
func (h *AgentsHandler) HandleRemoveHelper(w ErrorResponseWriter, r *http.Request) {
	h.relate(w, r, "remove-helper", h.Clients.Agent.RemoveHelper)
}

// HandleAddKnowledgeBase handles POST /agent/{name}/add-knowledge-base/{target} requests
func (h *AgentsHandler) HandleAddKnowledgeBase(w ErrorResponseWriter, r *http.Request) {
	h.relate(w, r, "add-knowledge-base", h.Clients.Agent.AddKnowledgeBase)
}

// HandleRemoveKnowledgeBase handles POST /agent/{name}/remove-knowledge-base/{target} requests
func (h *AgentsHandler) HandleRemoveKnowledgeBase(w ErrorResponseWriter, r *http.Request) {
	h.relate(w, r, "remove-knowledge-base", h.Clients.Agent.RemoveKnowledgeBase)
}

// HandleChat handles POST /agent/{name}/chat requests
func (h *AgentsHandler) HandleChat(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", "chat")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	log = log.WithValues("agentName", name)

	var message api.HumanMessage
	if err := DecodeJSONBody(r, &message); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	reply, err := h.Clients.Agent.Chat(r.Context(), name, &message)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to chat with agent", err))
		return
	}

	log.V(1).Info("Agent replied")
	RespondWithJSON(w, http.StatusOK, reply)
}

type relation func(ctx context.Context, agentName, target string) (*api.AgentDetail, error)

func (h *AgentsHandler) relate(w ErrorResponseWriter, r *http.Request, operation string, change relation) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("agents-handler").WithValues("operation", operation)

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	target, err := GetPathParam(r, "target")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get target from path", err))
		return
	}
	log = log.WithValues("agentName", name, "target", target)

	agent, err := change(r.Context(), name, target)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to "+operation, err))
		return
	}

	log.Info("Successfully updated agent relationships")
	RespondWithJSON(w, http.StatusOK, agent)
}
