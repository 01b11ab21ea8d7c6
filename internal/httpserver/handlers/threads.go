package handlers

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/makima-ai/makima-go/internal/httpserver/errors"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

// ThreadsHandler handles thread-related requests
type ThreadsHandler struct {
	*Base
}

// NewThreadsHandler creates a new ThreadsHandler
func NewThreadsHandler(base *Base) *ThreadsHandler {
	return &ThreadsHandler{Base: base}
}

// HandleListThreads handles GET /thread/ requests
func (h *ThreadsHandler) HandleListThreads(w ErrorResponseWriter, r *http.Request) {
	threads, err := h.Clients.Thread.ListThreads(r.Context())
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to list threads", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, threads)
}

// HandleGetThread handles GET /thread/{id} requests
func (h *ThreadsHandler) HandleGetThread(w ErrorResponseWriter, r *http.Request) {
	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get thread ID from path", err))
		return
	}

	thread, err := h.Clients.Thread.GetThread(r.Context(), id)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to get thread", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, thread)
}

// HandleCreateThread handles POST /thread/create requests
func (h *ThreadsHandler) HandleCreateThread(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("threads-handler").WithValues("operation", "create")

	var params api.ThreadParams
	if err := DecodeJSONBody(r, &params); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	thread, err := h.Clients.Thread.CreateThread(r.Context(), &params)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to create thread", err))
		return
	}

	log.Info("Successfully created thread", "threadID", thread.ID, "agentName", thread.AgentName())
	RespondWithJSON(w, http.StatusCreated, thread)
}

// HandleDeleteThread handles DELETE /thread/{id} requests
func (h *ThreadsHandler) HandleDeleteThread(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("threads-handler").WithValues("operation", "delete")

	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get thread ID from path", err))
		return
	}

	status, err := h.Clients.Thread.DeleteThread(r.Context(), id)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to delete thread", err))
		return
	}

	log.Info("Successfully deleted thread", "threadID", id)
	RespondWithJSON(w, http.StatusOK, status)
}

// HandleListMessages handles GET /thread/{id}/messages requests
func (h *ThreadsHandler) HandleListMessages(w ErrorResponseWriter, r *http.Request) {
	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get thread ID from path", err))
		return
	}

	messages, err := h.Clients.Thread.ListMessages(r.Context(), id)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to get messages", err))
		return
	}
	if messages == nil {
		messages = []api.Message{}
	}
	RespondWithJSON(w, http.StatusOK, messages)
}

// HandleAddMessage handles POST /thread/{id}/message requests
func (h *ThreadsHandler) HandleAddMessage(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("threads-handler").WithValues("operation", "add-message")

	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get thread ID from path", err))
		return
	}

	var message api.HumanMessage
	if err := DecodeJSONBody(r, &message); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	stored, err := h.Clients.Thread.AddMessage(r.Context(), id, &message)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to add message", err))
		return
	}

	log.V(1).Info("Added message to thread", "threadID", id)
	RespondWithJSON(w, http.StatusOK, stored)
}

// HandleChat handles POST /thread/{id}/chat requests
func (h *ThreadsHandler) HandleChat(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("threads-handler").WithValues("operation", "chat")

	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get thread ID from path", err))
		return
	}

	var params api.ThreadChatParams
	if err := DecodeJSONBody(r, &params); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	reply, err := h.Clients.Thread.Chat(r.Context(), id, &params)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to chat in thread", err))
		return
	}

	log.V(1).Info("Agent replied in thread", "threadID", id)
	RespondWithJSON(w, http.StatusOK, reply)
}

// HandleSetAgent handles PUT /thread/{id}/agent requests
func (h *ThreadsHandler) HandleSetAgent(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("threads-handler").WithValues("operation", "set-agent")

	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get thread ID from path", err))
		return
	}

	var update api.ThreadAgentUpdate
	if err := DecodeJSONBody(r, &update); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	thread, err := h.Clients.Thread.SetAgent(r.Context(), id, update.AgentName)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to set thread agent", err))
		return
	}

	log.Info("Changed thread agent", "threadID", id, "agentName", update.AgentName)
	RespondWithJSON(w, http.StatusOK, thread)
}
