package handlers

import (
	"net/http"

	"github.com/makima-ai/makima-go/pkg/client"
)

// Handlers holds all the HTTP handler components
type Handlers struct {
	Health    *HealthHandler
	Agents    *AgentsHandler
	Tools     *ToolsHandler
	Threads   *ThreadsHandler
	Knowledge *KnowledgeHandler
}

// Base holds common dependencies for all handlers. Clients is any
// implementation of the client interfaces, normally the in-memory fake.
type Base struct {
	Clients *client.ClientSet
}

// NewHandlers creates a new Handlers instance with all handler components
func NewHandlers(clients *client.ClientSet) *Handlers {
	base := &Base{Clients: clients}

	return &Handlers{
		Health:    NewHealthHandler(),
		Agents:    NewAgentsHandler(base),
		Tools:     NewToolsHandler(base),
		Threads:   NewThreadsHandler(base),
		Knowledge: NewKnowledgeHandler(base),
	}
}

// HealthHandler reports that the server is up
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth handles GET /health requests
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
