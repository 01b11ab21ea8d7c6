package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makima-ai/makima-go/internal/httpserver/handlers"
	"github.com/makima-ai/makima-go/pkg/client"
	"github.com/makima-ai/makima-go/pkg/client/api"
	"github.com/makima-ai/makima-go/pkg/client/fake"
)

func jsonRequest(t *testing.T, method, target string, body any, vars map[string]string) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func setupHandlers(t *testing.T) (*handlers.Handlers, *client.ClientSet) {
	t.Helper()
	clients := fake.NewClientSet()
	return handlers.NewHandlers(clients), clients
}

func TestHealthHandler(t *testing.T) {
	h, _ := setupHandlers(t)
	w := httptest.NewRecorder()
	h.Health.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAgentsHandler(t *testing.T) {
	t.Run("HandleCreateAgent", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			h, _ := setupHandlers(t)
			w := newMockErrorResponseWriter()
			h.Agents.HandleCreateAgent(w, jsonRequest(t, http.MethodPost, "/agent/create", &api.AgentParams{Name: "support", Prompt: "Help"}, nil))

			require.Equal(t, http.StatusCreated, w.Code)
			var agent api.Agent
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agent))
			assert.Equal(t, "support", agent.Name)
			assert.NotEmpty(t, agent.ID)
		})

		t.Run("InvalidJSON", func(t *testing.T) {
			h, _ := setupHandlers(t)
			w := newMockErrorResponseWriter()
			req := httptest.NewRequest(http.MethodPost, "/agent/create", bytes.NewBufferString("{"))
			h.Agents.HandleCreateAgent(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotNil(t, w.errorReceived)
		})

		t.Run("Conflict", func(t *testing.T) {
			h, clients := setupHandlers(t)
			_, err := clients.Agent.CreateAgent(context.Background(), &api.AgentParams{Name: "support"})
			require.NoError(t, err)

			w := newMockErrorResponseWriter()
			h.Agents.HandleCreateAgent(w, jsonRequest(t, http.MethodPost, "/agent/create", &api.AgentParams{Name: "support"}, nil))

			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, "agent 'support' already exists", w.message())
		})
	})

	t.Run("HandleGetAgent", func(t *testing.T) {
		t.Run("EscapedName", func(t *testing.T) {
			h, clients := setupHandlers(t)
			_, err := clients.Agent.CreateAgent(context.Background(), &api.AgentParams{Name: "team/support"})
			require.NoError(t, err)

			w := newMockErrorResponseWriter()
			h.Agents.HandleGetAgent(w, jsonRequest(t, http.MethodGet, "/agent/team%2Fsupport", nil, map[string]string{"name": "team%2Fsupport"}))

			require.Equal(t, http.StatusOK, w.Code)
			var detail api.AgentDetail
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
			assert.Equal(t, "team/support", detail.Name)
		})

		t.Run("NotFound", func(t *testing.T) {
			h, _ := setupHandlers(t)
			w := newMockErrorResponseWriter()
			h.Agents.HandleGetAgent(w, jsonRequest(t, http.MethodGet, "/agent/missing", nil, map[string]string{"name": "missing"}))

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "agent 'missing' not found", w.message())
		})

		t.Run("MissingName", func(t *testing.T) {
			h, _ := setupHandlers(t)
			w := newMockErrorResponseWriter()
			h.Agents.HandleGetAgent(w, jsonRequest(t, http.MethodGet, "/agent/", nil, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	})

	t.Run("HandleAddTool", func(t *testing.T) {
		h, clients := setupHandlers(t)
		ctx := context.Background()
		_, err := clients.Agent.CreateAgent(ctx, &api.AgentParams{Name: "a"})
		require.NoError(t, err)
		_, err = clients.Tool.CreateTool(ctx, &api.ToolParams{Name: "t"})
		require.NoError(t, err)

		w := newMockErrorResponseWriter()
		h.Agents.HandleAddTool(w, jsonRequest(t, http.MethodPost, "/agent/a/add-tool/t", nil, map[string]string{"name": "a", "target": "t"}))

		require.Equal(t, http.StatusOK, w.Code)
		var detail api.AgentDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, []string{"t"}, detail.ToolNames())
	})

	t.Run("HandleChat", func(t *testing.T) {
		h, clients := setupHandlers(t)
		_, err := clients.Agent.CreateAgent(context.Background(), &api.AgentParams{Name: "bot"})
		require.NoError(t, err)

		w := newMockErrorResponseWriter()
		h.Agents.HandleChat(w, jsonRequest(t, http.MethodPost, "/agent/bot/chat", &api.HumanMessage{Content: api.Text("hi")}, map[string]string{"name": "bot"}))

		require.Equal(t, http.StatusOK, w.Code)
		reply, err := api.DecodeMessage(w.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, api.AIMessage{Name: "bot", Content: "bot received: hi"}, reply)
	})
}

func TestThreadsHandler(t *testing.T) {
	h, clients := setupHandlers(t)
	ctx := context.Background()
	_, err := clients.Agent.CreateAgent(ctx, &api.AgentParams{Name: "bot"})
	require.NoError(t, err)

	w := newMockErrorResponseWriter()
	h.Threads.HandleCreateThread(w, jsonRequest(t, http.MethodPost, "/thread/create", &api.ThreadParams{ID: "t-1", AgentName: "bot"}, nil))
	require.Equal(t, http.StatusCreated, w.Code)

	w = newMockErrorResponseWriter()
	h.Threads.HandleListMessages(w, jsonRequest(t, http.MethodGet, "/thread/t-1/messages", nil, map[string]string{"id": "t-1"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String(), "an empty history is an empty array")

	w = newMockErrorResponseWriter()
	chat := &api.ThreadChatParams{Message: api.HumanMessage{Name: "ada", Content: api.Text("hello")}}
	h.Threads.HandleChat(w, jsonRequest(t, http.MethodPost, "/thread/t-1/chat", chat, map[string]string{"id": "t-1"}))
	require.Equal(t, http.StatusOK, w.Code)

	w = newMockErrorResponseWriter()
	h.Threads.HandleListMessages(w, jsonRequest(t, http.MethodGet, "/thread/t-1/messages", nil, map[string]string{"id": "t-1"}))
	require.Equal(t, http.StatusOK, w.Code)
	var messages api.Messages
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, api.RoleHuman, messages[0].Role())
	assert.Equal(t, api.RoleAI, messages[1].Role())

	w = newMockErrorResponseWriter()
	h.Threads.HandleSetAgent(w, jsonRequest(t, http.MethodPut, "/thread/t-1/agent", &api.ThreadAgentUpdate{AgentName: "ghost"}, map[string]string{"id": "t-1"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeHandler(t *testing.T) {
	t.Run("HandleSearch", func(t *testing.T) {
		h, clients := setupHandlers(t)
		ctx := context.Background()
		_, err := clients.Knowledge.CreateKnowledgeBase(ctx, &api.KnowledgeBaseParams{Name: "kb", EmbeddingModel: "small"})
		require.NoError(t, err)
		for _, content := range []string{"go is fun", "rust is fast", "go go go"} {
			_, err := clients.Knowledge.AddDocument(ctx, "kb", &api.DocumentParams{Content: content})
			require.NoError(t, err)
		}

		w := newMockErrorResponseWriter()
		h.Knowledge.HandleSearch(w, jsonRequest(t, http.MethodGet, "/knowledge/kb/search?q=go&k=2", nil, map[string]string{"name": "kb"}))

		require.Equal(t, http.StatusOK, w.Code)
		var results []api.SearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "go go go", results[0].Content)
		assert.Equal(t, "go is fun", results[1].Content)
	})

	t.Run("InvalidK", func(t *testing.T) {
		h, _ := setupHandlers(t)
		w := newMockErrorResponseWriter()
		h.Knowledge.HandleSearch(w, jsonRequest(t, http.MethodGet, "/knowledge/kb/search?q=go&k=many", nil, map[string]string{"name": "kb"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.message(), "Invalid k")
	})

	t.Run("HandleAddDocument", func(t *testing.T) {
		h, _ := setupHandlers(t)
		w := newMockErrorResponseWriter()
		h.Knowledge.HandleAddDocument(w, jsonRequest(t, http.MethodPost, "/knowledge/kb/add-document", &api.DocumentParams{Content: "x"}, map[string]string{"name": "kb"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "knowledge base 'kb' not found", w.message())
	})
}
