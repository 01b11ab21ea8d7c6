package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/makima-ai/makima-go/internal/httpserver"
	"github.com/makima-ai/makima-go/pkg/client"
	"github.com/makima-ai/makima-go/pkg/client/api"
	"github.com/makima-ai/makima-go/pkg/client/fake"
)

// newTestClient returns an SDK client talking HTTP to the reference server
// over an empty fake
func newTestClient(t *testing.T, options ...fake.Option) *client.ClientSet {
	t.Helper()
	server := httptest.NewServer(httpserver.NewRouter(httpserver.ServerConfig{Clients: fake.NewClientSet(options...)}))
	t.Cleanup(server.Close)
	return client.New(server.URL + "/")
}

type weatherQuery struct {
	City string `json:"city" jsonschema:"description=City name"`
}

func requireStatus(t *testing.T, err error, status int) *client.ServiceError {
	t.Helper()
	var serviceErr *client.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	require.Equal(t, status, serviceErr.StatusCode, serviceErr.Error())
	return serviceErr
}

func TestNewDoesNotContactService(t *testing.T) {
	c := client.New("http://makima.invalid:1/")
	assert.Equal(t, "http://makima.invalid:1", c.BaseURL())
	assert.NotNil(t, c.Agent)
	assert.NotNil(t, c.Tool)
	assert.NotNil(t, c.Thread)
	assert.NotNil(t, c.Knowledge)
}

func TestToolLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	params := &api.ToolParams{
		Name:        "weather",
		Description: "Current weather",
		Params:      api.SchemaFor[weatherQuery](),
		Endpoint:    "https://example.com/weather",
		Method:      http.MethodGet,
	}
	created, err := c.Tool.CreateTool(ctx, params)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := c.Tool.GetTool(ctx, "weather")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, params.Endpoint, got.Endpoint)
	assert.Equal(t, params.Method, got.Method)
	require.NotNil(t, got.Params)
	assert.Equal(t, "object", got.Params.Type)

	updated, err := c.Tool.UpdateTool(ctx, "weather", &api.ToolUpdate{Method: ptr.To(http.MethodPost)})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, updated.Method)
	assert.Equal(t, params.Endpoint, updated.Endpoint, "fields not supplied are unchanged")
	assert.Equal(t, params.Description, updated.Description)

	_, err = c.Tool.CreateTool(ctx, params)
	requireStatus(t, err, http.StatusConflict)

	tools, err := c.Tool.ListTools(ctx)
	require.NoError(t, err)
	assert.Len(t, tools, 1)

	_, err = c.Tool.DeleteTool(ctx, "weather")
	require.NoError(t, err)
	_, err = c.Tool.GetTool(ctx, "weather")
	serviceErr := requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "tool 'weather' not found", serviceErr.Message)
	assert.EqualError(t, err, "failed to get tool 'weather': HTTP 404: tool 'weather' not found")
}

func TestAgentScenario(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Tool.CreateTool(ctx, &api.ToolParams{Name: "search", Endpoint: "https://example.com/search", Method: http.MethodPost})
	require.NoError(t, err)
	_, err = c.Knowledge.CreateKnowledgeBase(ctx, &api.KnowledgeBaseParams{Name: "handbook", EmbeddingModel: "text-embedding-3-small"})
	require.NoError(t, err)

	created, err := c.Agent.CreateAgent(ctx, &api.AgentParams{
		Name:           "researcher",
		Description:    "Finds things",
		Prompt:         "You research.",
		PrimaryModel:   "gpt-4o",
		FallbackModels: []string{"gpt-4o-mini"},
		Tools:          []string{"search"},
	})
	require.NoError(t, err)
	assert.Equal(t, "researcher", created.Name)

	_, err = c.Agent.CreateAgent(ctx, &api.AgentParams{Name: "writer", Prompt: "You write.", PrimaryModel: "gpt-4o"})
	require.NoError(t, err)

	detail, err := c.Agent.GetAgent(ctx, "researcher")
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)
	assert.Equal(t, []string{"gpt-4o-mini"}, detail.FallbackModels)
	assert.Equal(t, []string{"search"}, detail.ToolNames())

	detail, err = c.Agent.AddHelper(ctx, "researcher", "writer")
	require.NoError(t, err)
	require.Len(t, detail.HelperAgents, 1)
	assert.Equal(t, "writer", detail.HelperAgents[0].Name)

	detail, err = c.Agent.AddKnowledgeBase(ctx, "researcher", "handbook")
	require.NoError(t, err)
	require.Len(t, detail.KnowledgeBases, 1)
	assert.Equal(t, "handbook", detail.KnowledgeBases[0].Name)

	detail, err = c.Agent.RemoveTool(ctx, "researcher", "search")
	require.NoError(t, err)
	assert.Empty(t, detail.Tools)
	detail, err = c.Agent.AddTool(ctx, "researcher", "search")
	require.NoError(t, err)
	assert.Equal(t, []string{"search"}, detail.ToolNames())

	detail, err = c.Agent.RemoveHelper(ctx, "researcher", "writer")
	require.NoError(t, err)
	assert.Empty(t, detail.HelperAgents)
	detail, err = c.Agent.RemoveKnowledgeBase(ctx, "researcher", "handbook")
	require.NoError(t, err)
	assert.Empty(t, detail.KnowledgeBases)

	_, err = c.Agent.AddTool(ctx, "researcher", "missing")
	requireStatus(t, err, http.StatusNotFound)

	updated, err := c.Agent.UpdateAgent(ctx, "researcher", &api.AgentUpdate{Prompt: ptr.To("You research carefully.")})
	require.NoError(t, err)
	assert.Equal(t, "You research carefully.", updated.Prompt)
	assert.Equal(t, "gpt-4o", updated.PrimaryModel)
	assert.Equal(t, "Finds things", updated.Description)

	reply, err := c.Agent.Chat(ctx, "researcher", &api.HumanMessage{Name: "alice", Content: api.Text("hello")})
	require.NoError(t, err)
	ai, ok := reply.(api.AIMessage)
	require.True(t, ok, "reply is %T", reply)
	assert.Equal(t, "researcher", ai.Name)
	assert.Contains(t, ai.Content, "hello")
}

func TestThreadScenario(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, name := range []string{"support", "billing"} {
		_, err := c.Agent.CreateAgent(ctx, &api.AgentParams{Name: name, Prompt: "p", PrimaryModel: "m"})
		require.NoError(t, err)
	}

	_, err := c.Thread.CreateThread(ctx, &api.ThreadParams{ID: "t-1", Platform: "web", AgentName: "nobody"})
	requireStatus(t, err, http.StatusNotFound)

	thread, err := c.Thread.CreateThread(ctx, &api.ThreadParams{
		ID:        "t-1",
		Platform:  "web",
		Authors:   []string{"alice"},
		AgentName: "support",
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", thread.ID)
	assert.Equal(t, "support", thread.AgentName())
	require.NotNil(t, thread.Platform)
	assert.Equal(t, "web", *thread.Platform)

	stored, err := c.Thread.AddMessage(ctx, "t-1", &api.HumanMessage{Name: "alice", Content: api.Text("my invoice is wrong"), AuthorID: "alice"})
	require.NoError(t, err)
	human, ok := stored.(api.HumanMessage)
	require.True(t, ok)
	assert.NotEmpty(t, human.DBID)

	reply, err := c.Thread.Chat(ctx, "t-1", &api.ThreadChatParams{
		Message: api.HumanMessage{Name: "alice", Content: api.Text("can you help?")},
	})
	require.NoError(t, err)
	assert.Equal(t, "support", reply.(api.AIMessage).Name)

	reply, err = c.Thread.Chat(ctx, "t-1", &api.ThreadChatParams{
		AgentName: "billing",
		Message:   api.HumanMessage{Name: "alice", Content: api.Text("refund please")},
	})
	require.NoError(t, err)
	assert.Equal(t, "billing", reply.(api.AIMessage).Name)

	messages, err := c.Thread.ListMessages(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, messages, 5)
	roles := make([]api.Role, 0, len(messages))
	for _, m := range messages {
		roles = append(roles, m.Role())
	}
	assert.Equal(t, []api.Role{api.RoleHuman, api.RoleHuman, api.RoleAI, api.RoleHuman, api.RoleAI}, roles)
	assert.Equal(t, "refund please", api.ContentOf(messages[3]))

	thread, err = c.Thread.SetAgent(ctx, "t-1", "billing")
	require.NoError(t, err)
	assert.Equal(t, "billing", thread.AgentName())

	threads, err := c.Thread.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "billing", threads[0].AgentName())

	_, err = c.Thread.DeleteThread(ctx, "t-1")
	require.NoError(t, err)
	_, err = c.Thread.ListMessages(ctx, "t-1")
	requireStatus(t, err, http.StatusNotFound)
}

func TestKnowledgeScenario(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	kb, err := c.Knowledge.CreateKnowledgeBase(ctx, &api.KnowledgeBaseParams{
		Name:           "docs",
		Description:    "Product docs",
		EmbeddingModel: "text-embedding-3-small",
	})
	require.NoError(t, err)
	assert.Equal(t, api.DefaultDatabaseProvider, kb.DatabaseProvider)

	docs, err := c.Knowledge.AddDocuments(ctx, "docs", []api.DocumentParams{
		{Content: "Go is a statically typed compiled language", Metadata: map[string]any{"topic": "go"}},
		{Content: "Rust focuses on memory safety"},
		{Content: "Go has goroutines and channels for concurrency in Go programs"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	results, err := c.Knowledge.Search(ctx, "docs", &api.SearchRequest{Query: "go concurrency", K: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, docs[2].ID, results[0].ID)
	assert.Equal(t, docs[0].ID, results[1].ID)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)

	updated, err := c.Knowledge.UpdateDocument(ctx, "docs", &api.DocumentUpdate{
		ID:       docs[0].ID,
		Metadata: ptr.To(map[string]any{"reviewed": true}),
	})
	require.NoError(t, err)
	assert.Equal(t, docs[0].Content, updated.Content)
	assert.Equal(t, map[string]any{"reviewed": true}, updated.Metadata)

	_, err = c.Knowledge.RemoveDocument(ctx, "docs", docs[1].ID)
	require.NoError(t, err)
	listed, err := c.Knowledge.ListDocuments(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	results, err = c.Knowledge.Search(ctx, "docs", &api.SearchRequest{Query: "memory safety"})
	require.NoError(t, err)
	assert.Len(t, results, 2, "k defaults to 5 and only two documents remain")

	kbUpdated, err := c.Knowledge.UpdateKnowledgeBase(ctx, "docs", &api.KnowledgeBaseUpdate{Description: ptr.To("All docs")})
	require.NoError(t, err)
	require.NotNil(t, kbUpdated.Description)
	assert.Equal(t, "All docs", *kbUpdated.Description)
	assert.Equal(t, "text-embedding-3-small", kbUpdated.EmbeddingModel)

	_, err = c.Knowledge.AddDocuments(ctx, "docs", []api.DocumentParams{{Content: "ok"}, {Content: ""}, {Content: "also ok"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "document 1")
	requireStatus(t, err, http.StatusBadRequest)
	listed, err = c.Knowledge.ListDocuments(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, listed, 4, "documents after a failure are still added")
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Agent.CreateAgent(ctx, &api.AgentParams{Name: "a", Prompt: "p", PrimaryModel: "m"})
	require.NoError(t, err)
	_, err = c.Tool.CreateTool(ctx, &api.ToolParams{Name: "t", Endpoint: "https://example.com", Method: http.MethodGet})
	require.NoError(t, err)
	_, err = c.Thread.CreateThread(ctx, &api.ThreadParams{ID: "th", Platform: "cli", AgentName: "a"})
	require.NoError(t, err)
	_, err = c.Knowledge.CreateKnowledgeBase(ctx, &api.KnowledgeBaseParams{Name: "k", EmbeddingModel: "e"})
	require.NoError(t, err)

	tests := []struct {
		kind   string
		delete func() error
		get    func() error
	}{
		{
			kind:   "thread",
			delete: func() error { _, err := c.Thread.DeleteThread(ctx, "th"); return err },
			get:    func() error { _, err := c.Thread.GetThread(ctx, "th"); return err },
		},
		{
			kind:   "agent",
			delete: func() error { _, err := c.Agent.DeleteAgent(ctx, "a"); return err },
			get:    func() error { _, err := c.Agent.GetAgent(ctx, "a"); return err },
		},
		{
			kind:   "tool",
			delete: func() error { _, err := c.Tool.DeleteTool(ctx, "t"); return err },
			get:    func() error { _, err := c.Tool.GetTool(ctx, "t"); return err },
		},
		{
			kind:   "knowledge base",
			delete: func() error { _, err := c.Knowledge.DeleteKnowledgeBase(ctx, "k"); return err },
			get:    func() error { _, err := c.Knowledge.GetKnowledgeBase(ctx, "k"); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			require.NoError(t, tt.delete())
			serviceErr := requireStatus(t, tt.get(), http.StatusNotFound)
			assert.Contains(t, serviceErr.Message, tt.kind)
			requireStatus(t, tt.delete(), http.StatusNotFound)
		})
	}
}

func TestKeysAreEscaped(t *testing.T) {
	ctx := context.Background()

	for _, key := range []string{"a/b", "a b", "a?b&c", "100%", "#frag", ".", ".."} {
		t.Run(key, func(t *testing.T) {
			// generated IDs embed the key so document IDs carry reserved characters too
			var n atomic.Int32
			c := newTestClient(t, fake.WithIDGenerator(func() string {
				return fmt.Sprintf("%s/%d", key, n.Add(1))
			}))

			_, err := c.Tool.CreateTool(ctx, &api.ToolParams{Name: key, Endpoint: "https://example.com", Method: http.MethodGet})
			require.NoError(t, err)
			_, err = c.Agent.CreateAgent(ctx, &api.AgentParams{Name: key, Prompt: "p", PrimaryModel: "m"})
			require.NoError(t, err)
			_, err = c.Knowledge.CreateKnowledgeBase(ctx, &api.KnowledgeBaseParams{Name: key, EmbeddingModel: "e"})
			require.NoError(t, err)

			agent, err := c.Agent.GetAgent(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, agent.Name)

			detail, err := c.Agent.AddTool(ctx, key, key)
			require.NoError(t, err)
			assert.Equal(t, []string{key}, detail.ToolNames())
			detail, err = c.Agent.AddKnowledgeBase(ctx, key, key)
			require.NoError(t, err)
			require.Len(t, detail.KnowledgeBases, 1)
			assert.Equal(t, key, detail.KnowledgeBases[0].Name)

			tool, err := c.Tool.UpdateTool(ctx, key, &api.ToolUpdate{Description: ptr.To("escaped")})
			require.NoError(t, err)
			assert.Equal(t, key, tool.Name)

			thread, err := c.Thread.CreateThread(ctx, &api.ThreadParams{ID: key, Platform: "test", AgentName: key})
			require.NoError(t, err)
			assert.Equal(t, key, thread.ID)
			thread, err = c.Thread.GetThread(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, thread.ID)
			_, err = c.Thread.AddMessage(ctx, key, &api.HumanMessage{Name: "u", Content: api.Text("hi")})
			require.NoError(t, err)
			_, err = c.Thread.Chat(ctx, key, &api.ThreadChatParams{Message: api.HumanMessage{Name: "u", Content: api.Text("again")}})
			require.NoError(t, err)
			messages, err := c.Thread.ListMessages(ctx, key)
			require.NoError(t, err)
			assert.Len(t, messages, 3)
			_, err = c.Thread.SetAgent(ctx, key, key)
			require.NoError(t, err)

			doc, err := c.Knowledge.AddDocument(ctx, key, &api.DocumentParams{Content: "reserved " + key})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(doc.ID, key+"/"), doc.ID)
			results, err := c.Knowledge.Search(ctx, key, &api.SearchRequest{Query: "reserved " + key, K: 1, Model: "e"})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, doc.ID, results[0].ID)
			updated, err := c.Knowledge.UpdateDocument(ctx, key, &api.DocumentUpdate{ID: doc.ID, Content: ptr.To("changed")})
			require.NoError(t, err)
			assert.Equal(t, "changed", updated.Content)
			_, err = c.Knowledge.RemoveDocument(ctx, key, doc.ID)
			require.NoError(t, err)
			docs, err := c.Knowledge.ListDocuments(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, docs)

			_, err = c.Thread.DeleteThread(ctx, key)
			require.NoError(t, err)
			_, err = c.Thread.GetThread(ctx, key)
			requireStatus(t, err, http.StatusNotFound)
			_, err = c.Knowledge.DeleteKnowledgeBase(ctx, key)
			require.NoError(t, err)
			_, err = c.Knowledge.GetKnowledgeBase(ctx, key)
			requireStatus(t, err, http.StatusNotFound)
			_, err = c.Tool.DeleteTool(ctx, key)
			require.NoError(t, err)
			_, err = c.Agent.DeleteAgent(ctx, key)
			require.NoError(t, err)
			_, err = c.Agent.GetAgent(ctx, key)
			requireStatus(t, err, http.StatusNotFound)
		})
	}
}

func TestUpdatesClearSuppliedFields(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Tool.CreateTool(ctx, &api.ToolParams{Name: "search", Description: "web", Endpoint: "https://example.com", Method: http.MethodGet})
	require.NoError(t, err)
	_, err = c.Agent.CreateAgent(ctx, &api.AgentParams{
		Name:           "a",
		Description:    "d",
		Prompt:         "p",
		PrimaryModel:   "m",
		FallbackModels: []string{"x"},
		Tools:          []string{"search"},
	})
	require.NoError(t, err)

	updated, err := c.Agent.UpdateAgent(ctx, "a", &api.AgentUpdate{
		Description:    ptr.To(""),
		FallbackModels: ptr.To([]string{}),
		Tools:          ptr.To([]string{}),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Empty(t, updated.FallbackModels)

	detail, err := c.Agent.GetAgent(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, detail.Description)
	assert.Empty(t, detail.FallbackModels)
	assert.Empty(t, detail.Tools)
	assert.Equal(t, "p", detail.Prompt)
	assert.Equal(t, "m", detail.PrimaryModel)

	_, err = c.Agent.UpdateAgent(ctx, "a", &api.AgentUpdate{Name: ptr.To("")})
	requireStatus(t, err, http.StatusBadRequest)

	tool, err := c.Tool.UpdateTool(ctx, "search", &api.ToolUpdate{Description: ptr.To("")})
	require.NoError(t, err)
	assert.Empty(t, tool.Description)
	assert.Equal(t, "https://example.com", tool.Endpoint)

	_, err = c.Knowledge.CreateKnowledgeBase(ctx, &api.KnowledgeBaseParams{Name: "kb", EmbeddingModel: "e"})
	require.NoError(t, err)
	doc, err := c.Knowledge.AddDocument(ctx, "kb", &api.DocumentParams{Content: "c", Metadata: map[string]any{"topic": "go"}})
	require.NoError(t, err)
	cleared, err := c.Knowledge.UpdateDocument(ctx, "kb", &api.DocumentUpdate{ID: doc.ID, Metadata: ptr.To(map[string]any{})})
	require.NoError(t, err)
	assert.Empty(t, cleared.Metadata)
	assert.Equal(t, "c", cleared.Content)
}

func TestServerRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(httpserver.NewRouter(httpserver.ServerConfig{Clients: fake.NewClientSet()}))
	defer server.Close()

	resp, err := http.Post(server.URL+"/agent/create", "application/json", strings.NewReader(`{"name":`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServiceErrorsMatchErrorsAs(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Knowledge.Search(context.Background(), "missing", &api.SearchRequest{Query: "x"})

	var serviceErr *client.ServiceError
	assert.True(t, errors.As(err, &serviceErr))
	var transportErr *client.TransportError
	assert.False(t, errors.As(err, &transportErr))
}
