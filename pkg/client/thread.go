package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Thread defines the thread operations
type Thread interface {
	ListThreads(ctx context.Context) ([]api.Thread, error)
	GetThread(ctx context.Context, id string) (*api.Thread, error)
	CreateThread(ctx context.Context, params *api.ThreadParams) (*api.Thread, error)
	DeleteThread(ctx context.Context, id string) (*api.StatusMessage, error)
	ListMessages(ctx context.Context, id string) ([]api.Message, error)
	AddMessage(ctx context.Context, id string, message *api.HumanMessage) (api.Message, error)
	Chat(ctx context.Context, id string, params *api.ThreadChatParams) (api.Message, error)
	SetAgent(ctx context.Context, id, agentName string) (*api.Thread, error)
}

// threadClient handles thread-related requests. Threads have no update
// endpoint besides the default agent change.
type threadClient struct {
	threads resource[api.Thread, api.ThreadParams, struct{}]
}

// NewThreadClient creates a new thread client
func NewThreadClient(client *BaseClient) Thread {
	return &threadClient{threads: newResource[api.Thread, api.ThreadParams, struct{}](client, "thread", "thread")}
}

// ListThreads lists all threads
func (c *threadClient) ListThreads(ctx context.Context) ([]api.Thread, error) {
	return c.threads.list(ctx, "get all threads")
}

// GetThread retrieves a thread by ID
func (c *threadClient) GetThread(ctx context.Context, id string) (*api.Thread, error) {
	return c.threads.get(ctx, id)
}

// CreateThread creates a thread bound to a default agent
func (c *threadClient) CreateThread(ctx context.Context, params *api.ThreadParams) (*api.Thread, error) {
	return c.threads.create(ctx, params)
}

// DeleteThread deletes a thread and its history
func (c *threadClient) DeleteThread(ctx context.Context, id string) (*api.StatusMessage, error) {
	return c.threads.delete(ctx, id)
}

// ListMessages returns the history of a thread, oldest first
func (c *threadClient) ListMessages(ctx context.Context, id string) ([]api.Message, error) {
	req := c.threads.action("messages", fmt.Sprintf("get messages of thread '%s'", id), http.MethodGet, id, "messages")
	messages, err := invoke[api.Messages](ctx, c.threads.client, req)
	if err != nil {
		return nil, err
	}
	return *messages, nil
}

// AddMessage appends a message to a thread without asking an agent to reply
func (c *threadClient) AddMessage(ctx context.Context, id string, message *api.HumanMessage) (api.Message, error) {
	req := c.threads.action("message", fmt.Sprintf("add message to thread '%s'", id), http.MethodPost, id, "message")
	req.body = message
	return c.message(ctx, req)
}

// Chat appends a message to a thread and returns the agent's reply
func (c *threadClient) Chat(ctx context.Context, id string, params *api.ThreadChatParams) (api.Message, error) {
	req := c.threads.action("chat", fmt.Sprintf("chat in thread '%s'", id), http.MethodPost, id, "chat")
	req.body = params
	return c.message(ctx, req)
}

// SetAgent changes the default agent of a thread
func (c *threadClient) SetAgent(ctx context.Context, id, agentName string) (*api.Thread, error) {
	req := c.threads.action("agent", fmt.Sprintf("set agent '%s' on thread '%s'", agentName, id), http.MethodPut, id, "agent")
	req.body = &api.ThreadAgentUpdate{AgentName: agentName}
	return invoke[api.Thread](ctx, c.threads.client, req)
}

func (c *threadClient) message(ctx context.Context, req request) (api.Message, error) {
	reply, err := invoke[api.TypedMessage](ctx, c.threads.client, req)
	if err != nil {
		return nil, err
	}
	return reply.Message, nil
}
