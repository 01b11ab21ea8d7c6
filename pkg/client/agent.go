package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Agent defines the agent operations
type Agent interface {
	ListAgents(ctx context.Context) ([]api.Agent, error)
	GetAgent(ctx context.Context, name string) (*api.AgentDetail, error)
	CreateAgent(ctx context.Context, params *api.AgentParams) (*api.Agent, error)
	UpdateAgent(ctx context.Context, name string, update *api.AgentUpdate) (*api.Agent, error)
	DeleteAgent(ctx context.Context, name string) (*api.StatusMessage, error)
	AddTool(ctx context.Context, agentName, toolName string) (*api.AgentDetail, error)
	RemoveTool(ctx context.Context, agentName, toolName string) (*api.AgentDetail, error)
	AddHelper(ctx context.Context, agentName, helperName string) (*api.AgentDetail, error)
	RemoveHelper(ctx context.Context, agentName, helperName string) (*api.AgentDetail, error)
	AddKnowledgeBase(ctx context.Context, agentName, knowledgeBaseName string) (*api.AgentDetail, error)
	RemoveKnowledgeBase(ctx context.Context, agentName, knowledgeBaseName string) (*api.AgentDetail, error)
	Chat(ctx context.Context, agentName string, message *api.HumanMessage) (api.Message, error)
}

// agentClient handles agent-related requests
type agentClient struct {
	agents resource[api.Agent, api.AgentParams, api.AgentUpdate]
}

// NewAgentClient creates a new agent client
func NewAgentClient(client *BaseClient) Agent {
	return &agentClient{agents: newResource[api.Agent, api.AgentParams, api.AgentUpdate](client, "agent", "agent")}
}

// ListAgents lists all agents
func (c *agentClient) ListAgents(ctx context.Context) ([]api.Agent, error) {
	return c.agents.list(ctx, "get all agents")
}

// GetAgent retrieves an agent with its tools, helpers and knowledge bases
func (c *agentClient) GetAgent(ctx context.Context, name string) (*api.AgentDetail, error) {
	return invoke[api.AgentDetail](ctx, c.agents.client, c.agents.getRequest(name))
}

// CreateAgent creates a new agent
func (c *agentClient) CreateAgent(ctx context.Context, params *api.AgentParams) (*api.Agent, error) {
	return c.agents.create(ctx, params)
}

// UpdateAgent updates the supplied fields of an agent
func (c *agentClient) UpdateAgent(ctx context.Context, name string, update *api.AgentUpdate) (*api.Agent, error) {
	return c.agents.update(ctx, name, update)
}

// DeleteAgent deletes an agent
func (c *agentClient) DeleteAgent(ctx context.Context, name string) (*api.StatusMessage, error) {
	return c.agents.delete(ctx, name)
}

// AddTool attaches a tool to an agent
func (c *agentClient) AddTool(ctx context.Context, agentName, toolName string) (*api.AgentDetail, error) {
	return c.relate(ctx, "add-tool", fmt.Sprintf("add tool '%s' to agent '%s'", toolName, agentName), agentName, toolName)
}

// RemoveTool detaches a tool from an agent
func (c *agentClient) RemoveTool(ctx context.Context, agentName, toolName string) (*api.AgentDetail, error) {
	return c.relate(ctx, "remove-tool", fmt.Sprintf("remove tool '%s' from agent '%s'", toolName, agentName), agentName, toolName)
}

// AddHelper lets an agent delegate to a helper agent
func (c *agentClient) AddHelper(ctx context.Context, agentName, helperName string) (*api.AgentDetail, error) {
	return c.relate(ctx, "add-helper", fmt.Sprintf("add helper agent '%s' to agent '%s'", helperName, agentName), agentName, helperName)
}

// RemoveHelper removes a helper agent from an agent
func (c *agentClient) RemoveHelper(ctx context.Context, agentName, helperName string) (*api.AgentDetail, error) {
	return c.relate(ctx, "remove-helper", fmt.Sprintf("remove helper agent '%s' from agent '%s'", helperName, agentName), agentName, helperName)
}

// AddKnowledgeBase gives an agent access to a knowledge base
func (c *agentClient) AddKnowledgeBase(ctx context.Context, agentName, knowledgeBaseName string) (*api.AgentDetail, error) {
	return c.relate(ctx, "add-knowledge-base", fmt.Sprintf("add knowledge base '%s' to agent '%s'", knowledgeBaseName, agentName), agentName, knowledgeBaseName)
}

// RemoveKnowledgeBase revokes an agent's access to a knowledge base
func (c *agentClient) RemoveKnowledgeBase(ctx context.Context, agentName, knowledgeBaseName string) (*api.AgentDetail, error) {
	return c.relate(ctx, "remove-knowledge-base", fmt.Sprintf("remove knowledge base '%s' from agent '%s'", knowledgeBaseName, agentName), agentName, knowledgeBaseName)
}

// Chat sends a single message to an agent outside of any thread
func (c *agentClient) Chat(ctx context.Context, agentName string, message *api.HumanMessage) (api.Message, error) {
	req := c.agents.action("chat", fmt.Sprintf("have a temporary chat with agent '%s'", agentName), http.MethodPost, agentName, "chat")
	req.body = message
	reply, err := invoke[api.TypedMessage](ctx, c.agents.client, req)
	if err != nil {
		return nil, err
	}
	return reply.Message, nil
}

func (c *agentClient) relate(ctx context.Context, action, op, agentName, target string) (*api.AgentDetail, error) {
	return invoke[api.AgentDetail](ctx, c.agents.client, c.agents.action(action, op, http.MethodPost, agentName, action, target))
}
