package client

import (
	"context"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Tool defines the tool operations
type Tool interface {
	ListTools(ctx context.Context) ([]api.Tool, error)
	GetTool(ctx context.Context, name string) (*api.Tool, error)
	CreateTool(ctx context.Context, params *api.ToolParams) (*api.Tool, error)
	UpdateTool(ctx context.Context, name string, update *api.ToolUpdate) (*api.Tool, error)
	DeleteTool(ctx context.Context, name string) (*api.StatusMessage, error)
}

// toolClient handles tool-related requests
type toolClient struct {
	tools resource[api.Tool, api.ToolParams, api.ToolUpdate]
}

// NewToolClient creates a new tool client
func NewToolClient(client *BaseClient) Tool {
	return &toolClient{tools: newResource[api.Tool, api.ToolParams, api.ToolUpdate](client, "tool", "tool")}
}

// ListTools lists all tools
func (c *toolClient) ListTools(ctx context.Context) ([]api.Tool, error) {
	return c.tools.list(ctx, "get all tools")
}

// GetTool retrieves a tool by name
func (c *toolClient) GetTool(ctx context.Context, name string) (*api.Tool, error) {
	return c.tools.get(ctx, name)
}

// CreateTool registers a new tool
func (c *toolClient) CreateTool(ctx context.Context, params *api.ToolParams) (*api.Tool, error) {
	return c.tools.create(ctx, params)
}

// UpdateTool updates the supplied fields of a tool
func (c *toolClient) UpdateTool(ctx context.Context, name string, update *api.ToolUpdate) (*api.Tool, error) {
	return c.tools.update(ctx, name, update)
}

// DeleteTool deletes a tool
func (c *toolClient) DeleteTool(ctx context.Context, name string) (*api.StatusMessage, error) {
	return c.tools.delete(ctx, name)
}
