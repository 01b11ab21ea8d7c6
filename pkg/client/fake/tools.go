package fake

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

type toolFake struct {
	s *Store
}

func (f *toolFake) ListTools(_ context.Context) ([]api.Tool, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	tools := make([]api.Tool, 0, len(f.s.tools))
	for _, tool := range f.s.tools {
		tools = append(tools, *tool)
	}
	slices.SortFunc(tools, func(a, b api.Tool) int { return strings.Compare(a.Name, b.Name) })
	return tools, nil
}

func (f *toolFake) GetTool(_ context.Context, name string) (*api.Tool, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	tool, ok := f.s.tools[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("get tool '%s'", name), "tool", name)
	}
	out := *tool
	return &out, nil
}

func (f *toolFake) CreateTool(_ context.Context, params *api.ToolParams) (*api.Tool, error) {
	const op = "create tool"
	if params == nil || params.Name == "" {
		return nil, badRequest(op, "name is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, exists := f.s.tools[params.Name]; exists {
		return nil, conflict(op, "tool", params.Name)
	}
	tool := &api.Tool{
		ID:          f.s.newID(),
		Name:        params.Name,
		Description: params.Description,
		Params:      params.Params,
		Endpoint:    params.Endpoint,
		Method:      params.Method,
		CreatedAt:   f.s.now(),
	}
	f.s.tools[tool.Name] = tool
	out := *tool
	return &out, nil
}

func (f *toolFake) UpdateTool(_ context.Context, name string, update *api.ToolUpdate) (*api.Tool, error) {
	op := fmt.Sprintf("update tool '%s'", name)

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	tool, ok := f.s.tools[name]
	if !ok {
		return nil, notFound(op, "tool", name)
	}
	if update == nil {
		out := *tool
		return &out, nil
	}

	updated := *tool
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Params != nil {
		updated.Params = update.Params
	}
	if update.Endpoint != nil {
		updated.Endpoint = *update.Endpoint
	}
	if update.Method != nil {
		updated.Method = *update.Method
	}
	if updated.Name == "" {
		return nil, badRequest(op, "name is required")
	}
	if updated.Name != name {
		if _, exists := f.s.tools[updated.Name]; exists {
			return nil, conflict(op, "tool", updated.Name)
		}
	}

	delete(f.s.tools, name)
	f.s.tools[updated.Name] = &updated
	out := updated
	return &out, nil
}

func (f *toolFake) DeleteTool(_ context.Context, name string) (*api.StatusMessage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	tool, ok := f.s.tools[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("delete tool '%s'", name), "tool", name)
	}
	delete(f.s.tools, name)
	for _, agent := range f.s.agents {
		agent.toolIDs = without(agent.toolIDs, tool.ID)
	}
	return deleted("tool", name), nil
}

// toolByID must be called with the lock held
func (s *Store) toolByID(id string) (*api.Tool, bool) {
	for _, tool := range s.tools {
		if tool.ID == id {
			return tool, true
		}
	}
	return nil, false
}
