package fake

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

type agentFake struct {
	s *Store
}

func (f *agentFake) ListAgents(_ context.Context) ([]api.Agent, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	agents := make([]api.Agent, 0, len(f.s.agents))
	for _, record := range f.s.agents {
		agents = append(agents, cloneAgent(record.agent))
	}
	slices.SortFunc(agents, func(a, b api.Agent) int { return strings.Compare(a.Name, b.Name) })
	return agents, nil
}

func (f *agentFake) GetAgent(_ context.Context, name string) (*api.AgentDetail, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.agents[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("get agent '%s'", name), "agent", name)
	}
	return f.s.detail(record), nil
}

func (f *agentFake) CreateAgent(_ context.Context, params *api.AgentParams) (*api.Agent, error) {
	const op = "create agent"
	if params == nil || params.Name == "" {
		return nil, badRequest(op, "name is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, exists := f.s.agents[params.Name]; exists {
		return nil, conflict(op, "agent", params.Name)
	}
	toolIDs, err := f.s.resolveTools(op, params.Tools)
	if err != nil {
		return nil, err
	}

	record := &agentRecord{
		agent: api.Agent{
			ID:             f.s.newID(),
			Name:           params.Name,
			Description:    params.Description,
			Prompt:         params.Prompt,
			PrimaryModel:   params.PrimaryModel,
			FallbackModels: slices.Clone(params.FallbackModels),
			CreatedAt:      f.s.now(),
		},
		toolIDs: toolIDs,
	}
	f.s.agents[record.agent.Name] = record
	out := cloneAgent(record.agent)
	return &out, nil
}

func (f *agentFake) UpdateAgent(_ context.Context, name string, update *api.AgentUpdate) (*api.Agent, error) {
	op := fmt.Sprintf("update agent '%s'", name)

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.agents[name]
	if !ok {
		return nil, notFound(op, "agent", name)
	}
	if update == nil {
		out := cloneAgent(record.agent)
		return &out, nil
	}

	updated := cloneAgent(record.agent)
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Prompt != nil {
		updated.Prompt = *update.Prompt
	}
	if update.PrimaryModel != nil {
		updated.PrimaryModel = *update.PrimaryModel
	}
	if update.FallbackModels != nil {
		updated.FallbackModels = slices.Clone(*update.FallbackModels)
	}
	if updated.Name == "" {
		return nil, badRequest(op, "name is required")
	}
	if updated.Name != name {
		if _, exists := f.s.agents[updated.Name]; exists {
			return nil, conflict(op, "agent", updated.Name)
		}
	}
	toolIDs := record.toolIDs
	if update.Tools != nil {
		var err error
		if toolIDs, err = f.s.resolveTools(op, *update.Tools); err != nil {
			return nil, err
		}
	}

	record.agent = updated
	record.toolIDs = toolIDs
	delete(f.s.agents, name)
	f.s.agents[updated.Name] = record
	out := cloneAgent(updated)
	return &out, nil
}

func (f *agentFake) DeleteAgent(_ context.Context, name string) (*api.StatusMessage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.agents[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("delete agent '%s'", name), "agent", name)
	}
	delete(f.s.agents, name)
	for _, other := range f.s.agents {
		other.helperIDs = without(other.helperIDs, record.agent.ID)
	}
	return deleted("agent", name), nil
}

func (f *agentFake) AddTool(_ context.Context, agentName, toolName string) (*api.AgentDetail, error) {
	op := fmt.Sprintf("add tool '%s' to agent '%s'", toolName, agentName)
	return f.relate(op, agentName, func(record *agentRecord) error {
		tool, ok := f.s.tools[toolName]
		if !ok {
			return notFound(op, "tool", toolName)
		}
		record.toolIDs = appendUnique(record.toolIDs, tool.ID)
		return nil
	})
}

func (f *agentFake) RemoveTool(_ context.Context, agentName, toolName string) (*api.AgentDetail, error) {
	op := fmt.Sprintf("remove tool '%s' from agent '%s'", toolName, agentName)
	return f.relate(op, agentName, func(record *agentRecord) error {
		tool, ok := f.s.tools[toolName]
		if !ok {
			return notFound(op, "tool", toolName)
		}
		record.toolIDs = without(record.toolIDs, tool.ID)
		return nil
	})
}

func (f *agentFake) AddHelper(_ context.Context, agentName, helperName string) (*api.AgentDetail, error) {
	op := fmt.Sprintf("add helper agent '%s' to agent '%s'", helperName, agentName)
	return f.relate(op, agentName, func(record *agentRecord) error {
		helper, ok := f.s.agents[helperName]
		if !ok {
			return notFound(op, "agent", helperName)
		}
		if helper == record {
			return badRequest(op, "agent '%s' cannot be its own helper", agentName)
		}
		record.helperIDs = appendUnique(record.helperIDs, helper.agent.ID)
		return nil
	})
}

func (f *agentFake) RemoveHelper(_ context.Context, agentName, helperName string) (*api.AgentDetail, error) {
	op := fmt.Sprintf("remove helper agent '%s' from agent '%s'", helperName, agentName)
	return f.relate(op, agentName, func(record *agentRecord) error {
		helper, ok := f.s.agents[helperName]
		if !ok {
			return notFound(op, "agent", helperName)
		}
		record.helperIDs = without(record.helperIDs, helper.agent.ID)
		return nil
	})
}

func (f *agentFake) AddKnowledgeBase(_ context.Context, agentName, knowledgeBaseName string) (*api.AgentDetail, error) {
	op := fmt.Sprintf("add knowledge base '%s' to agent '%s'", knowledgeBaseName, agentName)
	return f.relate(op, agentName, func(record *agentRecord) error {
		kb, ok := f.s.knowledge[knowledgeBaseName]
		if !ok {
			return notFound(op, "knowledge base", knowledgeBaseName)
		}
		record.knowledgeBases = appendUnique(record.knowledgeBases, kb.kb.ID)
		return nil
	})
}

func (f *agentFake) RemoveKnowledgeBase(_ context.Context, agentName, knowledgeBaseName string) (*api.AgentDetail, error) {
	op := fmt.Sprintf("remove knowledge base '%s' from agent '%s'", knowledgeBaseName, agentName)
	return f.relate(op, agentName, func(record *agentRecord) error {
		kb, ok := f.s.knowledge[knowledgeBaseName]
		if !ok {
			return notFound(op, "knowledge base", knowledgeBaseName)
		}
		record.knowledgeBases = without(record.knowledgeBases, kb.kb.ID)
		return nil
	})
}

// Chat replies without recording anything
func (f *agentFake) Chat(_ context.Context, agentName string, message *api.HumanMessage) (api.Message, error) {
	op := fmt.Sprintf("have a temporary chat with agent '%s'", agentName)
	if message == nil {
		return nil, badRequest(op, "message is required")
	}

	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.agents[agentName]
	if !ok {
		return nil, notFound(op, "agent", agentName)
	}
	return reply(record.agent.Name, *message), nil
}

func (f *agentFake) relate(op, agentName string, change func(*agentRecord) error) (*api.AgentDetail, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.agents[agentName]
	if !ok {
		return nil, notFound(op, "agent", agentName)
	}
	if err := change(record); err != nil {
		return nil, err
	}
	return f.s.detail(record), nil
}

// reply is the deterministic answer of a fake agent
func reply(agentName string, message api.HumanMessage) api.AIMessage {
	return api.AIMessage{
		Name:    agentName,
		Content: fmt.Sprintf("%s received: %s", agentName, message.Content.String()),
	}
}

// resolveTools maps tool names to IDs. Must be called with the lock held.
func (s *Store) resolveTools(op string, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		tool, ok := s.tools[name]
		if !ok {
			return nil, notFound(op, "tool", name)
		}
		ids = appendUnique(ids, tool.ID)
	}
	return ids, nil
}

// detail must be called with the lock held
func (s *Store) detail(record *agentRecord) *api.AgentDetail {
	detail := &api.AgentDetail{
		Agent: cloneAgent(record.agent),
		Tools: make([]api.Tool, 0, len(record.toolIDs)),
	}
	for _, id := range record.toolIDs {
		if tool, ok := s.toolByID(id); ok {
			detail.Tools = append(detail.Tools, *tool)
		}
	}
	for _, id := range record.helperIDs {
		if helper, ok := s.agentByID(id); ok {
			detail.HelperAgents = append(detail.HelperAgents, cloneAgent(helper.agent))
		}
	}
	for _, id := range record.knowledgeBases {
		if kb, ok := s.knowledgeBaseByID(id); ok {
			detail.KnowledgeBases = append(detail.KnowledgeBases, cloneKnowledgeBase(kb.kb))
		}
	}
	return detail
}

// agentByID must be called with the lock held
func (s *Store) agentByID(id string) (*agentRecord, bool) {
	for _, record := range s.agents {
		if record.agent.ID == id {
			return record, true
		}
	}
	return nil, false
}

func cloneAgent(agent api.Agent) api.Agent {
	agent.FallbackModels = slices.Clone(agent.FallbackModels)
	return agent
}

func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
