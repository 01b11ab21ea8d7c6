package fake

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

type threadFake struct {
	s *Store
}

func (f *threadFake) ListThreads(_ context.Context) ([]api.Thread, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	threads := make([]api.Thread, 0, len(f.s.threads))
	for _, record := range f.s.threads {
		threads = append(threads, f.s.threadView(record))
	}
	slices.SortFunc(threads, func(a, b api.Thread) int { return strings.Compare(a.ID, b.ID) })
	return threads, nil
}

func (f *threadFake) GetThread(_ context.Context, id string) (*api.Thread, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.threads[id]
	if !ok {
		return nil, notFound(fmt.Sprintf("get thread '%s'", id), "thread", id)
	}
	thread := f.s.threadView(record)
	return &thread, nil
}

func (f *threadFake) CreateThread(_ context.Context, params *api.ThreadParams) (*api.Thread, error) {
	const op = "create thread"
	if params == nil {
		return nil, badRequest(op, "thread parameters are required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	id := params.ID
	if id == "" {
		id = f.s.newID()
	}
	if _, exists := f.s.threads[id]; exists {
		return nil, conflict(op, "thread", id)
	}
	agent, ok := f.s.agents[params.AgentName]
	if !ok {
		return nil, notFound(op, "agent", params.AgentName)
	}

	record := &threadRecord{
		thread: api.Thread{
			ID:      id,
			Authors: slices.Clone(params.Authors),
		},
		agentID: agent.agent.ID,
	}
	if params.Platform != "" {
		platform := params.Platform
		record.thread.Platform = &platform
	}
	if params.Description != "" {
		description := params.Description
		record.thread.Description = &description
	}
	f.s.threads[id] = record
	thread := f.s.threadView(record)
	return &thread, nil
}

func (f *threadFake) DeleteThread(_ context.Context, id string) (*api.StatusMessage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, ok := f.s.threads[id]; !ok {
		return nil, notFound(fmt.Sprintf("delete thread '%s'", id), "thread", id)
	}
	delete(f.s.threads, id)
	return deleted("thread", id), nil
}

func (f *threadFake) ListMessages(_ context.Context, id string) ([]api.Message, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.threads[id]
	if !ok {
		return nil, notFound(fmt.Sprintf("get messages of thread '%s'", id), "thread", id)
	}
	return slices.Clone(record.messages), nil
}

func (f *threadFake) AddMessage(_ context.Context, id string, message *api.HumanMessage) (api.Message, error) {
	op := fmt.Sprintf("add message to thread '%s'", id)
	if message == nil {
		return nil, badRequest(op, "message is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.threads[id]
	if !ok {
		return nil, notFound(op, "thread", id)
	}
	return f.s.appendMessage(record, *message), nil
}

// Chat records the message and the reply of the selected agent
func (f *threadFake) Chat(_ context.Context, id string, params *api.ThreadChatParams) (api.Message, error) {
	op := fmt.Sprintf("chat in thread '%s'", id)
	if params == nil {
		return nil, badRequest(op, "message is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.threads[id]
	if !ok {
		return nil, notFound(op, "thread", id)
	}

	var agent *agentRecord
	if params.AgentName != "" {
		if agent, ok = f.s.agents[params.AgentName]; !ok {
			return nil, notFound(op, "agent", params.AgentName)
		}
	} else if agent, ok = f.s.agentByID(record.agentID); !ok {
		return nil, badRequest(op, "thread '%s' has no default agent", id)
	}

	f.s.appendMessage(record, params.Message)
	return f.s.appendMessage(record, reply(agent.agent.Name, params.Message)), nil
}

func (f *threadFake) SetAgent(_ context.Context, id, agentName string) (*api.Thread, error) {
	op := fmt.Sprintf("set agent '%s' on thread '%s'", agentName, id)

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.threads[id]
	if !ok {
		return nil, notFound(op, "thread", id)
	}
	agent, ok := f.s.agents[agentName]
	if !ok {
		return nil, notFound(op, "agent", agentName)
	}
	record.agentID = agent.agent.ID
	thread := f.s.threadView(record)
	return &thread, nil
}

// appendMessage assigns the message its store references and records it.
// Must be called with the lock held.
func (s *Store) appendMessage(record *threadRecord, message api.Message) api.Message {
	meta := api.MessageMeta{DBID: s.newID(), ContextID: record.thread.ID}
	switch m := message.(type) {
	case api.HumanMessage:
		m.MessageMeta = meta
		message = m
	case api.AIMessage:
		m.MessageMeta = meta
		message = m
	case api.SystemMessage:
		m.MessageMeta = meta
		message = m
	case api.ToolCallsMessage:
		m.MessageMeta = meta
		message = m
	case api.ToolResponseMessage:
		m.MessageMeta = meta
		message = m
	}
	record.messages = append(record.messages, message)
	return message
}

// threadView resolves the default agent of a thread. Must be called with the
// lock held.
func (s *Store) threadView(record *threadRecord) api.Thread {
	thread := record.thread
	thread.Authors = slices.Clone(thread.Authors)
	if agent, ok := s.agentByID(record.agentID); ok {
		id := agent.agent.ID
		thread.DefaultAgentID = &id
		thread.DefaultAgent = &api.AgentRef{ID: agent.agent.ID, Name: agent.agent.Name}
	}
	return thread
}
