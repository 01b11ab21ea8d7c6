package api

import "time"

// Agent types

// AgentParams is the body of an agent create request
type AgentParams struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Prompt         string   `json:"prompt"`
	PrimaryModel   string   `json:"primaryModel"`
	FallbackModels []string `json:"fallbackModels,omitempty"`
	Tools          []string `json:"tools,omitempty"`
}

// AgentUpdate is a partial agent update. Nil fields are left unchanged, a
// pointer to an empty value clears the field.
type AgentUpdate struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Prompt         *string   `json:"prompt,omitempty"`
	PrimaryModel   *string   `json:"primaryModel,omitempty"`
	FallbackModels *[]string `json:"fallbackModels,omitempty"`
	Tools          *[]string `json:"tools,omitempty"`
}

// Agent represents an agent as returned by the service
type Agent struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Prompt         string    `json:"prompt"`
	PrimaryModel   string    `json:"primaryModel"`
	FallbackModels []string  `json:"fallbackModels,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AgentDetail is an agent together with its relationships
type AgentDetail struct {
	Agent
	Tools          []Tool          `json:"tools"`
	HelperAgents   []Agent         `json:"helperAgents,omitempty"`
	KnowledgeBases []KnowledgeBase `json:"knowledgeBases,omitempty"`
}

// ToolNames returns the names of the tools attached to the agent
func (a *AgentDetail) ToolNames() []string {
	names := make([]string, 0, len(a.Tools))
	for _, tool := range a.Tools {
		names = append(names, tool.Name)
	}
	return names
}
