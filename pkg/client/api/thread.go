package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Thread types

// ThreadParams is the body of a thread create request
type ThreadParams struct {
	ID          string   `json:"id"`
	Platform    string   `json:"platform"`
	Description string   `json:"description,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	AgentName   string   `json:"agentName"`
}

// AgentRef is the short form of an agent embedded in other resources
type AgentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Thread represents a conversation thread as returned by the service
type Thread struct {
	ID               string         `json:"id"`
	Platform         *string        `json:"platform"`
	Description      *string        `json:"description"`
	Authors          []string       `json:"authors"`
	DefaultAgentID   *string        `json:"default_agent_id"`
	DefaultAgent     *AgentRef      `json:"default_agent,omitempty"`
	ScalingAlgorithm ScalingType    `json:"scaling_algorithm,omitempty"`
	ScalingConfig    *ScalingConfig `json:"scaling_config,omitempty"`
}

// AgentName returns the name of the thread's default agent, if any
func (t *Thread) AgentName() string {
	if t.DefaultAgent == nil {
		return ""
	}
	return t.DefaultAgent.Name
}

// ThreadChatParams is the body of a thread chat request. AgentName overrides
// the thread's default agent for this turn only.
type ThreadChatParams struct {
	AgentName string       `json:"agentName,omitempty"`
	Message   HumanMessage `json:"message"`
}

// ThreadAgentUpdate is the body of a default agent change
type ThreadAgentUpdate struct {
	AgentName string `json:"agentName"`
}

// Scaling configuration

// ScalingType names the policy condensing a thread's history
type ScalingType string

const (
	ScalingWindow    ScalingType = "window"
	ScalingThreshold ScalingType = "threshold"
	ScalingBlock     ScalingType = "block"
)

// ScalingPolicy is one of WindowScaling, ThresholdScaling or BlockScaling
type ScalingPolicy interface {
	ScalingType() ScalingType
	isScalingPolicy()
}

// WindowScaling keeps the last WindowSize messages
type WindowScaling struct {
	WindowSize int `json:"windowSize"`
}

// ThresholdScaling summarizes once the window reaches SummarizationThreshold
type ThresholdScaling struct {
	TotalWindow            int `json:"totalWindow"`
	SummarizationThreshold int `json:"summarizationThreshold"`
}

// BlockScaling condenses history in fixed size blocks
type BlockScaling struct {
	BlockSize                   int  `json:"blockSize"`
	MaxBlocks                   *int `json:"maxBlocks,omitempty"`
	BlockSummarizationThreshold *int `json:"blockSummarizationThreshold,omitempty"`
}

func (WindowScaling) ScalingType() ScalingType    { return ScalingWindow }
func (ThresholdScaling) ScalingType() ScalingType { return ScalingThreshold }
func (BlockScaling) ScalingType() ScalingType     { return ScalingBlock }

func (WindowScaling) isScalingPolicy()    {}
func (ThresholdScaling) isScalingPolicy() {}
func (BlockScaling) isScalingPolicy()     {}

// ScalingConfig carries one ScalingPolicy tagged by "type"
type ScalingConfig struct {
	Policy ScalingPolicy
}

func (c ScalingConfig) MarshalJSON() ([]byte, error) {
	if c.Policy == nil {
		return []byte("null"), nil
	}
	return marshalTagged("type", string(c.Policy.ScalingType()), c.Policy)
}

func (c *ScalingConfig) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		c.Policy = nil
		return nil
	}
	var head struct {
		Type ScalingType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to decode scaling config: %w", err)
	}

	var err error
	switch head.Type {
	case ScalingWindow:
		var p WindowScaling
		err = json.Unmarshal(data, &p)
		c.Policy = p
	case ScalingThreshold:
		var p ThresholdScaling
		err = json.Unmarshal(data, &p)
		c.Policy = p
	case ScalingBlock:
		var p BlockScaling
		err = json.Unmarshal(data, &p)
		c.Policy = p
	default:
		return fmt.Errorf("failed to decode scaling config: unknown type %q", head.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s scaling config: %w", head.Type, err)
	}
	return nil
}
