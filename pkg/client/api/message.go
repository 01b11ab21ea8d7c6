package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role tags the variant of a Message
type Role string

const (
	RoleHuman        Role = "human"
	RoleAI           Role = "ai"
	RoleSystem       Role = "system"
	RoleToolCalls    Role = "tool_calls"
	RoleToolResponse Role = "tool_response"
)

// Message is one entry of a thread's history. The set of implementations is
// closed: HumanMessage, AIMessage, SystemMessage, ToolCallsMessage and
// ToolResponseMessage. Consumers switch on the concrete type.
type Message interface {
	Role() Role
	isMessage()
}

// MessageMeta holds the server-assigned references every message may carry
type MessageMeta struct {
	DBID      string `json:"db_id,omitempty"`
	ContextID string `json:"context_id,omitempty"`
}

// ContentType is the kind of a multimodal content part
type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeAudio ContentType = "audio"
)

// ContentPart is an image or audio item of a human message. URL is either a
// remote URL or base64 encoded data.
type ContentPart struct {
	Type   ContentType `json:"type"`
	URL    string      `json:"url"`
	Detail string      `json:"detail,omitempty"` // image only: auto, low, high
	Format string      `json:"format,omitempty"` // audio only: wav, mp3
}

// MessageContent is either plain text or a list of multimodal parts
type MessageContent struct {
	Text  string
	Parts []ContentPart
}

// Text builds text message content
func Text(s string) MessageContent {
	return MessageContent{Text: s}
}

// Parts builds multimodal message content
func Parts(parts ...ContentPart) MessageContent {
	return MessageContent{Parts: parts}
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = MessageContent{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, &c.Parts)
	}
	return json.Unmarshal(data, &c.Text)
}

// String returns the text content, or a placeholder per multimodal part
func (c MessageContent) String() string {
	if c.Parts == nil {
		return c.Text
	}
	items := make([]string, 0, len(c.Parts))
	for _, part := range c.Parts {
		items = append(items, fmt.Sprintf("[%s]", part.Type))
	}
	return strings.Join(items, " ")
}

// Attachment is an opaque file attached to a human message
type Attachment struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// HumanMessage is a message written by a user
type HumanMessage struct {
	MessageMeta
	Name        string         `json:"name"`
	Content     MessageContent `json:"content"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	AuthorID    string         `json:"authorId,omitempty"`
	CallID      string         `json:"callId,omitempty"`
}

// AIMessage is a reply produced by an agent
type AIMessage struct {
	MessageMeta
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SystemMessage carries instructions injected by the service
type SystemMessage struct {
	MessageMeta
	Content string `json:"content"`
}

// ToolCall is one tool invocation requested by an agent
type ToolCall struct {
	ToolName string         `json:"tool_name"`
	Params   map[string]any `json:"params"`
	ID       string         `json:"id"`
}

// ToolCallsMessage is an agent turn that requests tool invocations
type ToolCallsMessage struct {
	MessageMeta
	Content string     `json:"content,omitempty"`
	Calls   []ToolCall `json:"calls"`
}

// ToolResponseMessage is the result of a tool call, matched by ID
type ToolResponseMessage struct {
	MessageMeta
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (HumanMessage) Role() Role        { return RoleHuman }
func (AIMessage) Role() Role           { return RoleAI }
func (SystemMessage) Role() Role       { return RoleSystem }
func (ToolCallsMessage) Role() Role    { return RoleToolCalls }
func (ToolResponseMessage) Role() Role { return RoleToolResponse }

func (HumanMessage) isMessage()        {}
func (AIMessage) isMessage()           {}
func (SystemMessage) isMessage()       {}
func (ToolCallsMessage) isMessage()    {}
func (ToolResponseMessage) isMessage() {}

func (m HumanMessage) MarshalJSON() ([]byte, error) {
	type alias HumanMessage
	return marshalTagged("role", string(RoleHuman), alias(m))
}

func (m AIMessage) MarshalJSON() ([]byte, error) {
	type alias AIMessage
	return marshalTagged("role", string(RoleAI), alias(m))
}

func (m SystemMessage) MarshalJSON() ([]byte, error) {
	type alias SystemMessage
	return marshalTagged("role", string(RoleSystem), alias(m))
}

func (m ToolCallsMessage) MarshalJSON() ([]byte, error) {
	type alias ToolCallsMessage
	return marshalTagged("role", string(RoleToolCalls), alias(m))
}

func (m ToolResponseMessage) MarshalJSON() ([]byte, error) {
	type alias ToolResponseMessage
	return marshalTagged("role", string(RoleToolResponse), alias(m))
}

// DecodeMessage decodes one message, selecting the variant from its role
func DecodeMessage(data []byte) (Message, error) {
	var head struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	switch head.Role {
	case RoleHuman:
		return decodeAs[HumanMessage](data)
	case RoleAI:
		return decodeAs[AIMessage](data)
	case RoleSystem:
		return decodeAs[SystemMessage](data)
	case RoleToolCalls:
		return decodeAs[ToolCallsMessage](data)
	case RoleToolResponse:
		return decodeAs[ToolResponseMessage](data)
	case "":
		return nil, fmt.Errorf("failed to decode message: missing role")
	default:
		return nil, fmt.Errorf("failed to decode message: unknown role %q", head.Role)
	}
}

func decodeAs[T Message](data []byte) (Message, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", m.Role(), err)
	}
	return m, nil
}

// ContentOf returns the textual content of a message
func ContentOf(m Message) string {
	switch m := m.(type) {
	case HumanMessage:
		return m.Content.String()
	case AIMessage:
		return m.Content
	case SystemMessage:
		return m.Content
	case ToolCallsMessage:
		if m.Content != "" {
			return m.Content
		}
		names := make([]string, 0, len(m.Calls))
		for _, call := range m.Calls {
			names = append(names, call.ToolName)
		}
		return "calls: " + strings.Join(names, ", ")
	case ToolResponseMessage:
		return m.Content
	default:
		return ""
	}
}

// Messages is an ordered message history
type Messages []Message

func (ms *Messages) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode messages: %w", err)
	}
	out := make(Messages, 0, len(raw))
	for i, item := range raw {
		m, err := DecodeMessage(item)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, m)
	}
	*ms = out
	return nil
}

// TypedMessage carries a single Message in a JSON field
type TypedMessage struct {
	Message
}

func (t TypedMessage) MarshalJSON() ([]byte, error) {
	if t.Message == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.Message)
}

func (t *TypedMessage) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Message = nil
		return nil
	}
	m, err := DecodeMessage(data)
	if err != nil {
		return err
	}
	t.Message = m
	return nil
}

// marshalTagged encodes payload as a JSON object with key:tag as its first member
func marshalTagged(key, tag string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("tagged payload must encode as an object, got %s", body)
	}
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}
	tagJSON, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(keyJSON)
	buf.WriteByte(':')
	buf.Write(tagJSON)
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}
