// Package fake provides an in-memory implementation of the Makima client
// interfaces. It keeps the service's bookkeeping (unique names, existing
// references, thread histories, documents) but performs no inference: agent
// replies are deterministic and search ranks documents by word overlap.
package fake

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makima-ai/makima-go/pkg/client"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Store holds the state shared by the fake sub-clients
type Store struct {
	mu        sync.RWMutex
	agents    map[string]*agentRecord  // key: agent name
	tools     map[string]*api.Tool     // key: tool name
	threads   map[string]*threadRecord // key: thread ID
	knowledge map[string]*kbRecord     // key: knowledge base name

	now   func() time.Time
	newID func() string
}

type agentRecord struct {
	agent          api.Agent
	toolIDs        []string
	helperIDs      []string
	knowledgeBases []string // knowledge base IDs
}

type threadRecord struct {
	thread   api.Thread
	agentID  string
	messages []api.Message
}

type kbRecord struct {
	kb   api.KnowledgeBase
	docs []api.Document
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source used for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the generator of resource, document and message IDs
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// New creates an empty store
func New(options ...Option) *Store {
	s := &Store{
		agents:    make(map[string]*agentRecord),
		tools:     make(map[string]*api.Tool),
		threads:   make(map[string]*threadRecord),
		knowledge: make(map[string]*kbRecord),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// NewClientSet returns a client set backed by a new empty store
func NewClientSet(options ...Option) *client.ClientSet {
	return New(options...).ClientSet()
}

// ClientSet returns a client set whose sub-clients operate on the store
func (s *Store) ClientSet() *client.ClientSet {
	return &client.ClientSet{
		Agent:     s.Agents(),
		Tool:      s.Tools(),
		Thread:    s.Threads(),
		Knowledge: s.KnowledgeBases(),
	}
}

// Agents returns the fake agent client
func (s *Store) Agents() client.Agent { return &agentFake{s} }

// Tools returns the fake tool client
func (s *Store) Tools() client.Tool { return &toolFake{s} }

// Threads returns the fake thread client
func (s *Store) Threads() client.Thread { return &threadFake{s} }

// KnowledgeBases returns the fake knowledge base client
func (s *Store) KnowledgeBases() client.Knowledge { return &knowledgeFake{s} }

func notFound(op, kind, key string) error {
	return &client.ServiceError{
		Op:         op,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s '%s' not found", kind, key),
	}
}

func conflict(op, kind, key string) error {
	return &client.ServiceError{
		Op:         op,
		StatusCode: http.StatusConflict,
		Message:    fmt.Sprintf("%s '%s' already exists", kind, key),
	}
}

func badRequest(op, format string, args ...any) error {
	return &client.ServiceError{
		Op:         op,
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf(format, args...),
	}
}

func deleted(kind, key string) *api.StatusMessage {
	return &api.StatusMessage{Message: fmt.Sprintf("%s '%s' deleted", kind, key)}
}

// without returns ids with every occurrence of id removed
func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
