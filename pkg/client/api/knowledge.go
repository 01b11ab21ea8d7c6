package api

import (
	"net/url"
	"strconv"
	"time"
)

// Knowledge base types

// DefaultDatabaseProvider is the storage backend used when a knowledge base
// create request does not name one
const DefaultDatabaseProvider = "pgvector"

// KnowledgeBaseParams is the body of a knowledge base create request
type KnowledgeBaseParams struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	EmbeddingModel   string `json:"embedding_model"`
	DatabaseProvider string `json:"database_provider,omitempty"`
}

// KnowledgeBaseUpdate is a partial knowledge base update
type KnowledgeBaseUpdate struct {
	EmbeddingModel *string `json:"embedding_model,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// KnowledgeBase represents a knowledge base as returned by the service
type KnowledgeBase struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	EmbeddingModel   string    `json:"embedding_model"`
	Models           []string  `json:"models,omitempty"`
	DatabaseProvider string    `json:"database_provider"`
	CreatedAt        time.Time `json:"createdAt"`
}

// DocumentParams is the body of an add-document request. Model selects the
// embedding model for this document only.
type DocumentParams struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Model    string         `json:"model,omitempty"`
}

// DocumentUpdate is a partial document update, the document is selected by ID.
// A non-nil Metadata replaces the document's metadata.
type DocumentUpdate struct {
	ID       string          `json:"id"`
	Content  *string         `json:"content,omitempty"`
	Metadata *map[string]any `json:"metadata,omitempty"`
}

// Document represents a document stored in a knowledge base. Document
// mutations may return only the ID.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content,omitempty"`
	Model     string         `json:"model,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// SearchRequest holds the read parameters of a knowledge base search
type SearchRequest struct {
	Query string
	K     int
	Model string
}

// Values encodes the request as the search query string
func (r *SearchRequest) Values() url.Values {
	v := url.Values{}
	v.Set("q", r.Query)
	v.Set("k", strconv.Itoa(r.K))
	if r.Model != "" {
		v.Set("model", r.Model)
	}
	return v
}

// SearchResult is a document ranked by similarity to a query
type SearchResult struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Model      string         `json:"model,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}
