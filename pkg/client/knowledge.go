package client

import (
	"context"
	"fmt"
	"net/http"

	"dario.cat/mergo"
	"github.com/hashicorp/go-multierror"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Knowledge defines the knowledge base operations
type Knowledge interface {
	ListKnowledgeBases(ctx context.Context) ([]api.KnowledgeBase, error)
	GetKnowledgeBase(ctx context.Context, name string) (*api.KnowledgeBase, error)
	CreateKnowledgeBase(ctx context.Context, params *api.KnowledgeBaseParams) (*api.KnowledgeBase, error)
	UpdateKnowledgeBase(ctx context.Context, name string, update *api.KnowledgeBaseUpdate) (*api.KnowledgeBase, error)
	DeleteKnowledgeBase(ctx context.Context, name string) (*api.StatusMessage, error)
	AddDocument(ctx context.Context, name string, document *api.DocumentParams) (*api.Document, error)
	AddDocuments(ctx context.Context, name string, documents []api.DocumentParams) ([]api.Document, error)
	UpdateDocument(ctx context.Context, name string, update *api.DocumentUpdate) (*api.Document, error)
	RemoveDocument(ctx context.Context, name, documentID string) (*api.StatusMessage, error)
	ListDocuments(ctx context.Context, name string) ([]api.Document, error)
	Search(ctx context.Context, name string, search *api.SearchRequest) ([]api.SearchResult, error)
}

// knowledgeClient handles knowledge base requests
type knowledgeClient struct {
	bases resource[api.KnowledgeBase, api.KnowledgeBaseParams, api.KnowledgeBaseUpdate]
}

// NewKnowledgeClient creates a new knowledge base client
func NewKnowledgeClient(client *BaseClient) Knowledge {
	return &knowledgeClient{bases: newResource[api.KnowledgeBase, api.KnowledgeBaseParams, api.KnowledgeBaseUpdate](client, "knowledge base", "knowledge")}
}

// ListKnowledgeBases lists all knowledge bases
func (c *knowledgeClient) ListKnowledgeBases(ctx context.Context) ([]api.KnowledgeBase, error) {
	return c.bases.list(ctx, "get all knowledge bases")
}

// GetKnowledgeBase retrieves a knowledge base by name
func (c *knowledgeClient) GetKnowledgeBase(ctx context.Context, name string) (*api.KnowledgeBase, error) {
	return c.bases.get(ctx, name)
}

// CreateKnowledgeBase creates a knowledge base. An empty database provider
// defaults to api.DefaultDatabaseProvider.
func (c *knowledgeClient) CreateKnowledgeBase(ctx context.Context, params *api.KnowledgeBaseParams) (*api.KnowledgeBase, error) {
	if params == nil {
		params = &api.KnowledgeBaseParams{}
	}
	body := *params
	defaults := api.KnowledgeBaseParams{DatabaseProvider: api.DefaultDatabaseProvider}
	if err := mergo.Merge(&body, defaults); err != nil {
		return nil, &TransportError{Op: "create knowledge base", Err: fmt.Errorf("failed to apply defaults: %w", err)}
	}
	return c.bases.create(ctx, &body)
}

// UpdateKnowledgeBase updates the supplied fields of a knowledge base
func (c *knowledgeClient) UpdateKnowledgeBase(ctx context.Context, name string, update *api.KnowledgeBaseUpdate) (*api.KnowledgeBase, error) {
	return c.bases.update(ctx, name, update)
}

// DeleteKnowledgeBase deletes a knowledge base and its documents
func (c *knowledgeClient) DeleteKnowledgeBase(ctx context.Context, name string) (*api.StatusMessage, error) {
	return c.bases.delete(ctx, name)
}

// AddDocument adds a document to a knowledge base
func (c *knowledgeClient) AddDocument(ctx context.Context, name string, document *api.DocumentParams) (*api.Document, error) {
	req := c.bases.action("add-document", fmt.Sprintf("add document to knowledge base '%s'", name), http.MethodPost, name, "add-document")
	req.body = document
	return invoke[api.Document](ctx, c.bases.client, req)
}

// AddDocuments adds documents one request at a time, in order. It does not
// stop at the first failure: the documents that were added are returned
// together with every failure.
func (c *knowledgeClient) AddDocuments(ctx context.Context, name string, documents []api.DocumentParams) ([]api.Document, error) {
	var result *multierror.Error
	added := make([]api.Document, 0, len(documents))
	for i := range documents {
		doc, err := c.AddDocument(ctx, name, &documents[i])
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("document %d: %w", i, err))
			continue
		}
		added = append(added, *doc)
	}
	return added, result.ErrorOrNil()
}

// UpdateDocument updates the supplied fields of the document selected by ID
func (c *knowledgeClient) UpdateDocument(ctx context.Context, name string, update *api.DocumentUpdate) (*api.Document, error) {
	req := c.bases.action("update-document", fmt.Sprintf("update document in knowledge base '%s'", name), http.MethodPut, name, "update-document")
	req.body = update
	return invoke[api.Document](ctx, c.bases.client, req)
}

// RemoveDocument removes a document from a knowledge base
func (c *knowledgeClient) RemoveDocument(ctx context.Context, name, documentID string) (*api.StatusMessage, error) {
	op := fmt.Sprintf("remove document '%s' from knowledge base '%s'", documentID, name)
	return invoke[api.StatusMessage](ctx, c.bases.client, c.bases.action("remove-document", op, http.MethodDelete, name, "remove-document", documentID))
}

// ListDocuments lists the documents of a knowledge base
func (c *knowledgeClient) ListDocuments(ctx context.Context, name string) ([]api.Document, error) {
	req := c.bases.action("documents", fmt.Sprintf("get documents of knowledge base '%s'", name), http.MethodGet, name, "documents")
	documents, err := invoke[[]api.Document](ctx, c.bases.client, req)
	if err != nil {
		return nil, err
	}
	return *documents, nil
}

// Search returns the documents most similar to the query
func (c *knowledgeClient) Search(ctx context.Context, name string, search *api.SearchRequest) ([]api.SearchResult, error) {
	req := c.bases.action("search", fmt.Sprintf("search knowledge base '%s'", name), http.MethodGet, name, "search")
	if search != nil {
		req.query = search.Values()
	}
	results, err := invoke[[]api.SearchResult](ctx, c.bases.client, req)
	if err != nil {
		return nil, err
	}
	return *results, nil
}
