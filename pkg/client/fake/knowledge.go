package fake

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// defaultSearchK is the number of results when a search does not set k
const defaultSearchK = 5

type knowledgeFake struct {
	s *Store
}

func (f *knowledgeFake) ListKnowledgeBases(_ context.Context) ([]api.KnowledgeBase, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	bases := make([]api.KnowledgeBase, 0, len(f.s.knowledge))
	for _, record := range f.s.knowledge {
		bases = append(bases, cloneKnowledgeBase(record.kb))
	}
	slices.SortFunc(bases, func(a, b api.KnowledgeBase) int { return strings.Compare(a.Name, b.Name) })
	return bases, nil
}

func (f *knowledgeFake) GetKnowledgeBase(_ context.Context, name string) (*api.KnowledgeBase, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("get knowledge base '%s'", name), "knowledge base", name)
	}
	kb := cloneKnowledgeBase(record.kb)
	return &kb, nil
}

func (f *knowledgeFake) CreateKnowledgeBase(_ context.Context, params *api.KnowledgeBaseParams) (*api.KnowledgeBase, error) {
	const op = "create knowledge base"
	if params == nil || params.Name == "" {
		return nil, badRequest(op, "name is required")
	}
	if params.EmbeddingModel == "" {
		return nil, badRequest(op, "embedding_model is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, exists := f.s.knowledge[params.Name]; exists {
		return nil, conflict(op, "knowledge base", params.Name)
	}
	record := &kbRecord{
		kb: api.KnowledgeBase{
			ID:               f.s.newID(),
			Name:             params.Name,
			EmbeddingModel:   params.EmbeddingModel,
			Models:           []string{params.EmbeddingModel},
			DatabaseProvider: params.DatabaseProvider,
			CreatedAt:        f.s.now(),
		},
	}
	if record.kb.DatabaseProvider == "" {
		record.kb.DatabaseProvider = api.DefaultDatabaseProvider
	}
	if params.Description != "" {
		description := params.Description
		record.kb.Description = &description
	}
	f.s.knowledge[params.Name] = record
	kb := cloneKnowledgeBase(record.kb)
	return &kb, nil
}

func (f *knowledgeFake) UpdateKnowledgeBase(_ context.Context, name string, update *api.KnowledgeBaseUpdate) (*api.KnowledgeBase, error) {
	op := fmt.Sprintf("update knowledge base '%s'", name)

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(op, "knowledge base", name)
	}
	if update != nil {
		if update.EmbeddingModel != nil {
			record.kb.EmbeddingModel = *update.EmbeddingModel
			record.kb.Models = appendUnique(record.kb.Models, *update.EmbeddingModel)
		}
		if update.Description != nil {
			description := *update.Description
			record.kb.Description = &description
		}
	}
	kb := cloneKnowledgeBase(record.kb)
	return &kb, nil
}

func (f *knowledgeFake) DeleteKnowledgeBase(_ context.Context, name string) (*api.StatusMessage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("delete knowledge base '%s'", name), "knowledge base", name)
	}
	delete(f.s.knowledge, name)
	for _, agent := range f.s.agents {
		agent.knowledgeBases = without(agent.knowledgeBases, record.kb.ID)
	}
	return deleted("knowledge base", name), nil
}

func (f *knowledgeFake) AddDocument(_ context.Context, name string, document *api.DocumentParams) (*api.Document, error) {
	op := fmt.Sprintf("add document to knowledge base '%s'", name)
	if document == nil || document.Content == "" {
		return nil, badRequest(op, "content is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(op, "knowledge base", name)
	}
	doc := api.Document{
		ID:        f.s.newID(),
		Content:   document.Content,
		Model:     document.Model,
		Metadata:  maps.Clone(document.Metadata),
		CreatedAt: f.s.now(),
	}
	if doc.Model == "" {
		doc.Model = record.kb.EmbeddingModel
	}
	record.kb.Models = appendUnique(record.kb.Models, doc.Model)
	record.docs = append(record.docs, doc)
	return cloneDocument(doc), nil
}

// AddDocuments adds each document in order and aggregates the failures like
// the HTTP client does
func (f *knowledgeFake) AddDocuments(ctx context.Context, name string, documents []api.DocumentParams) ([]api.Document, error) {
	var result *multierror.Error
	added := make([]api.Document, 0, len(documents))
	for i := range documents {
		doc, err := f.AddDocument(ctx, name, &documents[i])
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("document %d: %w", i, err))
			continue
		}
		added = append(added, *doc)
	}
	return added, result.ErrorOrNil()
}

func (f *knowledgeFake) UpdateDocument(_ context.Context, name string, update *api.DocumentUpdate) (*api.Document, error) {
	op := fmt.Sprintf("update document in knowledge base '%s'", name)
	if update == nil || update.ID == "" {
		return nil, badRequest(op, "document id is required")
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(op, "knowledge base", name)
	}
	i := slices.IndexFunc(record.docs, func(doc api.Document) bool { return doc.ID == update.ID })
	if i < 0 {
		return nil, notFound(op, "document", update.ID)
	}

	doc := &record.docs[i]
	if update.Content != nil {
		doc.Content = *update.Content
	}
	if update.Metadata != nil {
		doc.Metadata = maps.Clone(*update.Metadata)
	}
	return cloneDocument(*doc), nil
}

func (f *knowledgeFake) RemoveDocument(_ context.Context, name, documentID string) (*api.StatusMessage, error) {
	op := fmt.Sprintf("remove document '%s' from knowledge base '%s'", documentID, name)

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(op, "knowledge base", name)
	}
	i := slices.IndexFunc(record.docs, func(doc api.Document) bool { return doc.ID == documentID })
	if i < 0 {
		return nil, notFound(op, "document", documentID)
	}
	record.docs = slices.Delete(record.docs, i, i+1)
	return &api.StatusMessage{Message: fmt.Sprintf("document '%s' removed", documentID)}, nil
}

func (f *knowledgeFake) ListDocuments(_ context.Context, name string) ([]api.Document, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(fmt.Sprintf("get documents of knowledge base '%s'", name), "knowledge base", name)
	}
	docs := make([]api.Document, 0, len(record.docs))
	for _, doc := range record.docs {
		docs = append(docs, *cloneDocument(doc))
	}
	return docs, nil
}

// Search ranks the documents by cosine similarity of their word counts to
// the query. A model restricts the search to documents embedded with it.
func (f *knowledgeFake) Search(_ context.Context, name string, search *api.SearchRequest) ([]api.SearchResult, error) {
	op := fmt.Sprintf("search knowledge base '%s'", name)
	if search == nil {
		search = &api.SearchRequest{}
	}

	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	record, ok := f.s.knowledge[name]
	if !ok {
		return nil, notFound(op, "knowledge base", name)
	}

	k := search.K
	if k <= 0 {
		k = defaultSearchK
	}
	query := wordCounts(search.Query)
	results := make([]api.SearchResult, 0, len(record.docs))
	for _, doc := range record.docs {
		if search.Model != "" && doc.Model != search.Model {
			continue
		}
		results = append(results, api.SearchResult{
			ID:         doc.ID,
			Content:    doc.Content,
			Model:      doc.Model,
			Metadata:   maps.Clone(doc.Metadata),
			Similarity: cosine(query, wordCounts(doc.Content)),
		})
	}
	slices.SortStableFunc(results, func(a, b api.SearchResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// knowledgeBaseByID must be called with the lock held
func (s *Store) knowledgeBaseByID(id string) (*kbRecord, bool) {
	for _, record := range s.knowledge {
		if record.kb.ID == id {
			return record, true
		}
	}
	return nil, false
}

func cloneKnowledgeBase(kb api.KnowledgeBase) api.KnowledgeBase {
	kb.Models = slices.Clone(kb.Models)
	return kb
}

func cloneDocument(doc api.Document) *api.Document {
	doc.Metadata = maps.Clone(doc.Metadata)
	return &doc
}
