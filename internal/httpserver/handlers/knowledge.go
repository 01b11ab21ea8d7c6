package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/makima-ai/makima-go/internal/httpserver/errors"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

// KnowledgeHandler handles knowledge base requests
type KnowledgeHandler struct {
	*Base
}

// NewKnowledgeHandler creates a new KnowledgeHandler
func NewKnowledgeHandler(base *Base) *KnowledgeHandler {
	return &KnowledgeHandler{Base: base}
}

// HandleListKnowledgeBases handles GET /knowledge/ requests
func (h *KnowledgeHandler) HandleListKnowledgeBases(w ErrorResponseWriter, r *http.Request) {
	bases, err := h.Clients.Knowledge.ListKnowledgeBases(r.Context())
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to list knowledge bases", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, bases)
}

// HandleGetKnowledgeBase handles GET /knowledge/{name} requests
func (h *KnowledgeHandler) HandleGetKnowledgeBase(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	kb, err := h.Clients.Knowledge.GetKnowledgeBase(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to get knowledge base", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, kb)
}

// HandleCreateKnowledgeBase handles POST /knowledge/create requests
func (h *KnowledgeHandler) HandleCreateKnowledgeBase(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("knowledge-handler").WithValues("operation", "create")

	var params api.KnowledgeBaseParams
	if err := DecodeJSONBody(r, &params); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	kb, err := h.Clients.Knowledge.CreateKnowledgeBase(r.Context(), &params)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to create knowledge base", err))
		return
	}

	log.Info("Successfully created knowledge base", "name", kb.Name, "databaseProvider", kb.DatabaseProvider)
	RespondWithJSON(w, http.StatusCreated, kb)
}

// HandleUpdateKnowledgeBase handles PUT /knowledge/{name} requests
func (h *KnowledgeHandler) HandleUpdateKnowledgeBase(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	var update api.KnowledgeBaseUpdate
	if err := DecodeJSONBody(r, &update); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	kb, err := h.Clients.Knowledge.UpdateKnowledgeBase(r.Context(), name, &update)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to update knowledge base", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, kb)
}

// HandleDeleteKnowledgeBase handles DELETE /knowledge/{name} requests
func (h *KnowledgeHandler) HandleDeleteKnowledgeBase(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("knowledge-handler").WithValues("operation", "delete")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	status, err := h.Clients.Knowledge.DeleteKnowledgeBase(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to delete knowledge base", err))
		return
	}

	log.Info("Successfully deleted knowledge base", "name", name)
	RespondWithJSON(w, http.StatusOK, status)
}

// HandleAddDocument handles POST /knowledge/{name}/add-document requests
func (h *KnowledgeHandler) HandleAddDocument(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("knowledge-handler").WithValues("operation", "add-document")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	var params api.DocumentParams
	if err := DecodeJSONBody(r, &params); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	doc, err := h.Clients.Knowledge.AddDocument(r.Context(), name, &params)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to add document", err))
		return
	}

	log.V(1).Info("Added document", "name", name, "documentID", doc.ID)
	RespondWithJSON(w, http.StatusCreated, doc)
}

// HandleUpdateDocument handles PUT /knowledge/{name}/update-document requests
func (h *KnowledgeHandler) HandleUpdateDocument(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	var update api.DocumentUpdate
	if err := DecodeJSONBody(r, &update); err != nil {
		w.RespondWithError(errors.NewBadRequestError("Invalid request body", err))
		return
	}

	doc, err := h.Clients.Knowledge.UpdateDocument(r.Context(), name, &update)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to update document", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, doc)
}

// HandleRemoveDocument handles DELETE /knowledge/{name}/remove-document/{id} requests
func (h *KnowledgeHandler) HandleRemoveDocument(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}
	id, err := GetPathParam(r, "id")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get document ID from path", err))
		return
	}

	status, err := h.Clients.Knowledge.RemoveDocument(r.Context(), name, id)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to remove document", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, status)
}

// HandleListDocuments handles GET /knowledge/{name}/documents requests
func (h *KnowledgeHandler) HandleListDocuments(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	docs, err := h.Clients.Knowledge.ListDocuments(r.Context(), name)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to list documents", err))
		return
	}
	RespondWithJSON(w, http.StatusOK, docs)
}

// HandleSearch handles GET /knowledge/{name}/search?q=&k=&model= requests
func (h *KnowledgeHandler) HandleSearch(w ErrorResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithName("knowledge-handler").WithValues("operation", "search")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("Failed to get name from path", err))
		return
	}

	query := r.URL.Query()
	search := &api.SearchRequest{
		Query: query.Get("q"),
		Model: query.Get("model"),
	}
	if k := query.Get("k"); k != "" {
		if search.K, err = strconv.Atoi(k); err != nil {
			w.RespondWithError(errors.NewBadRequestError("Invalid k", err))
			return
		}
	}

	results, err := h.Clients.Knowledge.Search(r.Context(), name, search)
	if err != nil {
		w.RespondWithError(errors.FromClientError("Failed to search knowledge base", err))
		return
	}

	log.V(1).Info("Searched knowledge base", "name", name, "results", len(results))
	RespondWithJSON(w, http.StatusOK, results)
}
