package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"

	"github.com/makima-ai/makima-go/internal/httpserver/auth"
	"github.com/makima-ai/makima-go/internal/httpserver/handlers"
	"github.com/makima-ai/makima-go/internal/version"
	"github.com/makima-ai/makima-go/pkg/client"
)

const (
	// API Path constants
	APIPathHealth    = "/health"
	APIPathVersion   = "/version"
	APIPathMetrics   = "/metrics"
	APIPathAgents    = "/agent"
	APIPathTools     = "/tool"
	APIPathThreads   = "/thread"
	APIPathKnowledge = "/knowledge"
)

// ServerConfig holds the configuration for the HTTP server
type ServerConfig struct {
	BindAddr string
	// Clients serves every request. It is normally the in-memory fake.
	Clients *client.ClientSet
	Logger  logr.Logger
	// MetricsHandler is mounted at /metrics when set
	MetricsHandler http.Handler
	// Auth authenticates every API request when set. Health, version and
	// metrics stay public.
	Auth auth.AuthProvider
}

// HTTPServer is the structure that manages the HTTP server
type HTTPServer struct {
	httpServer *http.Server
	config     ServerConfig
	router     *mux.Router
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(config ServerConfig) *HTTPServer {
	return &HTTPServer{
		config: config,
		router: NewRouter(config),
	}
}

// Handler returns the router serving the REST API
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start starts the server in the background and shuts it down when ctx is
// cancelled
func (s *HTTPServer) Start(ctx context.Context) error {
	log := s.config.Logger.WithName("http-server")
	log.Info("Starting HTTP server", "address", s.config.BindAddr)

	s.httpServer = &http.Server{
		Addr:              s.config.BindAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "HTTP server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "Failed to properly shutdown HTTP server")
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// NewRouter builds the REST API over config.Clients. Routes match the
// escaped path so percent-encoded keys stay one segment.
func NewRouter(config ServerConfig) *mux.Router {
	router := mux.NewRouter().UseEncodedPath()
	h := handlers.NewHandlers(config.Clients)

	router.HandleFunc(APIPathHealth, h.Health.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc(APIPathVersion, adaptHandler(func(erw handlers.ErrorResponseWriter, r *http.Request) {
		handlers.RespondWithJSON(erw, http.StatusOK, version.Get())
	})).Methods(http.MethodGet)
	if config.MetricsHandler != nil {
		router.Handle(APIPathMetrics, config.MetricsHandler).Methods(http.MethodGet)
	}

	// Agents
	router.HandleFunc(APIPathAgents+"/", adaptHandler(h.Agents.HandleListAgents)).Methods(http.MethodGet)
	router.HandleFunc(APIPathAgents+"/create", adaptHandler(h.Agents.HandleCreateAgent)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}", adaptHandler(h.Agents.HandleGetAgent)).Methods(http.MethodGet)
	router.HandleFunc(APIPathAgents+"/{name}", adaptHandler(h.Agents.HandleUpdateAgent)).Methods(http.MethodPut)
	router.HandleFunc(APIPathAgents+"/{name}", adaptHandler(h.Agents.HandleDeleteAgent)).Methods(http.MethodDelete)
	router.HandleFunc(APIPathAgents+"/{name}/add-tool/{target}", adaptHandler(h.Agents.HandleAddTool)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}/remove-tool/{target}", adaptHandler(h.Agents.HandleRemoveTool)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}/add-helper/{target}", adaptHandler(h.Agents.HandleAddHelper)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}/remove-helper/{target}", adaptHandler(h.Agents.HandleRemoveHelper)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}/add-knowledge-base/{target}", adaptHandler(h.Agents.HandleAddKnowledgeBase)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}/remove-knowledge-base/{target}", adaptHandler(h.Agents.HandleRemoveKnowledgeBase)).Methods(http.MethodPost)
	router.HandleFunc(APIPathAgents+"/{name}/chat", adaptHandler(h.Agents.HandleChat)).Methods(http.MethodPost)

	// Tools
	router.HandleFunc(APIPathTools+"/", adaptHandler(h.Tools.HandleListTools)).Methods(http.MethodGet)
	router.HandleFunc(APIPathTools+"/create", adaptHandler(h.Tools.HandleCreateTool)).Methods(http.MethodPost)
	router.HandleFunc(APIPathTools+"/{name}", adaptHandler(h.Tools.HandleGetTool)).Methods(http.MethodGet)
	router.HandleFunc(APIPathTools+"/{name}", adaptHandler(h.Tools.HandleUpdateTool)).Methods(http.MethodPut)
	router.HandleFunc(APIPathTools+"/{name}", adaptHandler(h.Tools.HandleDeleteTool)).Methods(http.MethodDelete)

	// Threads
	router.HandleFunc(APIPathThreads+"/", adaptHandler(h.Threads.HandleListThreads)).Methods(http.MethodGet)
	router.HandleFunc(APIPathThreads+"/create", adaptHandler(h.Threads.HandleCreateThread)).Methods(http.MethodPost)
	router.HandleFunc(APIPathThreads+"/{id}", adaptHandler(h.Threads.HandleGetThread)).Methods(http.MethodGet)
	router.HandleFunc(APIPathThreads+"/{id}", adaptHandler(h.Threads.HandleDeleteThread)).Methods(http.MethodDelete)
	router.HandleFunc(APIPathThreads+"/{id}/messages", adaptHandler(h.Threads.HandleListMessages)).Methods(http.MethodGet)
	router.HandleFunc(APIPathThreads+"/{id}/message", adaptHandler(h.Threads.HandleAddMessage)).Methods(http.MethodPost)
	router.HandleFunc(APIPathThreads+"/{id}/chat", adaptHandler(h.Threads.HandleChat)).Methods(http.MethodPost)
	router.HandleFunc(APIPathThreads+"/{id}/agent", adaptHandler(h.Threads.HandleSetAgent)).Methods(http.MethodPut)

	// Knowledge bases
	router.HandleFunc(APIPathKnowledge+"/", adaptHandler(h.Knowledge.HandleListKnowledgeBases)).Methods(http.MethodGet)
	router.HandleFunc(APIPathKnowledge+"/create", adaptHandler(h.Knowledge.HandleCreateKnowledgeBase)).Methods(http.MethodPost)
	router.HandleFunc(APIPathKnowledge+"/{name}", adaptHandler(h.Knowledge.HandleGetKnowledgeBase)).Methods(http.MethodGet)
	router.HandleFunc(APIPathKnowledge+"/{name}", adaptHandler(h.Knowledge.HandleUpdateKnowledgeBase)).Methods(http.MethodPut)
	router.HandleFunc(APIPathKnowledge+"/{name}", adaptHandler(h.Knowledge.HandleDeleteKnowledgeBase)).Methods(http.MethodDelete)
	router.HandleFunc(APIPathKnowledge+"/{name}/add-document", adaptHandler(h.Knowledge.HandleAddDocument)).Methods(http.MethodPost)
	router.HandleFunc(APIPathKnowledge+"/{name}/update-document", adaptHandler(h.Knowledge.HandleUpdateDocument)).Methods(http.MethodPut)
	router.HandleFunc(APIPathKnowledge+"/{name}/remove-document/{id}", adaptHandler(h.Knowledge.HandleRemoveDocument)).Methods(http.MethodDelete)
	router.HandleFunc(APIPathKnowledge+"/{name}/documents", adaptHandler(h.Knowledge.HandleListDocuments)).Methods(http.MethodGet)
	router.HandleFunc(APIPathKnowledge+"/{name}/search", adaptHandler(h.Knowledge.HandleSearch)).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "route "+r.Method+" "+r.URL.Path+" not found")
	})

	router.Use(loggingMiddleware(config.Logger))
	if config.Auth != nil {
		router.Use(authMiddleware(config.Auth))
	}
	router.Use(contentTypeMiddleware)
	router.Use(errorHandlerMiddleware)

	return router
}

func adaptHandler(h func(handlers.ErrorResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w.(handlers.ErrorResponseWriter), r)
	}
}

func authMiddleware(provider auth.AuthProvider) mux.MiddlewareFunc {
	authn := auth.AuthnMiddleware(provider)
	return func(next http.Handler) http.Handler {
		protected := authn(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case APIPathHealth, APIPathVersion, APIPathMetrics:
				next.ServeHTTP(w, r)
			default:
				protected.ServeHTTP(w, r)
			}
		})
	}
}
