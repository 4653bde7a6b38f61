// Package gateway exposes the HTTP JSON API: article ingestion and listing,
// and retrieval-augmented queries. Transport concerns live here; all store,
// ingestion, and model semantics live in the packages this one wires together.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/TatievskiArik/Article-RAG-System/internal/articles"
	"github.com/TatievskiArik/Article-RAG-System/internal/store"
	"github.com/TatievskiArik/Article-RAG-System/internal/usage"
)

// Completer answers a query from the retrieved article context, returning the
// reply text and its token cost.
type Completer interface {
	Complete(ctx context.Context, query string, articles []store.Article) (string, int, error)
}

// Gateway is the HTTP server.
type Gateway struct {
	store     *store.Store
	ingest    *articles.Service
	embedder  articles.Embedder
	completer Completer
	usage     *usage.Recorder

	server    *http.Server
	startTime time.Time
}

// Deps are the collaborators a Gateway needs. Usage may be nil.
type Deps struct {
	Store     *store.Store
	Ingest    *articles.Service
	Embedder  articles.Embedder
	Completer Completer
	Usage     *usage.Recorder
}

// New creates a Gateway listening on port.
func New(port int, deps Deps) *Gateway {
	g := &Gateway{
		store:     deps.Store,
		ingest:    deps.Ingest,
		embedder:  deps.Embedder,
		completer: deps.Completer,
		usage:     deps.Usage,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", g.handleRoot)
	mux.HandleFunc("/articles/list", g.handleList)
	mux.HandleFunc("/articles/add", g.handleAdd)
	mux.HandleFunc("/ai/query", g.handleQuery)

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           withCORS(withLogging(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

// Start serves until the listener fails or Shutdown is called.
func (g *Gateway) Start() error {
	log.Printf("gateway: listening on %s", g.server.Addr)
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler, used by tests.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

// withCORS allows all origins, matching the service's original deployment
// behind a trusted frontend.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("gateway: %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
