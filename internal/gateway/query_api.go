package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

// handleQuery handles POST /ai/query.
// Request: {"query": "..."}
// Response: {"response": ..., "context": [{"article": ..., "score": ...}], "llm_usage": N}
func (g *Gateway) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "Query text cannot be empty.")
		return
	}

	ctx := r.Context()

	start := time.Now()
	queryVec, embedTokens, err := g.embedder.Embed(ctx, req.Query)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to query: "+err.Error())
		return
	}
	g.usage.Record(ctx, "embedding", embedTokens, time.Since(start))

	results, err := g.store.Search(ctx, queryVec)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to query: "+err.Error())
		return
	}

	retrieved := make([]store.Article, len(results))
	for i, res := range results {
		retrieved[i] = res.Article
	}

	start = time.Now()
	reply, llmTokens, err := g.completer.Complete(ctx, req.Query, retrieved)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to query: "+err.Error())
		return
	}
	g.usage.Record(ctx, "completion", llmTokens, time.Since(start))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response":  reply,
		"context":   results,
		"llm_usage": llmTokens,
	})
}
