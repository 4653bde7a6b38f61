package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TatievskiArik/Article-RAG-System/internal/articles"
)

// handleList handles GET /articles/list.
// Response: {"articles": [{"title": ..., "url": ...}, ...]}
func (g *Gateway) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summaries, err := g.ingest.List()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to list articles: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": summaries,
	})
}

// handleAdd handles POST /articles/add.
// Request: {"url": "https://..."}
// Response: 201 {"article": {...}} on create,
// 208 {"message": "Article already exists."} on duplicate.
func (g *Gateway) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.URL == "" {
		writeJSONError(w, http.StatusBadRequest, "url is required")
		return
	}

	article, err := g.ingest.Add(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, articles.ErrAlreadyExists) {
			writeJSON(w, http.StatusAlreadyReported, map[string]string{
				"message": "Article already exists.",
			})
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to add article: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"article": article,
	})
}
