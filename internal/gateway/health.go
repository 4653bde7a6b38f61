package gateway

import (
	"net/http"
	"time"

	"github.com/TatievskiArik/Article-RAG-System/internal/usage"
	"github.com/TatievskiArik/Article-RAG-System/internal/version"
)

// HealthResponse is the root endpoint body.
type HealthResponse struct {
	Status  string            `json:"status"`
	AppName string            `json:"app_name"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Usage   []usage.OpSummary `json:"usage,omitempty"`
}

// handleRoot handles GET / as a health and info check.
func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		Status:  "API is running",
		AppName: "Article RAG Chatbot",
		Version: version.Info(),
		Uptime:  time.Since(g.startTime).Round(time.Second).String(),
	}
	if summary, err := g.usage.Summary(r.Context()); err == nil {
		resp.Usage = summary
	}
	writeJSON(w, http.StatusOK, resp)
}
