// Package ai talks to the external embedding and completion models. All calls
// here happen outside any store lock; failures surface as *EmbedError or
// *CompletionError and abort the operation without partial persistence.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

const maxRetries = 3

// EmbedError reports a failed embedding call.
type EmbedError struct {
	Err error
}

func (e *EmbedError) Error() string { return fmt.Sprintf("ai: embedding failed: %v", e.Err) }
func (e *EmbedError) Unwrap() error { return e.Err }

// CompletionError reports a failed completion call.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return fmt.Sprintf("ai: completion failed: %v", e.Err) }
func (e *CompletionError) Unwrap() error { return e.Err }

// Config holds Azure OpenAI connection settings. Endpoint is the resource
// base URL; deployments are addressed per call.
type Config struct {
	Endpoint            string
	APIKey              string
	APIVersion          string
	EmbeddingDeployment string
	ChatDeployment      string
	MaxCompletionTokens int
}

// Client calls the Azure OpenAI embeddings and chat-completions APIs.
type Client struct {
	cfg    Config
	client *http.Client
	prompt *PromptTemplate
}

// NewClient creates a Client. A nil httpClient gets a default with a 60 second
// timeout (completions can be slow).
func NewClient(cfg Config, prompt *PromptTemplate, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.MaxCompletionTokens <= 0 {
		cfg.MaxCompletionTokens = 1000
	}
	if prompt == nil {
		prompt = DefaultPromptTemplate()
	}
	return &Client{cfg: cfg, client: httpClient, prompt: prompt}
}

// Embed returns the embedding vector for text and the total token cost of
// producing it.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, int, error) {
	reqBody := struct {
		Input []string `json:"input"`
	}{Input: []string{text}}

	var resp struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := c.post(ctx, c.deploymentURL(c.cfg.EmbeddingDeployment, "embeddings"), reqBody, &resp); err != nil {
		return nil, 0, &EmbedError{Err: err}
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, 0, &EmbedError{Err: fmt.Errorf("response contained no embedding")}
	}
	return resp.Data[0].Embedding, resp.Usage.TotalTokens, nil
}

// Complete answers query using only the retrieved articles as context and
// returns the model's reply plus its total token usage.
func (c *Client) Complete(ctx context.Context, query string, articles []store.Article) (string, int, error) {
	system := c.prompt.Render(articles)

	reqBody := struct {
		Messages  []chatMessage `json:"messages"`
		MaxTokens int           `json:"max_tokens"`
	}{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: query},
		},
		MaxTokens: c.cfg.MaxCompletionTokens,
	}

	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := c.post(ctx, c.deploymentURL(c.cfg.ChatDeployment, "chat/completions"), reqBody, &resp); err != nil {
		return "", 0, &CompletionError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", 0, &CompletionError{Err: fmt.Errorf("response contained no choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage.TotalTokens, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) deploymentURL(deployment, operation string) string {
	base := strings.TrimRight(c.cfg.Endpoint, "/")
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		base, deployment, operation, url.QueryEscape(c.cfg.APIVersion))
}

// post sends a JSON request and decodes the JSON response, retrying rate
// limits and server errors with exponential backoff (1s, 2s, 4s).
func (c *Client) post(ctx context.Context, endpoint string, reqBody, respBody interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", c.cfg.APIKey)

		httpResp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		data, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case httpResp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(data, respBody); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
			return nil
		case httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500:
			lastErr = fmt.Errorf("API error %d: %s", httpResp.StatusCode, strings.TrimSpace(string(data)))
		default:
			// Client errors other than 429 are not retryable.
			return fmt.Errorf("API error %d: %s", httpResp.StatusCode, strings.TrimSpace(string(data)))
		}
	}
	return lastErr
}
