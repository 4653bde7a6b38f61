package articles

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

// ErrAlreadyExists signals that an article with the same source URL is already
// stored and the ingestion attempt added nothing.
var ErrAlreadyExists = errors.New("articles: article already exists")

// Embedder produces a fixed-dimension vector for a text, plus the token cost
// of producing it.
type Embedder interface {
	Embed(ctx context.Context, text string) (vector []float64, tokens int, err error)
}

// UsageRecorder receives token/latency accounting for external model calls.
// Implementations must never fail the ingestion path.
type UsageRecorder interface {
	Record(ctx context.Context, op string, tokens int, d time.Duration)
}

// Service orchestrates ingestion: dedup check, fetch, embed, persist. The
// embedding call always happens outside the store lock, and an article is only
// persisted together with its embedding — an embedding failure leaves no
// partial state behind.
type Service struct {
	store    *store.Store
	fetcher  *Fetcher
	embedder Embedder
	usage    UsageRecorder // optional
}

// NewService wires an ingestion service. usage may be nil.
func NewService(st *store.Store, fetcher *Fetcher, embedder Embedder, usage UsageRecorder) *Service {
	return &Service{store: st, fetcher: fetcher, embedder: embedder, usage: usage}
}

// Add ingests the article at url. It returns ErrAlreadyExists if a record for
// the exact same URL is already stored, in which case no fetch or embedding
// work is performed beyond the initial sidecar scan.
//
// The sidecar scan is only a cheap short-circuit to protect the embedding
// budget; the authoritative uniqueness check runs inside the store's critical
// section, so two concurrent Adds of the same URL still produce one record.
func (s *Service) Add(ctx context.Context, url string) (*store.Article, error) {
	exists, err := s.store.HasURL(url)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	article, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vector, tokens, err := s.embedder.Embed(ctx, article.Content)
	if err != nil {
		return nil, err
	}
	s.recordUsage(ctx, "embedding", tokens, time.Since(start))
	log.Printf("articles: embedded %q (%d tokens, %s)", article.Title, tokens, time.Since(start))

	added, err := s.store.AppendIfAbsent(ctx, store.Record{Embedding: vector, Article: article})
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyExists
	}

	if err := s.store.WriteSidecar(article); err != nil {
		return nil, err
	}
	return &article, nil
}

// List returns (title, url) summaries for every stored article.
func (s *Service) List() ([]store.Summary, error) {
	return s.store.List()
}

func (s *Service) recordUsage(ctx context.Context, op string, tokens int, d time.Duration) {
	if s.usage == nil {
		return
	}
	s.usage.Record(ctx, op, tokens, d)
}
