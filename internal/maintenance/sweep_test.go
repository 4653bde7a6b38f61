package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	articlesDir := filepath.Join(dir, "articles")
	require.NoError(t, os.MkdirAll(articlesDir, 0o700))
	return store.New(filepath.Join(dir, "vectors.json"), articlesDir, store.Options{})
}

func record(uid, url string) store.Record {
	return store.Record{
		Embedding: []float64{1, 0},
		Article:   store.Article{UID: uid, URL: url, Title: "T " + uid, Content: "c"},
	}
}

func TestSweepCleanStore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := record("u1", "https://e.com/1")
	require.NoError(t, st.Append(ctx, rec))
	require.NoError(t, st.WriteSidecar(rec.Article))

	report, err := NewSweeper(st, "").Sweep(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, 1, report.Sidecars)
}

func TestSweepDetectsDrift(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Record without sidecar.
	require.NoError(t, st.Append(ctx, record("u1", "https://e.com/no-sidecar")))

	// Sidecar without record.
	require.NoError(t, st.WriteSidecar(store.Article{
		UID: "u2", URL: "https://e.com/orphan", Title: "Orphan", Content: "c",
	}))

	// Duplicate URL in the store (e.g. legacy data from before the
	// in-lock dedup check existed).
	dup := record("u3", "https://e.com/dup")
	require.NoError(t, st.Append(ctx, dup))
	require.NoError(t, st.Append(ctx, record("u4", "https://e.com/dup")))
	require.NoError(t, st.WriteSidecar(dup.Article))

	report, err := NewSweeper(st, "").Sweep(ctx)
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []string{"https://e.com/no-sidecar"}, report.MissingSidecars)
	assert.Equal(t, []string{"https://e.com/orphan"}, report.OrphanSidecars)
	assert.Equal(t, []string{"https://e.com/dup"}, report.DuplicateURLs)
}

func TestSweepEmptyStore(t *testing.T) {
	st := newTestStore(t)

	report, err := NewSweeper(st, "").Sweep(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Zero(t, report.Records)
	assert.Zero(t, report.Sidecars)
}
