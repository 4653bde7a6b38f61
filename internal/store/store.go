// Package store owns the persisted vector database: a single JSON document of
// (embedding, article) records plus one sidecar document per article. No other
// component touches the backing files; every read-modify-write cycle on the
// main document runs under a cross-process file lock.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TatievskiArik/Article-RAG-System/internal/lock"
	"github.com/TatievskiArik/Article-RAG-System/internal/similarity"
)

// Options tune search behavior. Zero values fall back to the similarity
// package defaults.
type Options struct {
	Floor float64 // minimum cosine score for a match
	TopK  int     // maximum results returned by Search
}

// Store is the persistent vector store. It is safe for concurrent use from
// multiple goroutines and multiple processes sharing the same files.
type Store struct {
	dbPath      string
	lockPath    string
	articlesDir string
	floor       float64
	topK        int
}

// SearchResult pairs a matched article with its similarity score.
type SearchResult struct {
	Article Article `json:"article"`
	Score   float64 `json:"score"`
}

// Summary is one row of the listing view: the fields derivable from a sidecar
// without loading the full store.
type Summary struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// New creates a store over dbPath with sidecars in articlesDir. The lock file
// lives next to the database as dbPath + ".lock". Neither file needs to exist
// yet; a missing database reads as empty.
func New(dbPath, articlesDir string, opts Options) *Store {
	floor := opts.Floor
	if floor == 0 {
		floor = similarity.DefaultFloor
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = similarity.DefaultTopK
	}
	return &Store{
		dbPath:      dbPath,
		lockPath:    dbPath + ".lock",
		articlesDir: articlesDir,
		floor:       floor,
		topK:        topK,
	}
}

// DBPath returns the path of the main store document.
func (s *Store) DBPath() string { return s.dbPath }

// ArticlesDir returns the sidecar directory.
func (s *Store) ArticlesDir() string { return s.articlesDir }

// Append persists rec unconditionally. The entire load-append-save cycle runs
// under the lock, so concurrent appends serialize and the resulting document
// always contains every record present before plus the new one.
func (s *Store) Append(ctx context.Context, rec Record) error {
	guard, err := lock.Acquire(ctx, s.lockPath)
	if err != nil {
		return err
	}
	defer guard.Release()

	records, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(records, rec))
}

// AppendIfAbsent persists rec unless a record with the same source URL already
// exists. The uniqueness check runs inside the same critical section as the
// append, so two concurrent ingestions of the same URL cannot both slip past
// the check.
func (s *Store) AppendIfAbsent(ctx context.Context, rec Record) (added bool, err error) {
	guard, err := lock.Acquire(ctx, s.lockPath)
	if err != nil {
		return false, err
	}
	defer guard.Release()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	for _, existing := range records {
		if existing.Article.URL == rec.Article.URL {
			return false, nil
		}
	}
	if err := s.save(append(records, rec)); err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot returns every record currently persisted. The read itself holds the
// lock; the returned slice is the caller's to keep.
func (s *Store) Snapshot(ctx context.Context) ([]Record, error) {
	guard, err := lock.Acquire(ctx, s.lockPath)
	if err != nil {
		return nil, err
	}
	defer guard.Release()
	return s.load()
}

// SnapshotTimeout is Snapshot with a bounded lock wait, for callers (such as
// background jobs) that must not hang behind a crashed lock holder.
func (s *Store) SnapshotTimeout(ctx context.Context, d time.Duration) ([]Record, error) {
	guard, err := lock.AcquireTimeout(ctx, s.lockPath, d)
	if err != nil {
		return nil, err
	}
	defer guard.Release()
	return s.load()
}

// Search ranks all stored records against query and returns at most TopK
// results above the relevance floor, best first. Only the snapshot read holds
// the lock; ranking is a pure function of the snapshot and runs outside it.
func (s *Store) Search(ctx context.Context, query []float64) ([]SearchResult, error) {
	records, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(records))
	for i := range records {
		vectors[i] = records[i].Embedding
	}

	matches := similarity.Rank(query, vectors, s.floor, s.topK)
	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{Article: records[m.Index].Article, Score: m.Score}
	}
	return results, nil
}

// load reads the main document. A missing file is an empty store (first run);
// any other failure propagates so corruption is never silently replaced by an
// empty store.
func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "read", Path: s.dbPath, Err: err}
	}
	return decodeRecords(data, s.dbPath)
}

// save writes the full document atomically: temp file in the same directory,
// then rename over the old document. A torn write can therefore never be
// observed by readers.
func (s *Store) save(records []Record) error {
	data, err := encodeRecords(records)
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.dbPath, Err: err}
	}
	return atomicWrite(s.dbPath, data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}
