package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Sidecars are one JSON document per article, named {uid}.json, written once
// at ingestion and never mutated. Because they are immutable after creation
// they need no locking; the directory scan below simply skips entries that are
// unreadable or fail to decode.

// WriteSidecar persists the per-article document for a. The write is atomic so
// a concurrent listing never sees a partial document.
func (s *Store) WriteSidecar(a Article) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.sidecarPath(a.UID), Err: err}
	}
	return atomicWrite(s.sidecarPath(a.UID), data)
}

// List returns a (title, url) summary for every decodable sidecar in the
// articles directory, in filesystem enumeration order. Individual bad entries
// are logged and skipped; only a failure to read the directory itself is
// fatal.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.articlesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, &PersistenceError{Op: "scan", Path: s.articlesDir, Err: err}
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		a, ok := s.readSidecar(entry)
		if !ok {
			continue
		}
		if a.Title == "" || a.URL == "" {
			continue
		}
		summaries = append(summaries, Summary{Title: a.Title, URL: a.URL})
	}
	return summaries, nil
}

// HasURL reports whether any sidecar records the given source URL. URLs are
// compared by exact string equality; no normalization is applied. This is the
// cheap pre-embedding check — the authoritative check happens inside
// AppendIfAbsent's critical section.
func (s *Store) HasURL(url string) (bool, error) {
	entries, err := os.ReadDir(s.articlesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &PersistenceError{Op: "scan", Path: s.articlesDir, Err: err}
	}
	for _, entry := range entries {
		a, ok := s.readSidecar(entry)
		if !ok {
			continue
		}
		if a.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) readSidecar(entry os.DirEntry) (Article, bool) {
	if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
		return Article{}, false
	}
	path := filepath.Join(s.articlesDir, entry.Name())
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("store: skipping unreadable sidecar %s: %v", path, err)
		return Article{}, false
	}
	a, err := decodeArticle(data, path)
	if err != nil {
		log.Printf("store: skipping malformed sidecar %s: %v", path, err)
		return Article{}, false
	}
	return a, true
}

func (s *Store) sidecarPath(uid string) string {
	return filepath.Join(s.articlesDir, uid+".json")
}
