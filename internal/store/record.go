package store

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Article is a single ingested web article. Articles are created once per
// distinct source URL and never mutated afterwards.
type Article struct {
	UID     string `json:"uid"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Record pairs an article with its embedding vector. The vector is opaque to
// the store; it is produced by an external embedding model and compared only
// by the similarity engine.
type Record struct {
	Embedding []float64 `json:"embedding"`
	Article   Article   `json:"article"`
}

// encodeRecords serializes the full store document. Output is indented JSON so
// the file stays inspectable with ordinary tools.
//
// Round-trip is exact: encoding/json formats float64 values with the shortest
// representation that parses back to the identical bit pattern, so
// decodeRecords(encodeRecords(r)) == r for every valid record.
func encodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// decodeRecords parses and validates the full store document. Any structural
// problem yields a *DecodeError; partially populated records are never
// returned.
func decodeRecords(data []byte, path string) ([]Record, error) {
	var raw []struct {
		Embedding []float64 `json:"embedding"`
		Article   *Article  `json:"article"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Path: path, Detail: "invalid store document", Err: err}
	}

	records := make([]Record, 0, len(raw))
	for i, r := range raw {
		if r.Article == nil {
			return nil, &DecodeError{Path: path, Detail: recordDetail(i, "missing article")}
		}
		if r.Article.UID == "" {
			return nil, &DecodeError{Path: path, Detail: recordDetail(i, "missing article uid")}
		}
		if r.Article.URL == "" {
			return nil, &DecodeError{Path: path, Detail: recordDetail(i, "missing article url")}
		}
		if r.Embedding == nil {
			return nil, &DecodeError{Path: path, Detail: recordDetail(i, "missing embedding")}
		}
		records = append(records, Record{Embedding: r.Embedding, Article: *r.Article})
	}
	return records, nil
}

// decodeArticle parses and validates a single sidecar document.
func decodeArticle(data []byte, path string) (Article, error) {
	var raw struct {
		UID     *string `json:"uid"`
		URL     *string `json:"url"`
		Title   string  `json:"title"`
		Content string  `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Article{}, &DecodeError{Path: path, Detail: "invalid article document", Err: err}
	}
	if raw.UID == nil || *raw.UID == "" {
		return Article{}, &DecodeError{Path: path, Detail: "missing uid"}
	}
	if raw.URL == nil || *raw.URL == "" {
		return Article{}, &DecodeError{Path: path, Detail: "missing url"}
	}
	return Article{UID: *raw.UID, URL: *raw.URL, Title: raw.Title, Content: raw.Content}, nil
}

func recordDetail(index int, msg string) string {
	return "record " + strconv.Itoa(index) + ": " + msg
}
