// Package similarity ranks stored embedding vectors against a query vector.
//
// The engine is stateless and operates on a read-only snapshot handed to it by
// the store. Linear scan is intentional for small corpora; an indexed
// nearest-neighbor structure can replace Rank behind the same contract without
// touching any other component.
package similarity

import (
	"math"
	"sort"
)

const (
	// DefaultFloor is the minimum cosine score for a record to count as a match.
	DefaultFloor = 0.2

	// DefaultTopK is the number of matches returned when the caller does not
	// specify a limit.
	DefaultTopK = 3
)

// Match points back into the ranked snapshot by position.
type Match struct {
	Index int
	Score float64
}

// Cosine computes cosine similarity between two vectors: dot(a,b)/(|a||b|).
// A zero-magnitude vector has no direction, so the result is reported as 0
// together with ok=false rather than NaN.
func Cosine(a, b []float64) (score float64, ok bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	norm := math.Sqrt(na) * math.Sqrt(nb)
	if norm == 0 {
		return 0, false
	}
	return dot / norm, true
}

// Rank scores every vector against query, drops scores at or below floor,
// and returns the best k matches ordered by score descending. The sort is
// stable: ties keep insertion order. Zero-magnitude vectors (query or stored)
// are skipped entirely so NaN/Inf never enters the ranking.
func Rank(query []float64, vectors [][]float64, floor float64, k int) []Match {
	if k <= 0 {
		k = DefaultTopK
	}
	matches := make([]Match, 0, len(vectors))
	for i, v := range vectors {
		score, ok := Cosine(query, v)
		if !ok || score <= floor {
			continue
		}
		matches = append(matches, Match{Index: i, Score: score})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
