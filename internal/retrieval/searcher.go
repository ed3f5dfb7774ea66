// Package retrieval turns questions into ranked candidate documents using a
// pluggable search backend.
package retrieval

import (
	"context"
	"errors"
)

// ErrRetrievalUnavailable reports that the search backend could not be
// reached. Callers record the affected question as a failed example instead
// of aborting the run.
var ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

// Hit is one search result, in the order the engine ranked it.
type Hit struct {
	DocumentID string
	Score      float64
}

// Searcher defines query operations against an indexed corpus.
type Searcher interface {
	// Search returns up to topK hits in rank order. An empty slice with a
	// nil error means the query matched nothing.
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
	Close() error
}
