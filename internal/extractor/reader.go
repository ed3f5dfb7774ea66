// Package extractor reads answer spans out of retrieved documents.
package extractor

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// SpanResult is one reader's answer attempt on a single document. NoAnswer
// true means the reader found nothing; span fields are nil in that case.
type SpanResult struct {
	LongAnswer  *models.TokenSpan
	ShortAnswer *models.TokenSpan
	Confidence  float64
	NoAnswer    bool
}

// Reader proposes an answer span for a question within one document.
// Implementations must be safe for concurrent use; evaluation workers share
// a single reader.
type Reader interface {
	ReadDocument(ctx context.Context, question string, doc *models.Document) (*SpanResult, error)
	Name() string
	Close() error
}
