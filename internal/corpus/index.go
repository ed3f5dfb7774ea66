package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// Indexer is the index-building half of a search backend.
type Indexer interface {
	IndexCorpus(ctx context.Context, docs []*models.Document) error
	DocCount() (uint64, error)
}

// BuildIndex pushes an already-canonical corpus into the search backend and
// logs the outcome. Runs offline, never on the evaluation path.
func BuildIndex(ctx context.Context, idx Indexer, docs []*models.Document, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	logger.Info("building search index", zap.Int("documents", len(docs)))

	if err := idx.IndexCorpus(ctx, docs); err != nil {
		return fmt.Errorf("failed to index corpus: %w", err)
	}

	count, err := idx.DocCount()
	if err != nil {
		return fmt.Errorf("failed to count indexed documents: %w", err)
	}
	logger.Info("search index built",
		zap.Uint64("indexed", count),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
