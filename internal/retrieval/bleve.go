package retrieval

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/kotae/internal/models"
)

// bleveDoc is the indexed shape of a corpus document. Markup tokens are
// stripped before indexing so tag names never match query terms.
type bleveDoc struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// BleveSearcher is an embedded on-disk index. It serves both halves of the
// pipeline: IndexCorpus at preparation time and Search at evaluation time.
type BleveSearcher struct {
	index bleve.Index
}

// NewBleveSearcher creates or opens a Bleve index at path.
// An existing index is opened and reused as-is; if the mapping in code
// changes, remove the index directory to force a rebuild.
func NewBleveSearcher(path string) (*BleveSearcher, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query term
	// matches the exact word; the English analyzer stems both sides and
	// quietly changes which documents rank first.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveSearcher{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveSearcher{index: index}, nil
}

// IndexCorpus indexes documents in batches of 256.
func (b *BleveSearcher) IndexCorpus(ctx context.Context, docs []*models.Document) error {
	const batchSize = 256
	batch := b.index.NewBatch()
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(doc.ID, bleveDoc{Title: doc.Title, Text: doc.SearchText()}); err != nil {
			return fmt.Errorf("failed to batch document %s: %w", doc.ID, err)
		}
		if (i+1)%batchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to apply index batch: %w", err)
			}
			batch = b.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to apply index batch: %w", err)
		}
	}
	return nil
}

// Search runs one match query over title and text and returns hits in the
// order Bleve ranked them.
func (b *BleveSearcher) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	q := bleve.NewMatchQuery(query)
	search := bleve.NewSearchRequest(q)
	search.Size = topK
	results, err := b.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = Hit{DocumentID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// DocCount returns the total number of documents in the index.
func (b *BleveSearcher) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying index.
func (b *BleveSearcher) Close() error {
	return b.index.Close()
}
