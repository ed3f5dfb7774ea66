package retrieval

import (
	"context"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/hyperjump/kotae/internal/models"
)

// meiliDoc is the stored shape of a corpus document in Meilisearch. The id
// field doubles as the primary key.
type meiliDoc struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// MeiliSearcher talks to a remote Meilisearch instance. It is the drop-in
// alternative to the embedded Bleve index for corpora that outgrow a single
// process.
type MeiliSearcher struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
}

// NewMeiliSearcher connects to host and binds the named index. The index is
// created on first document upload.
func NewMeiliSearcher(host, apiKey, indexName string) *MeiliSearcher {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return &MeiliSearcher{
		client: client,
		index:  client.Index(indexName),
	}
}

// IndexCorpus uploads documents in batches and waits for each indexing task
// so that DocCount reflects the full corpus when it returns.
func (m *MeiliSearcher) IndexCorpus(ctx context.Context, docs []*models.Document) error {
	const batchSize = 500
	for start := 0; start < len(docs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := make([]meiliDoc, 0, end-start)
		for _, doc := range docs[start:end] {
			batch = append(batch, meiliDoc{ID: doc.ID, Title: doc.Title, Text: doc.SearchText()})
		}
		task, err := m.index.AddDocuments(batch)
		if err != nil {
			return fmt.Errorf("failed to add documents: %w", err)
		}
		if _, err := m.index.WaitForTask(task.TaskUID, 15*1000); err != nil {
			return fmt.Errorf("failed to wait for indexing task: %w", err)
		}
	}
	return nil
}

// Search runs a query against the remote index. Transport failures wrap
// ErrRetrievalUnavailable so callers can tell an unreachable engine apart
// from an empty result.
func (m *MeiliSearcher) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	req := &meilisearch.SearchRequest{
		Query:            query,
		Limit:            int64(topK),
		ShowRankingScore: true,
	}
	result, err := m.index.SearchWithContext(ctx, query, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	out := make([]Hit, 0, len(result.Hits))
	for _, raw := range result.Hits {
		hitMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := hitMap["id"].(string)
		if !ok || id == "" {
			continue
		}
		score, _ := hitMap["_rankingScore"].(float64)
		out = append(out, Hit{DocumentID: id, Score: score})
	}
	return out, nil
}

// DocCount asks the remote index for its document count.
func (m *MeiliSearcher) DocCount() (uint64, error) {
	stats, err := m.index.GetStats()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	return uint64(stats.NumberOfDocuments), nil
}

// Close releases idle connections to the remote instance.
func (m *MeiliSearcher) Close() error {
	m.client.Close()
	return nil
}
