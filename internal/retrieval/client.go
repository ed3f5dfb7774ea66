package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/models"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout caps the duration of each search call. Zero leaves calls
// bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit caps queries per second against the backend. Zero or
// negative disables the cap.
func WithRateLimit(qps float64) Option {
	return func(c *Client) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

// Client retrieves candidate documents for a question. It sanitizes the
// question text, queries the backend, and resolves hits against the corpus
// store so downstream stages always work with full documents.
type Client struct {
	searcher Searcher
	store    *corpus.Store
	topK     int
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewClient creates a retrieval client returning up to topK candidates per
// question.
func NewClient(searcher Searcher, store *corpus.Store, topK int, opts ...Option) *Client {
	c := &Client{
		searcher: searcher,
		store:    store,
		topK:     topK,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve returns candidates in engine rank order with 1-based ranks.
// A question that matches nothing yields an empty set and a nil error.
// Backend and per-call timeout failures wrap ErrRetrievalUnavailable;
// cancellation of ctx itself surfaces as the context's error.
func (c *Client) Retrieve(ctx context.Context, q models.Question) (models.CandidateSet, error) {
	query := SanitizeQuery(q.Text)
	if query == "" {
		return models.CandidateSet{}, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	searchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	hits, err := c.searcher.Search(searchCtx, query, c.topK)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	candidates := make(models.CandidateSet, 0, len(hits))
	for _, hit := range hits {
		doc := c.store.Get(hit.DocumentID)
		if doc == nil {
			// The index can trail the corpus after a rebuild; skip the hit
			// but keep the ranks of the remaining candidates contiguous.
			c.logger.Warn("search hit missing from corpus store",
				zap.String("question_id", q.ID),
				zap.String("document_id", hit.DocumentID))
			continue
		}
		candidates = append(candidates, models.Candidate{
			Document: doc,
			Score:    hit.Score,
			Rank:     len(candidates) + 1,
		})
	}
	return candidates, nil
}
