package extractor

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout caps the total reading budget per question. Zero leaves the
// budget bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// Extractor runs a Reader over the top candidates for a question and keeps
// the highest-confidence answer. Reading is the dominant cost of an
// evaluation, so the number of documents read is capped independently of the
// retrieval top_k.
type Extractor struct {
	reader        Reader
	maxCandidates int
	timeout       time.Duration
	logger        *zap.Logger
}

// New creates an extractor reading at most maxCandidates documents per
// question. maxCandidates <= 0 means read every candidate.
func New(reader Reader, maxCandidates int, opts ...Option) *Extractor {
	e := &Extractor{
		reader:        reader,
		maxCandidates: maxCandidates,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces the answer Prediction for one question. Candidates are
// read in rank order; the result with the strictly highest confidence wins,
// so on a tie the earlier-ranked candidate is kept. Documents where the
// reader finds nothing contribute negative infinity and are never selected.
// When every candidate comes up empty, including when the set itself is
// empty, the question gets a no-answer Prediction rather than an error.
//
// A reading-budget overrun wraps context.DeadlineExceeded; cancellation of
// ctx itself surfaces as the context's error.
func (e *Extractor) Extract(ctx context.Context, q models.Question, candidates models.CandidateSet) (*models.Prediction, error) {
	readCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	limit := len(candidates)
	if e.maxCandidates > 0 && limit > e.maxCandidates {
		limit = e.maxCandidates
	}

	best := math.Inf(-1)
	var bestResult *SpanResult
	var bestCandidate *models.Candidate

	for i := 0; i < limit; i++ {
		cand := &candidates[i]
		result, err := e.reader.ReadDocument(readCtx, q.Text, cand.Document)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if readCtx.Err() != nil {
				return nil, fmt.Errorf("reading budget exhausted after %d of %d candidates: %w",
					i, limit, context.DeadlineExceeded)
			}
			return nil, fmt.Errorf("failed to read candidate %d (%s): %w", cand.Rank, cand.Document.ID, err)
		}

		confidence := result.Confidence
		if result.NoAnswer || (result.ShortAnswer == nil && result.LongAnswer == nil) {
			confidence = math.Inf(-1)
		}
		if confidence > best {
			best = confidence
			bestResult = result
			bestCandidate = cand
		}
	}

	if bestCandidate == nil {
		e.logger.Debug("no answer found in any candidate",
			zap.String("question_id", q.ID),
			zap.Int("candidates_read", limit))
		return &models.Prediction{QuestionID: q.ID}, nil
	}

	return &models.Prediction{
		QuestionID:  q.ID,
		DocumentID:  bestCandidate.Document.ID,
		LongAnswer:  bestResult.LongAnswer,
		ShortAnswer: bestResult.ShortAnswer,
		Confidence:  best,
		SourceRank:  bestCandidate.Rank,
	}, nil
}
