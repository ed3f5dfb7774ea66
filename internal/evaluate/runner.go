// Package evaluate runs the retrieve-read-score pipeline over a gold dataset
// and aggregates the per-question outcomes into a metrics report.
package evaluate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/scoring"
)

// Retriever yields ranked candidate documents for a question.
type Retriever interface {
	Retrieve(ctx context.Context, q models.Question) (models.CandidateSet, error)
}

// Extractor produces an answer prediction from a candidate set.
type Extractor interface {
	Extract(ctx context.Context, q models.Question, candidates models.CandidateSet) (*models.Prediction, error)
}

// GoldSource supplies the questions and annotations for a run.
type GoldSource interface {
	Questions() []models.Question
	Annotations(questionID string) []models.Annotation
}

// RunnerOptions carries run metadata and limits.
type RunnerOptions struct {
	Engine       string // backend name recorded on the report
	Reader       string // reader name recorded on the report
	TopK         int
	Concurrency  int    // parallel workers; <= 0 means 4
	MaxQuestions int    // cap on questions per run; <= 0 means all
	Name         string // optional run label
}

// Runner fans questions out over a worker pool, scores each outcome, and
// reduces the results to a MetricsReport. Per-question failures are recorded
// and excluded from the aggregates; only run cancellation stops the pool.
type Runner struct {
	retriever Retriever
	extractor Extractor
	scorer    *scoring.Scorer
	opts      RunnerOptions
	logger    *zap.Logger
}

// NewRunner assembles a runner from the pipeline stages.
func NewRunner(retriever Retriever, ex Extractor, scorer *scoring.Scorer, opts RunnerOptions, logger *zap.Logger) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		retriever: retriever,
		extractor: ex,
		scorer:    scorer,
		opts:      opts,
		logger:    logger,
	}
}

// outcome is the result of one question. A nil outcome means the question was
// never attempted because the run was cancelled.
type outcome struct {
	record models.ScoreRecord
	failed *models.FailedExample
}

// Run evaluates every question in gold and returns the aggregated report.
// Completion order never affects the report: outcomes are collected by
// question index and reduced in dataset order.
//
// Cancelling ctx yields a partial report over the questions already scored;
// Runner never returns a non-nil error for per-question failures.
func (r *Runner) Run(ctx context.Context, gold GoldSource) (*models.MetricsReport, error) {
	start := time.Now()

	questions := gold.Questions()
	if r.opts.MaxQuestions > 0 && len(questions) > r.opts.MaxQuestions {
		questions = questions[:r.opts.MaxQuestions]
	}

	runID := uuid.NewString()
	r.logger.Info("evaluation run started",
		zap.String("run_id", runID),
		zap.Int("questions", len(questions)),
		zap.String("engine", r.opts.Engine),
		zap.String("reader", r.opts.Reader),
		zap.Int("top_k", r.opts.TopK),
		zap.Int("concurrency", r.opts.Concurrency))

	outcomes := make([]*outcome, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, q := range questions {
		i, q := i, q
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i] = r.evaluateQuestion(gctx, q, gold)
			return nil
		})
	}
	// Workers report failures through outcomes, never through the group.
	_ = g.Wait()

	var (
		records      = make([]models.ScoreRecord, 0, len(questions))
		failed       []models.FailedExample
		goldNoAnswer int
		skipped      int
	)
	for _, oc := range outcomes {
		switch {
		case oc == nil:
			skipped++
		case oc.failed != nil:
			failed = append(failed, *oc.failed)
		default:
			records = append(records, oc.record)
			if oc.record.GoldNoAnswer {
				goldNoAnswer++
			}
		}
	}

	long, short := Aggregate(records)
	report := &models.MetricsReport{
		RunID:        runID,
		Name:         r.opts.Name,
		CreatedAt:    time.Now().UTC(),
		Engine:       r.opts.Engine,
		Reader:       r.opts.Reader,
		TopK:         r.opts.TopK,
		Questions:    len(questions),
		Scored:       len(records),
		Skipped:      skipped,
		GoldNoAnswer: goldNoAnswer,
		LongAnswer:   long,
		ShortAnswer:  short,
		Failed:       failed,
		Partial:      skipped > 0 || ctx.Err() != nil,
		ElapsedMS:    time.Since(start).Milliseconds(),
	}

	r.logger.Info("evaluation run finished",
		zap.String("run_id", runID),
		zap.Int("scored", report.Scored),
		zap.Int("failed", len(report.Failed)),
		zap.Int("skipped", report.Skipped),
		zap.Bool("partial", report.Partial),
		zap.Float64("long_f1", report.LongAnswer.F1),
		zap.Float64("short_f1", report.ShortAnswer.F1),
		zap.Int64("elapsed_ms", report.ElapsedMS))
	return report, nil
}

// evaluateQuestion runs one question through retrieve, extract, and score.
// Returns nil when the run context was cancelled mid-question, so the caller
// counts it as skipped rather than failed.
func (r *Runner) evaluateQuestion(ctx context.Context, q models.Question, gold GoldSource) *outcome {
	candidates, err := r.retriever.Retrieve(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("retrieval failed",
			zap.String("question_id", q.ID),
			zap.Error(err))
		return &outcome{failed: &models.FailedExample{
			QuestionID: q.ID,
			Reason:     models.FailRetrievalUnavailable,
			Detail:     err.Error(),
		}}
	}

	pred, err := r.extractor.Extract(ctx, q, candidates)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		reason := models.FailExtraction
		if errors.Is(err, context.DeadlineExceeded) {
			reason = models.FailExtractionTimeout
		}
		r.logger.Warn("extraction failed",
			zap.String("question_id", q.ID),
			zap.String("reason", reason),
			zap.Error(err))
		return &outcome{failed: &models.FailedExample{
			QuestionID: q.ID,
			Reason:     reason,
			Detail:     err.Error(),
		}}
	}

	return &outcome{record: r.scorer.Score(pred, candidates, gold.Annotations(q.ID))}
}
