package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// PrepareOptions control the preparation filters.
type PrepareOptions struct {
	// RetrieverEvalOnly keeps only questions whose first annotation has at
	// least one short answer, the standard setup for retriever evaluation.
	// When false, no-answer questions are kept for full-system evaluation.
	RetrieverEvalOnly bool
	// MaxAnswerTokens drops records whose first short answer spans more than
	// this many tokens; longer "answers" are usually extractive snippets
	// rather than canonical answers. 0 disables the filter.
	MaxAnswerTokens int
	// MaxExamples stops after accepting this many records. 0 means all.
	MaxExamples int
}

// PrepareStats counts what each preparation stage did.
type PrepareStats struct {
	Records       int          `json:"records"`
	BadLines      int          `json:"bad_lines"`
	NoShortAnswer int          `json:"no_short_answer"`
	Truncated     int          `json:"truncated"`
	Unsolvable    int          `json:"unsolvable"`
	OverLength    int          `json:"over_length"`
	DocRejected   int          `json:"doc_rejected"`
	Questions     int          `json:"questions"`
	Corpus        corpus.Stats `json:"corpus"`
}

// Preparer converts the raw simplified dataset into the corpus and gold
// artifacts the evaluator consumes: it filters the raw records, collapses
// duplicate articles onto canonical documents, and rewrites annotation spans
// against the canonical document IDs.
type Preparer struct {
	opts   PrepareOptions
	logger *zap.Logger
}

// NewPreparer creates a preparer. logger may be nil.
func NewPreparer(opts PrepareOptions, logger *zap.Logger) *Preparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{opts: opts, logger: logger}
}

// Run streams the raw dataset at rawPath and writes the corpus and gold
// artifacts. A missing or unreadable raw file is fatal; individual bad lines
// are skipped and counted.
func (p *Preparer) Run(ctx context.Context, rawPath, corpusPath, goldPath string) (*PrepareStats, error) {
	sc, closeFn, err := openLines(rawPath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	stats := &PrepareStats{}
	var (
		docs        []*models.Document
		questions   []models.Question
		annotations = make(map[string][]models.Annotation)
	)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Records++

		ex, err := ParseRecord(line)
		if err != nil {
			stats.BadLines++
			p.logger.Debug("skipping bad record", zap.Error(err))
			continue
		}
		if !p.accept(ex, stats) {
			continue
		}

		docs = append(docs, ex.Document)
		questions = append(questions, ex.Question)
		annotations[ex.Question.ID] = ex.Annotations

		if p.opts.MaxExamples > 0 && len(questions) >= p.opts.MaxExamples {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawPath, err)
	}

	res := corpus.NewNormalizer(p.logger).Normalize(docs)
	stats.Corpus = res.Stats

	// Rewrite annotation spans against the canonical documents. A question
	// whose source document was rejected as malformed has nothing its spans
	// can resolve to, so it is dropped.
	kept := questions[:0]
	for _, q := range questions {
		anns := annotations[q.ID]
		if !remapAnnotations(anns, res.Canonical) {
			stats.DocRejected++
			delete(annotations, q.ID)
			continue
		}
		kept = append(kept, q)
	}
	questions = kept
	stats.Questions = len(questions)

	if err := WriteCorpus(corpusPath, res.Documents); err != nil {
		return nil, err
	}
	if err := WriteGold(goldPath, questions, annotations); err != nil {
		return nil, err
	}

	p.logger.Info("dataset prepared",
		zap.Int("records", stats.Records),
		zap.Int("bad_lines", stats.BadLines),
		zap.Int("no_short_answer", stats.NoShortAnswer),
		zap.Int("truncated", stats.Truncated),
		zap.Int("unsolvable", stats.Unsolvable),
		zap.Int("over_length", stats.OverLength),
		zap.Int("doc_rejected", stats.DocRejected),
		zap.Int("questions", stats.Questions),
		zap.Int("corpus_docs", stats.Corpus.Out))
	return stats, nil
}

// accept applies the per-record filters, mutating stats. The solvability and
// length filters look at the first short answer, the one retriever
// evaluation uses.
func (p *Preparer) accept(ex *Example, stats *PrepareStats) bool {
	var first *models.Annotation
	if len(ex.Annotations) > 0 {
		first = &ex.Annotations[0]
	}

	if p.opts.RetrieverEvalOnly && (first == nil || len(first.ShortAnswers) == 0) {
		stats.NoShortAnswer++
		return false
	}

	// An annotation listing several short answers is truncated to the first;
	// multi-part answers are scored as their leading span.
	truncated := false
	for i := range ex.Annotations {
		if len(ex.Annotations[i].ShortAnswers) > 1 {
			ex.Annotations[i].ShortAnswers = ex.Annotations[i].ShortAnswers[:1]
			truncated = true
		}
	}
	if truncated {
		stats.Truncated++
	}

	if first != nil && len(first.ShortAnswers) > 0 {
		short := first.ShortAnswers[0]

		// Answer text must survive tag stripping, otherwise the label spans
		// markup (e.g. a list marked as one answer) and can never be matched
		// against retrievable text.
		answer := ex.Document.SpanText(&short)
		if !strings.Contains(ex.Document.SearchText(), answer) {
			stats.Unsolvable++
			return false
		}

		if p.opts.MaxAnswerTokens > 0 && short.Len() > p.opts.MaxAnswerTokens {
			stats.OverLength++
			return false
		}
	}
	return true
}

// remapAnnotations rewrites span document IDs to their canonical documents.
// Reports false when a span references a document absent from the mapping.
func remapAnnotations(anns []models.Annotation, canonical map[string]string) bool {
	for i := range anns {
		if anns[i].LongAnswer != nil {
			id, ok := canonical[anns[i].LongAnswer.DocumentID]
			if !ok {
				return false
			}
			anns[i].LongAnswer.DocumentID = id
		}
		for j := range anns[i].ShortAnswers {
			id, ok := canonical[anns[i].ShortAnswers[j].DocumentID]
			if !ok {
				return false
			}
			anns[i].ShortAnswers[j].DocumentID = id
		}
	}
	return true
}
