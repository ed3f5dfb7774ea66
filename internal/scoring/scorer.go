// Package scoring judges predictions against multi-annotator gold labels.
package scoring

import (
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// Policy controls how gold short answers longer than the configured word
// limit are treated. The annotation guidelines cap short answers, but real
// gold data does not always comply.
type Policy string

const (
	// PolicyKeep matches over-length gold spans like any other.
	PolicyKeep Policy = "keep"
	// PolicyFlag logs over-length gold spans and still matches them.
	PolicyFlag Policy = "flag"
	// PolicyDrop excludes over-length gold spans from the gold set.
	PolicyDrop Policy = "drop"
)

// Scorer judges one prediction at a time. Stateless apart from configuration
// and logging, so a single scorer serves all evaluation workers.
type Scorer struct {
	maxShortWords int
	policy        Policy
	logger        *zap.Logger
}

// NewScorer creates a scorer. maxShortAnswerWords falls back to 5 when
// non-positive; an empty policy means keep.
func NewScorer(maxShortAnswerWords int, policy Policy, logger *zap.Logger) *Scorer {
	if maxShortAnswerWords <= 0 {
		maxShortAnswerWords = 5
	}
	if policy == "" {
		policy = PolicyKeep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		maxShortWords: maxShortAnswerWords,
		policy:        policy,
		logger:        logger,
	}
}

// GoldNoAnswer reports whether a strict majority of annotators found no
// answer. An even split counts as has-answer: calling a question
// unanswerable takes more agreement than answering it.
func GoldNoAnswer(anns []models.Annotation) bool {
	n := 0
	for _, ann := range anns {
		if ann.NoAnswer {
			n++
		}
	}
	return 2*n > len(anns)
}

// Score judges a prediction against the question's annotations. Correctness
// is exact span identity only; overlap earns nothing. Malformed predictions
// are logged and scored incorrect, never fatal — one bad prediction must not
// take down a run.
func (s *Scorer) Score(pred *models.Prediction, set models.CandidateSet, anns []models.Annotation) models.ScoreRecord {
	rec := models.ScoreRecord{
		QuestionID:        pred.QuestionID,
		PredictedLong:     pred.LongAnswer != nil,
		PredictedShort:    pred.ShortAnswer != nil,
		PredictedNoAnswer: pred.IsNoAnswer(),
		GoldNoAnswer:      GoldNoAnswer(anns),
	}

	goldLong := goldLongSpans(anns)
	goldShort := s.goldShortSpans(pred.QuestionID, anns)
	rec.GoldHasLong = len(goldLong) > 0
	rec.GoldHasShort = len(goldShort) > 0

	if !pred.IsNoAnswer() {
		if reason := inconsistency(pred, set); reason != "" {
			s.logger.Warn("scoring inconsistency",
				zap.String("question_id", pred.QuestionID),
				zap.String("document_id", pred.DocumentID),
				zap.String("reason", reason))
			return rec
		}
	}

	if rec.GoldNoAnswer {
		// Agreement on unanswerable counts for both tasks. Aggregates only
		// ever count correctness together with a predicted span, so this
		// cannot inflate precision or recall.
		rec.LongCorrect = rec.PredictedNoAnswer
		rec.ShortCorrect = rec.PredictedNoAnswer
		return rec
	}

	if pred.LongAnswer != nil {
		for _, g := range goldLong {
			if pred.LongAnswer.Equal(g) {
				rec.LongCorrect = true
				break
			}
		}
	}
	if pred.ShortAnswer != nil {
		for i := range goldShort {
			if pred.ShortAnswer.Equal(&goldShort[i]) {
				rec.ShortCorrect = true
				break
			}
		}
	}
	return rec
}

// inconsistency reports why a prediction cannot be scored against its
// document, or "" when it can. A span over a document retrieval never
// returned points at a pipeline bug worth surfacing in logs.
func inconsistency(pred *models.Prediction, set models.CandidateSet) string {
	doc := set.Document(pred.DocumentID)
	if doc == nil {
		return "predicted document not among candidates"
	}
	for _, span := range []*models.TokenSpan{pred.LongAnswer, pred.ShortAnswer} {
		if span == nil {
			continue
		}
		if span.DocumentID != pred.DocumentID {
			return "span names a different document than the prediction"
		}
		if !span.Valid() || span.EndToken > len(doc.Tokens) {
			return "span out of document range"
		}
	}
	return ""
}

// goldLongSpans collects long answers from annotators who found one.
func goldLongSpans(anns []models.Annotation) []*models.TokenSpan {
	var out []*models.TokenSpan
	for _, ann := range anns {
		if ann.NoAnswer || ann.LongAnswer == nil {
			continue
		}
		out = append(out, ann.LongAnswer)
	}
	return out
}

// goldShortSpans collects the union of short answers across annotators who
// found one, applying the over-length policy.
func (s *Scorer) goldShortSpans(questionID string, anns []models.Annotation) []models.TokenSpan {
	var out []models.TokenSpan
	for _, ann := range anns {
		if ann.NoAnswer {
			continue
		}
		for _, span := range ann.ShortAnswers {
			if span.Len() > s.maxShortWords {
				switch s.policy {
				case PolicyDrop:
					continue
				case PolicyFlag:
					s.logger.Warn("over-length gold short answer",
						zap.String("question_id", questionID),
						zap.Int("tokens", span.Len()),
						zap.Int("limit", s.maxShortWords))
				}
			}
			out = append(out, span)
		}
	}
	return out
}
