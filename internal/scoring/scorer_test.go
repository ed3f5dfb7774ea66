package scoring

import (
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func scoringSet() models.CandidateSet {
	doc := &models.Document{
		ID:     "doc:1",
		Title:  "Test Article",
		Tokens: strings.Fields("one two three four five six seven eight nine ten"),
	}
	return models.CandidateSet{{Document: doc, Score: 1.0, Rank: 1}}
}

func span(start, end int) *models.TokenSpan {
	return &models.TokenSpan{DocumentID: "doc:1", StartToken: start, EndToken: end}
}

func answerAnnotation(qid string, long *models.TokenSpan, shorts ...models.TokenSpan) models.Annotation {
	return models.Annotation{QuestionID: qid, LongAnswer: long, ShortAnswers: shorts}
}

func noAnswerAnnotation(qid string) models.Annotation {
	return models.Annotation{QuestionID: qid, NoAnswer: true}
}

func TestGoldNoAnswer(t *testing.T) {
	tests := []struct {
		name string
		anns []models.Annotation
		want bool
	}{
		{name: "no annotations", anns: nil, want: false},
		{
			name: "two of three say no answer",
			anns: []models.Annotation{noAnswerAnnotation("q"), noAnswerAnnotation("q"), answerAnnotation("q", span(0, 2))},
			want: true,
		},
		{
			name: "one of three says no answer",
			anns: []models.Annotation{noAnswerAnnotation("q"), answerAnnotation("q", span(0, 2)), answerAnnotation("q", span(0, 2))},
			want: false,
		},
		{
			name: "even split is has-answer",
			anns: []models.Annotation{noAnswerAnnotation("q"), noAnswerAnnotation("q"), answerAnnotation("q", span(0, 2)), answerAnnotation("q", span(0, 2))},
			want: false,
		},
		{
			name: "single no-answer annotation",
			anns: []models.Annotation{noAnswerAnnotation("q")},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoldNoAnswer(tt.anns); got != tt.want {
				t.Errorf("GoldNoAnswer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_exactMatches(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{
		answerAnnotation("q1", span(0, 5), *span(2, 4)),
	}
	pred := &models.Prediction{
		QuestionID:  "q1",
		DocumentID:  "doc:1",
		LongAnswer:  span(0, 5),
		ShortAnswer: span(2, 4),
		Confidence:  0.9,
	}

	rec := scorer.Score(pred, scoringSet(), anns)
	if !rec.LongCorrect {
		t.Error("LongCorrect = false, want true for exact match")
	}
	if !rec.ShortCorrect {
		t.Error("ShortCorrect = false, want true for exact match")
	}
	if !rec.PredictedLong || !rec.PredictedShort || rec.PredictedNoAnswer {
		t.Errorf("prediction flags = %+v", rec)
	}
	if !rec.GoldHasLong || !rec.GoldHasShort || rec.GoldNoAnswer {
		t.Errorf("gold flags = %+v", rec)
	}
}

func TestScore_overlapEarnsNothing(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{
		answerAnnotation("q1", span(0, 5), *span(2, 4)),
	}
	pred := &models.Prediction{
		QuestionID:  "q1",
		DocumentID:  "doc:1",
		LongAnswer:  span(0, 6),
		ShortAnswer: span(2, 5),
	}

	rec := scorer.Score(pred, scoringSet(), anns)
	if rec.LongCorrect {
		t.Error("LongCorrect = true for an overlapping, non-identical span")
	}
	if rec.ShortCorrect {
		t.Error("ShortCorrect = true for an overlapping, non-identical span")
	}
}

func TestScore_shortMatchesAnyAnnotator(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{
		answerAnnotation("q1", span(0, 5), *span(1, 2)),
		answerAnnotation("q1", span(0, 5), *span(6, 8)),
		noAnswerAnnotation("q1"),
	}
	pred := &models.Prediction{
		QuestionID:  "q1",
		DocumentID:  "doc:1",
		ShortAnswer: span(6, 8),
	}

	rec := scorer.Score(pred, scoringSet(), anns)
	if !rec.ShortCorrect {
		t.Error("ShortCorrect = false, want true when any annotator's span matches")
	}
	if rec.PredictedLong {
		t.Error("PredictedLong = true with no long answer predicted")
	}
}

func TestScore_goldNoAnswerMajority(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{
		noAnswerAnnotation("q1"),
		noAnswerAnnotation("q1"),
		answerAnnotation("q1", span(0, 5), *span(2, 4)),
	}

	t.Run("no-answer prediction agrees", func(t *testing.T) {
		rec := scorer.Score(&models.Prediction{QuestionID: "q1"}, scoringSet(), anns)
		if !rec.LongCorrect || !rec.ShortCorrect {
			t.Errorf("correctness = %v/%v, want true/true", rec.LongCorrect, rec.ShortCorrect)
		}
		if !rec.PredictedNoAnswer || !rec.GoldNoAnswer {
			t.Errorf("flags = %+v", rec)
		}
		if rec.PredictedLong || rec.PredictedShort {
			t.Error("no-answer prediction must not count as a predicted span")
		}
	})

	t.Run("answer prediction disagrees", func(t *testing.T) {
		pred := &models.Prediction{QuestionID: "q1", DocumentID: "doc:1", ShortAnswer: span(2, 4)}
		rec := scorer.Score(pred, scoringSet(), anns)
		if rec.LongCorrect || rec.ShortCorrect {
			t.Errorf("correctness = %v/%v, want false/false", rec.LongCorrect, rec.ShortCorrect)
		}
	})
}

func TestScore_missedAnswer(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{answerAnnotation("q1", span(0, 5), *span(2, 4))}

	rec := scorer.Score(&models.Prediction{QuestionID: "q1"}, scoringSet(), anns)
	if rec.LongCorrect || rec.ShortCorrect {
		t.Error("a no-answer prediction against gold answers must be incorrect")
	}
	if !rec.GoldHasLong || !rec.GoldHasShort {
		t.Errorf("gold flags = %+v", rec)
	}
}

func TestScore_unknownDocumentIncorrectNotFatal(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{answerAnnotation("q1", span(0, 5), *span(2, 4))}
	pred := &models.Prediction{
		QuestionID:  "q1",
		DocumentID:  "doc:unknown",
		ShortAnswer: &models.TokenSpan{DocumentID: "doc:unknown", StartToken: 2, EndToken: 4},
	}

	rec := scorer.Score(pred, scoringSet(), anns)
	if rec.ShortCorrect || rec.LongCorrect {
		t.Error("a prediction over an unretrieved document must score incorrect")
	}
	if !rec.PredictedShort {
		t.Error("the malformed prediction still counts as a predicted span")
	}
	if !rec.GoldHasShort {
		t.Error("gold presence must be recorded regardless of the prediction")
	}
}

func TestScore_invertedSpanIncorrect(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{answerAnnotation("q1", span(0, 5))}
	pred := &models.Prediction{
		QuestionID: "q1",
		DocumentID: "doc:1",
		LongAnswer: &models.TokenSpan{DocumentID: "doc:1", StartToken: 5, EndToken: 2},
	}

	rec := scorer.Score(pred, scoringSet(), anns)
	if rec.LongCorrect {
		t.Error("an inverted span must score incorrect")
	}
}

func TestScore_overLengthPolicy(t *testing.T) {
	longSpan := *span(0, 9) // 9 tokens, limit 5
	anns := []models.Annotation{answerAnnotation("q1", span(0, 9), longSpan)}
	pred := &models.Prediction{QuestionID: "q1", DocumentID: "doc:1", ShortAnswer: span(0, 9)}

	tests := []struct {
		name        string
		policy      Policy
		wantCorrect bool
		wantGold    bool
	}{
		{name: "keep matches", policy: PolicyKeep, wantCorrect: true, wantGold: true},
		{name: "flag still matches", policy: PolicyFlag, wantCorrect: true, wantGold: true},
		{name: "drop removes from gold", policy: PolicyDrop, wantCorrect: false, wantGold: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewScorer(5, tt.policy, nil)
			rec := scorer.Score(pred, scoringSet(), anns)
			if rec.ShortCorrect != tt.wantCorrect {
				t.Errorf("ShortCorrect = %v, want %v", rec.ShortCorrect, tt.wantCorrect)
			}
			if rec.GoldHasShort != tt.wantGold {
				t.Errorf("GoldHasShort = %v, want %v", rec.GoldHasShort, tt.wantGold)
			}
		})
	}
}

func TestScore_zeroAnnotations(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)

	rec := scorer.Score(&models.Prediction{QuestionID: "q1"}, scoringSet(), nil)
	if rec.LongCorrect || rec.ShortCorrect {
		t.Error("nothing to match means nothing is correct")
	}
	if rec.GoldHasLong || rec.GoldHasShort || rec.GoldNoAnswer {
		t.Errorf("gold flags = %+v, want all false", rec)
	}
}

func TestScore_deterministic(t *testing.T) {
	scorer := NewScorer(5, PolicyKeep, nil)
	anns := []models.Annotation{
		answerAnnotation("q1", span(0, 5), *span(2, 4), *span(6, 8)),
		noAnswerAnnotation("q1"),
	}
	pred := &models.Prediction{
		QuestionID:  "q1",
		DocumentID:  "doc:1",
		LongAnswer:  span(0, 5),
		ShortAnswer: span(6, 8),
		Confidence:  0.7,
	}

	first := scorer.Score(pred, scoringSet(), anns)
	second := scorer.Score(pred, scoringSet(), anns)
	if first != second {
		t.Errorf("repeated scoring diverged: %+v vs %+v", first, second)
	}
}
