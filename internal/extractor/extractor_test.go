package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// scriptedReader returns canned results per document ID.
type scriptedReader struct {
	results map[string]*SpanResult
	errs    map[string]error
	reads   []string
	block   bool
}

func (r *scriptedReader) ReadDocument(ctx context.Context, question string, doc *models.Document) (*SpanResult, error) {
	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r.reads = append(r.reads, doc.ID)
	if err := r.errs[doc.ID]; err != nil {
		return nil, err
	}
	if res := r.results[doc.ID]; res != nil {
		return res, nil
	}
	return &SpanResult{NoAnswer: true}, nil
}

func (r *scriptedReader) Name() string { return "scripted" }
func (r *scriptedReader) Close() error { return nil }

func answered(docID string, confidence float64) *SpanResult {
	return &SpanResult{
		ShortAnswer: &models.TokenSpan{DocumentID: docID, StartToken: 0, EndToken: 1},
		Confidence:  confidence,
	}
}

func candidateSet(ids ...string) models.CandidateSet {
	set := make(models.CandidateSet, 0, len(ids))
	for i, id := range ids {
		set = append(set, models.Candidate{
			Document: &models.Document{ID: id, Title: id, Tokens: strings.Fields("some body text")},
			Score:    float64(len(ids) - i),
			Rank:     i + 1,
		})
	}
	return set
}

func TestExtract_selectsHighestConfidence(t *testing.T) {
	reader := &scriptedReader{results: map[string]*SpanResult{
		"doc:a": answered("doc:a", 0.2),
		"doc:b": answered("doc:b", 0.9),
		"doc:c": answered("doc:c", 0.5),
	}}
	e := New(reader, 0)

	pred, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a", "doc:b", "doc:c"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if pred.DocumentID != "doc:b" {
		t.Errorf("selected document = %s, want doc:b", pred.DocumentID)
	}
	if pred.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", pred.Confidence)
	}
	if pred.SourceRank != 2 {
		t.Errorf("source rank = %d, want 2", pred.SourceRank)
	}
}

func TestExtract_tieGoesToEarlierRank(t *testing.T) {
	reader := &scriptedReader{results: map[string]*SpanResult{
		"doc:a": answered("doc:a", 0.7),
		"doc:b": answered("doc:b", 0.7),
	}}
	e := New(reader, 0)

	pred, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a", "doc:b"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if pred.DocumentID != "doc:a" {
		t.Errorf("selected document = %s, want doc:a (earlier rank wins ties)", pred.DocumentID)
	}
	if pred.SourceRank != 1 {
		t.Errorf("source rank = %d, want 1", pred.SourceRank)
	}
}

func TestExtract_noSpanNeverSelected(t *testing.T) {
	// A no-answer result keeps whatever confidence the reader set; it still
	// must lose to any candidate with an actual span.
	reader := &scriptedReader{results: map[string]*SpanResult{
		"doc:a": {NoAnswer: true, Confidence: 0.99},
		"doc:b": answered("doc:b", 0.01),
	}}
	e := New(reader, 0)

	pred, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a", "doc:b"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if pred.DocumentID != "doc:b" {
		t.Errorf("selected document = %s, want doc:b", pred.DocumentID)
	}
}

func TestExtract_allNoAnswer(t *testing.T) {
	reader := &scriptedReader{}
	e := New(reader, 0)

	pred, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a", "doc:b"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !pred.IsNoAnswer() {
		t.Error("prediction should be no-answer")
	}
	if pred.Confidence != 0 {
		t.Errorf("no-answer confidence = %v, want 0", pred.Confidence)
	}
	if pred.SourceRank != 0 {
		t.Errorf("no-answer source rank = %d, want 0", pred.SourceRank)
	}
}

func TestExtract_emptyCandidateSet(t *testing.T) {
	e := New(&scriptedReader{}, 0)

	pred, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !pred.IsNoAnswer() {
		t.Error("prediction should be no-answer")
	}
	if pred.QuestionID != "q1" {
		t.Errorf("question id = %s, want q1", pred.QuestionID)
	}
}

func TestExtract_capsCandidatesRead(t *testing.T) {
	reader := &scriptedReader{results: map[string]*SpanResult{
		"doc:c": answered("doc:c", 0.9),
	}}
	e := New(reader, 2)

	pred, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a", "doc:b", "doc:c"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(reader.reads) != 2 {
		t.Errorf("documents read = %d, want 2", len(reader.reads))
	}
	// The best answer sat beyond the cap, so the question comes out
	// no-answer; the cap trades recall for reading cost.
	if !pred.IsNoAnswer() {
		t.Error("prediction should be no-answer when the answer is beyond the cap")
	}
}

func TestExtract_readErrorPropagates(t *testing.T) {
	reader := &scriptedReader{errs: map[string]error{
		"doc:a": errors.New("model exploded"),
	}}
	e := New(reader, 0)

	_, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a"))
	if err == nil {
		t.Fatal("Extract() expected error")
	}
	if !strings.Contains(err.Error(), "doc:a") {
		t.Errorf("error %q should name the failing document", err)
	}
}

func TestExtract_budgetOverrunIsDeadlineExceeded(t *testing.T) {
	reader := &scriptedReader{block: true}
	e := New(reader, 0, WithTimeout(20*time.Millisecond))

	_, err := e.Extract(context.Background(), models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Extract() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestExtract_cancellationIsNotTimeout(t *testing.T) {
	reader := &scriptedReader{block: true}
	e := New(reader, 0, WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, models.Question{ID: "q1", Text: "q"}, candidateSet("doc:a"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Extract() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("cancellation must not look like a reading-budget overrun")
	}
}
