package e2e

import (
	"context"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/extractor"
)

// Reader configuration used across the fixture tests. Window and answer
// length are the production defaults; every article fits in one window.
func fixtureReader() *extractor.LexicalReader {
	return extractor.NewLexicalReader(0, 0.3, 10)
}

func TestBuildGoldCorpus_Shape(t *testing.T) {
	g := BuildGoldCorpus()

	if len(g.Documents) != len(g.Articles) {
		t.Errorf("expected one document per article, got %d documents for %d articles", len(g.Documents), len(g.Articles))
	}
	if g.NoAnswerCount() != 2 {
		t.Errorf("expected 2 no-answer questions, got %d", g.NoAnswerCount())
	}
	if len(g.Questions) != g.AnswerableCount()+g.NoAnswerCount() {
		t.Errorf("question count %d does not add up", len(g.Questions))
	}
	if len(g.Wanted) != g.AnswerableCount() {
		t.Errorf("expected %d wanted spans, got %d", g.AnswerableCount(), len(g.Wanted))
	}

	seenID := make(map[string]bool)
	seenTitle := make(map[string]bool)
	for _, doc := range g.Documents {
		if seenID[doc.ID] {
			t.Errorf("duplicate document ID %q", doc.ID)
		}
		if seenTitle[doc.Title] {
			t.Errorf("duplicate title %q", doc.Title)
		}
		seenID[doc.ID] = true
		seenTitle[doc.Title] = true
	}

	for _, q := range g.Questions {
		anns := g.Annotations[q.ID]
		if len(anns) != annotatorsPerQuestion {
			t.Errorf("question %s: expected %d annotations, got %d", q.ID, annotatorsPerQuestion, len(anns))
		}
		if _, answerable := g.Wanted[q.ID]; answerable {
			for _, ann := range anns {
				if ann.NoAnswer || ann.LongAnswer == nil || len(ann.ShortAnswers) != 1 {
					t.Errorf("question %s: answerable annotation is malformed", q.ID)
				}
			}
		} else {
			for _, ann := range anns {
				if !ann.NoAnswer || ann.LongAnswer != nil || len(ann.ShortAnswers) != 0 {
					t.Errorf("question %s: no-answer annotation is malformed", q.ID)
				}
			}
		}
	}
}

// TestArticles_AnswersExtractable runs the real reader over every article and
// requires the exact planted spans back at full confidence. If an article
// edit breaks the authoring rules, this test names it.
func TestArticles_AnswersExtractable(t *testing.T) {
	g := BuildGoldCorpus()
	reader := fixtureReader()
	ctx := context.Background()

	for i, a := range g.Articles {
		t.Run(a.Title, func(t *testing.T) {
			doc := g.Documents[i]
			want := g.Wanted[g.Questions[i].ID]

			res, err := reader.ReadDocument(ctx, a.Question, doc)
			if err != nil {
				t.Fatalf("ReadDocument: %v", err)
			}
			if res.NoAnswer {
				t.Fatalf("reader found no answer for %q", a.Question)
			}
			if res.Confidence != 1.0 {
				t.Errorf("confidence = %v, want 1.0 (a question word is missing from the lead)", res.Confidence)
			}
			if !res.LongAnswer.Equal(&want.Long) {
				t.Errorf("long answer = %+v, want %+v", res.LongAnswer, want.Long)
			}
			if !res.ShortAnswer.Equal(&want.Short) {
				t.Errorf("short answer = %+v, want %+v", res.ShortAnswer, want.Short)
			}
		})
	}
}

// TestArticles_AnswerPinnedToOneDocument checks the uniqueness rule: no
// question reaches full confidence on any document except its own, so the
// extractor's pick cannot depend on retrieval order.
func TestArticles_AnswerPinnedToOneDocument(t *testing.T) {
	g := BuildGoldCorpus()
	reader := fixtureReader()
	ctx := context.Background()

	for i := range g.Articles {
		q := g.Questions[i]
		want := g.Wanted[q.ID]
		for _, doc := range g.Documents {
			if doc.ID == want.DocumentID {
				continue
			}
			res, err := reader.ReadDocument(ctx, q.Text, doc)
			if err != nil {
				t.Fatalf("ReadDocument: %v", err)
			}
			if !res.NoAnswer && res.Confidence >= 1.0 {
				t.Errorf("question %q reaches confidence %v on %q; its unique word must appear only in %q",
					q.Text, res.Confidence, doc.Title, want.DocumentID)
			}
		}
	}
}

// TestNoAnswerQuestions_AbsentFromCorpus checks that no word of a no-answer
// question occurs in any document's tokens or title, so retrieval returns
// zero hits for them.
func TestNoAnswerQuestions_AbsentFromCorpus(t *testing.T) {
	g := BuildGoldCorpus()

	inCorpus := make(map[string]bool)
	for _, doc := range g.Documents {
		for _, tok := range doc.Tokens {
			inCorpus[strings.ToLower(tok)] = true
		}
		for _, word := range strings.Fields(strings.ToLower(doc.Title)) {
			inCorpus[word] = true
		}
	}

	for _, text := range noAnswerQuestions() {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			// Articles and prepositions are removed from queries by the index
			// analyzer; everything else must be absent from the corpus.
			switch word {
			case "a", "an", "the", "is", "of", "in", "on", "to", "was":
				continue
			}
			if inCorpus[word] {
				t.Errorf("no-answer question %q shares word %q with the corpus", text, word)
			}
		}
	}
}
