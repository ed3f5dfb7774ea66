package extractor

import (
	"context"
	"strings"
	"unicode"

	"github.com/hyperjump/kotae/internal/models"
)

// stopwords are question-scaffolding words excluded from term matching.
// Matching "the" or "who" everywhere would drown out the terms that carry
// the question.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "was": true, "are": true,
	"were": true, "be": true, "been": true, "in": true, "on": true, "of": true,
	"to": true, "and": true, "or": true, "for": true, "with": true, "by": true,
	"at": true, "from": true, "that": true, "this": true, "it": true, "its": true,
	"who": true, "what": true, "when": true, "where": true, "which": true,
	"whom": true, "whose": true, "why": true, "how": true, "did": true,
	"does": true, "do": true, "has": true, "have": true, "had": true,
}

// LexicalReader is a deterministic overlap baseline: no model, no I/O. It
// slides a fixed-width token window over the document and keeps the window
// containing the most distinct question terms. Useful as a floor for model
// readers and for exercising the pipeline without a model service.
type LexicalReader struct {
	windowTokens int
	minOverlap   float64
	maxAnswer    int
}

// NewLexicalReader creates a lexical reader. windowTokens and
// maxAnswerTokens fall back to 60 and 10 when non-positive; minOverlap is
// the fraction of distinct question terms a window must contain before the
// reader claims an answer.
func NewLexicalReader(windowTokens int, minOverlap float64, maxAnswerTokens int) *LexicalReader {
	if windowTokens <= 0 {
		windowTokens = 60
	}
	if maxAnswerTokens <= 0 {
		maxAnswerTokens = 10
	}
	return &LexicalReader{
		windowTokens: windowTokens,
		minOverlap:   minOverlap,
		maxAnswer:    maxAnswerTokens,
	}
}

// ReadDocument scans the document and returns the best window as the long
// answer. Confidence is the matched fraction of question terms, so results
// are comparable across candidate documents.
func (r *LexicalReader) ReadDocument(ctx context.Context, question string, doc *models.Document) (*SpanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := questionTerms(question)
	if len(terms) == 0 || len(doc.Tokens) == 0 {
		return &SpanResult{NoAnswer: true}, nil
	}

	norm := make([]string, len(doc.Tokens))
	for i, tok := range doc.Tokens {
		norm[i] = normalizeToken(tok)
	}

	window := r.windowTokens
	if window > len(norm) {
		window = len(norm)
	}

	// Slide the window, tracking how many distinct terms it holds. Strict >
	// keeps the earliest best window, so results never depend on scan order.
	counts := make(map[string]int, len(terms))
	matched := 0
	observe := func(i, delta int) {
		w := norm[i]
		if w == "" || !terms[w] {
			return
		}
		counts[w] += delta
		if delta > 0 && counts[w] == 1 {
			matched++
		}
		if delta < 0 && counts[w] == 0 {
			matched--
		}
	}

	for i := 0; i < window; i++ {
		observe(i, 1)
	}
	bestStart, bestMatched := 0, matched
	for start := 1; start+window <= len(norm); start++ {
		observe(start-1, -1)
		observe(start+window-1, 1)
		if matched > bestMatched {
			bestMatched = matched
			bestStart = start
		}
	}

	overlap := float64(bestMatched) / float64(len(terms))
	if bestMatched == 0 || overlap < r.minOverlap {
		return &SpanResult{NoAnswer: true}, nil
	}

	long := &models.TokenSpan{DocumentID: doc.ID, StartToken: bestStart, EndToken: bestStart + window}
	return &SpanResult{
		LongAnswer:  long,
		ShortAnswer: r.shortAnswer(doc.ID, norm, terms, bestStart, bestStart+window),
		Confidence:  overlap,
	}, nil
}

// shortAnswer picks the run of content tokens directly after the first
// question term in the window. Answer words follow the matched terms in most
// phrasings and are by definition not question terms themselves. Returns nil
// when the window has no such run; the long answer still stands.
func (r *LexicalReader) shortAnswer(docID string, norm []string, terms map[string]bool, start, end int) *models.TokenSpan {
	first := -1
	for i := start; i < end; i++ {
		if norm[i] != "" && terms[norm[i]] {
			first = i
			break
		}
	}
	if first == -1 {
		return nil
	}

	s := first + 1
	for s < end && (norm[s] == "" || terms[norm[s]] || stopwords[norm[s]]) {
		s++
	}
	if s >= end {
		return nil
	}
	e := s
	for e < end && e-s < r.maxAnswer && norm[e] != "" && !terms[norm[e]] && !stopwords[norm[e]] {
		e++
	}
	if e == s {
		return nil
	}
	return &models.TokenSpan{DocumentID: docID, StartToken: s, EndToken: e}
}

// Name identifies the reader in reports.
func (r *LexicalReader) Name() string { return "lexical" }

// Close is a no-op; the reader holds no resources.
func (r *LexicalReader) Close() error { return nil }

// questionTerms returns the distinct content words of a question.
func questionTerms(question string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = trimPunct(w)
		if w == "" || stopwords[w] {
			continue
		}
		terms[w] = true
	}
	return terms
}

// normalizeToken lowercases a document token and strips surrounding
// punctuation. Markup tokens normalize to "" so they never match a term and
// never count as answer content.
func normalizeToken(tok string) string {
	if isMarkupToken(tok) {
		return ""
	}
	return trimPunct(strings.ToLower(tok))
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
