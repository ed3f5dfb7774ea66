package extractor

import (
	"math"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// spanScore is a candidate answer span in document token offsets
// (end exclusive) with its combined start/end logit score.
type spanScore struct {
	Start int
	End   int
	Score float64
}

// bestSpan finds the highest-scoring valid span within the encoded document
// region: start before end, at most maxAnswer tokens, both ends inside the
// document. Reports false when the encoding holds no document tokens.
func bestSpan(startLogits, endLogits []float32, enc *Encoding, maxAnswer int) (spanScore, bool) {
	if enc.DocLen == 0 {
		return spanScore{}, false
	}
	if maxAnswer <= 0 {
		maxAnswer = 10
	}

	best := spanScore{Score: math.Inf(-1)}
	found := false
	docEnd := enc.DocStart + enc.DocLen
	for s := enc.DocStart; s < docEnd; s++ {
		endLimit := s + maxAnswer
		if endLimit > docEnd {
			endLimit = docEnd
		}
		for e := s; e < endLimit; e++ {
			score := float64(startLogits[s]) + float64(endLogits[e])
			if score > best.Score {
				best = spanScore{Start: s - enc.DocStart, End: e - enc.DocStart + 1, Score: score}
				found = true
			}
		}
	}
	return best, found
}

// enclosingBlock widens a span to its surrounding markup block: the tokens
// between the nearest tag token on each side. Article text carries its
// paragraph structure as tag tokens, so this recovers the paragraph the span
// sits in. Falls back to the whole document when nothing encloses the span.
func enclosingBlock(doc *models.Document, start, end int) *models.TokenSpan {
	lo := 0
	for i := start - 1; i >= 0 && i < len(doc.Tokens); i-- {
		if isMarkupToken(doc.Tokens[i]) {
			lo = i + 1
			break
		}
	}
	hi := len(doc.Tokens)
	for i := end; i < len(doc.Tokens); i++ {
		if isMarkupToken(doc.Tokens[i]) {
			hi = i
			break
		}
	}
	if lo >= hi {
		return nil
	}
	return &models.TokenSpan{DocumentID: doc.ID, StartToken: lo, EndToken: hi}
}

func isMarkupToken(tok string) bool {
	return len(tok) >= 2 && strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">")
}
