// Package models defines core data structures for documents, questions,
// annotations, predictions, and evaluation reports.
package models

import "strings"

// Document is a canonical corpus article. Tokens are the whitespace tokens of
// the source page in original order, HTML tag tokens included, so annotation
// token offsets stay valid. Documents are immutable once indexed.
type Document struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	URL      string   `json:"url,omitempty"`
	Revision int64    `json:"revision,omitempty"`
	Tokens   []string `json:"tokens"`
}

// SearchText renders the indexable text of the document: tokens joined by
// single spaces with HTML tag tokens removed. Tag tokens carry no retrieval
// signal, and stripping them here leaves Tokens and span offsets untouched.
func (d *Document) SearchText() string {
	var b strings.Builder
	for _, tok := range d.Tokens {
		if isTagToken(tok) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

// SpanText renders the text covered by span, or "" when the span does not lie
// within this document.
func (d *Document) SpanText(span *TokenSpan) string {
	if !span.Valid() || span.DocumentID != d.ID || span.EndToken > len(d.Tokens) {
		return ""
	}
	return strings.Join(d.Tokens[span.StartToken:span.EndToken], " ")
}

// isTagToken reports whether tok is an HTML tag token such as "<P>" or "</Table>".
func isTagToken(tok string) bool {
	return len(tok) >= 2 && tok[0] == '<' && tok[len(tok)-1] == '>'
}
