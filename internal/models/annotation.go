package models

// Question is one evaluation question.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TokenSpan identifies a contiguous token range [StartToken, EndToken) within
// a document. EndToken is exclusive.
type TokenSpan struct {
	DocumentID string `json:"document_id"`
	StartToken int    `json:"start_token"`
	EndToken   int    `json:"end_token"`
}

// Valid reports whether the span names a document and covers a non-empty,
// non-inverted token range.
func (s *TokenSpan) Valid() bool {
	return s != nil && s.DocumentID != "" && s.StartToken >= 0 && s.EndToken > s.StartToken
}

// Equal reports exact span identity: same document, same start, same end.
// Overlap is never considered equality.
func (s *TokenSpan) Equal(o *TokenSpan) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.DocumentID == o.DocumentID && s.StartToken == o.StartToken && s.EndToken == o.EndToken
}

// Len returns the number of tokens the span covers.
func (s *TokenSpan) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.EndToken - s.StartToken
}

// Annotation is one annotator's judgment for a question. NoAnswer true means
// the annotator found no answer in the source document; the dataset loader
// clears the span fields on no-answer annotations.
type Annotation struct {
	QuestionID   string      `json:"question_id"`
	LongAnswer   *TokenSpan  `json:"long_answer,omitempty"`
	ShortAnswers []TokenSpan `json:"short_answers,omitempty"`
	NoAnswer     bool        `json:"no_answer"`
}
