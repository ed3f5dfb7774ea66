package models

// Candidate is one retrieved document with its engine-assigned score and
// 1-based rank. Candidates keep the order the engine returned them in;
// nothing downstream re-sorts them.
type Candidate struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
	Rank     int       `json:"rank"`
}

// CandidateSet is the ranked retrieval result for one question, bounded by
// the configured top_k. Empty means no matches, which is not a failure.
type CandidateSet []Candidate

// Document returns the candidate document with the given ID, or nil when the
// set does not contain it.
func (cs CandidateSet) Document(docID string) *Document {
	for _, c := range cs {
		if c.Document != nil && c.Document.ID == docID {
			return c.Document
		}
	}
	return nil
}

// Prediction is the system's answer for one question. Both span fields nil
// means the system predicts the question has no answer in the corpus.
// No-answer predictions carry Confidence 0 rather than -Inf so reports stay
// JSON-encodable.
type Prediction struct {
	QuestionID  string     `json:"question_id"`
	DocumentID  string     `json:"document_id,omitempty"`
	LongAnswer  *TokenSpan `json:"long_answer,omitempty"`
	ShortAnswer *TokenSpan `json:"short_answer,omitempty"`
	Confidence  float64    `json:"confidence"`
	// SourceRank is the retrieval rank of the candidate the spans came from,
	// kept so a selection is traceable back to retrieval order. 0 for
	// no-answer predictions.
	SourceRank int `json:"source_rank,omitempty"`
}

// IsNoAnswer reports whether the prediction asserts that no answer exists.
func (p *Prediction) IsNoAnswer() bool {
	return p.LongAnswer == nil && p.ShortAnswer == nil
}
