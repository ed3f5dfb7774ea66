package models

import "time"

// ScoreRecord is the per-question scoring outcome. The presence booleans
// carry the denominators the aggregate metrics re-derive: Predicted* counts
// feed precision, GoldHas* counts feed recall.
type ScoreRecord struct {
	QuestionID        string `json:"question_id"`
	LongCorrect       bool   `json:"long_correct"`
	ShortCorrect      bool   `json:"short_correct"`
	PredictedLong     bool   `json:"predicted_long"`
	PredictedShort    bool   `json:"predicted_short"`
	PredictedNoAnswer bool   `json:"predicted_no_answer"`
	GoldNoAnswer      bool   `json:"gold_no_answer"`
	GoldHasLong       bool   `json:"gold_has_long"`
	GoldHasShort      bool   `json:"gold_has_short"`
}

// TaskMetrics holds precision, recall, and F1 for one task (long answer or
// short answer) plus the raw counts they derive from.
type TaskMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Correct   int     `json:"correct"`
	Predicted int     `json:"predicted"`
	Gold      int     `json:"gold"`
}

// Failure reasons recorded on a MetricsReport.
const (
	FailRetrievalUnavailable = "retrieval_unavailable"
	FailExtractionTimeout    = "extraction_timeout"
	FailExtraction           = "extraction_failed"
)

// FailedExample records a question excluded from the aggregates and why.
type FailedExample struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

// MetricsReport is the outcome of one evaluation run. Failed questions are
// excluded from every metric but listed with reasons; Partial marks a run
// cancelled before all questions were attempted.
type MetricsReport struct {
	RunID        string          `json:"run_id"`
	Name         string          `json:"name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Engine       string          `json:"engine"`
	Reader       string          `json:"reader"`
	TopK         int             `json:"top_k"`
	Questions    int             `json:"questions"`
	Scored       int             `json:"scored"`
	Skipped      int             `json:"skipped,omitempty"`
	GoldNoAnswer int             `json:"gold_no_answer"`
	LongAnswer   TaskMetrics     `json:"long_answer"`
	ShortAnswer  TaskMetrics     `json:"short_answer"`
	Failed       []FailedExample `json:"failed,omitempty"`
	Partial      bool            `json:"partial,omitempty"`
	ElapsedMS    int64           `json:"elapsed_ms"`
}
