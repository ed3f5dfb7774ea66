// Package dataset parses the simplified Natural Questions format, prepares
// the evaluation artifacts, and serves gold annotations to the evaluator.
package dataset

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/kotae/internal/docid"
	"github.com/hyperjump/kotae/internal/models"
)

// nqRecord mirrors one line of the simplified Natural Questions JSONL format.
// document_text is pre-tokenized: tokens are separated by single spaces and
// include HTML tag tokens, and annotation offsets index that token sequence.
type nqRecord struct {
	ExampleID     int64          `json:"example_id"`
	QuestionText  string         `json:"question_text"`
	DocumentURL   string         `json:"document_url"`
	DocumentTitle string         `json:"document_title"`
	DocumentText  string         `json:"document_text"`
	Annotations   []nqAnnotation `json:"annotations"`
}

type nqAnnotation struct {
	YesNoAnswer  string   `json:"yes_no_answer"`
	LongAnswer   nqSpan   `json:"long_answer"`
	ShortAnswers []nqSpan `json:"short_answers"`
}

type nqSpan struct {
	StartToken int `json:"start_token"`
	EndToken   int `json:"end_token"`
}

// Example is one parsed dataset record: a question, its source document, and
// the annotator judgments expressed against the document's token sequence.
type Example struct {
	Question    models.Question
	Document    *models.Document
	Annotations []models.Annotation
}

var (
	titleRe = regexp.MustCompile(`title=([^&]*)`)
	oldidRe = regexp.MustCompile(`oldid=(\d+)`)
)

// WikiTitle extracts the article title from a wikipedia source URL, with
// underscores restored to spaces. Returns "" when the URL carries no title
// parameter.
func WikiTitle(url string) string {
	m := titleRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "_", " ")
}

// Revision extracts the numeric oldid revision from a wikipedia source URL,
// or 0 when absent.
func Revision(url string) int64 {
	m := oldidRe.FindStringSubmatch(url)
	if m == nil {
		return 0
	}
	rev, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return rev
}

// ParseRecord parses one simplified-format JSONL line. The document title
// comes from an explicit document_title field when present, otherwise from
// the source URL. Annotation spans outside the document's token range are
// dropped; an annotation left with no spans is a no-answer judgment.
func ParseRecord(line []byte) (*Example, error) {
	var rec nqRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	if rec.ExampleID == 0 {
		return nil, fmt.Errorf("record has no example_id")
	}
	if rec.DocumentText == "" {
		return nil, fmt.Errorf("record %d has no document_text", rec.ExampleID)
	}

	title := rec.DocumentTitle
	if title == "" {
		title = WikiTitle(rec.DocumentURL)
	}
	doc := &models.Document{
		ID:       docid.New(rec.DocumentURL, title),
		Title:    title,
		URL:      rec.DocumentURL,
		Revision: Revision(rec.DocumentURL),
		// split, not Fields: consecutive separators would shift every
		// annotation offset after them.
		Tokens: strings.Split(rec.DocumentText, " "),
	}

	qid := strconv.FormatInt(rec.ExampleID, 10)
	ex := &Example{
		Question: models.Question{ID: qid, Text: rec.QuestionText},
		Document: doc,
	}
	for _, a := range rec.Annotations {
		ex.Annotations = append(ex.Annotations, toAnnotation(qid, doc.ID, a, len(doc.Tokens)))
	}
	return ex, nil
}

func toAnnotation(qid, docID string, a nqAnnotation, tokenCount int) models.Annotation {
	ann := models.Annotation{QuestionID: qid}
	if span := toSpan(docID, a.LongAnswer, tokenCount); span != nil {
		ann.LongAnswer = span
	}
	for _, s := range a.ShortAnswers {
		if span := toSpan(docID, s, tokenCount); span != nil {
			ann.ShortAnswers = append(ann.ShortAnswers, *span)
		}
	}
	ann.NoAnswer = ann.LongAnswer == nil && len(ann.ShortAnswers) == 0
	return ann
}

func toSpan(docID string, s nqSpan, tokenCount int) *models.TokenSpan {
	if s.StartToken < 0 || s.EndToken <= s.StartToken || s.EndToken > tokenCount {
		return nil
	}
	return &models.TokenSpan{DocumentID: docID, StartToken: s.StartToken, EndToken: s.EndToken}
}
