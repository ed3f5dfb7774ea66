package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Prepared artifact formats, one JSON object per line. The corpus file keeps
// document text as the space-joined token sequence (lossless: splitting on
// single spaces reproduces the exact tokens annotations index into).

type corpusRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Revision int64  `json:"revision,omitempty"`
	Text     string `json:"text"`
}

type goldRecord struct {
	QuestionID   string           `json:"question_id"`
	QuestionText string           `json:"question_text"`
	Annotations  []goldAnnotation `json:"annotations"`
}

type goldAnnotation struct {
	DocumentID   string   `json:"document_id,omitempty"`
	LongAnswer   []int    `json:"long_answer,omitempty"`   // [start, end]
	ShortAnswers [][2]int `json:"short_answers,omitempty"` // [start, end] pairs
	NoAnswer     bool     `json:"no_answer,omitempty"`
}

// openLines opens a .jsonl or .jsonl.gz file for line-wise reading.
// The scanner buffer is sized for full wikipedia pages on one line.
func openLines(path string) (*bufio.Scanner, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	var r io.Reader = f
	closeFn := f.Close
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to open gzip %s: %w", path, err)
		}
		r = gz
		closeFn = func() error {
			gz.Close()
			return f.Close()
		}
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 64<<20)
	return sc, closeFn, nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// WriteCorpus writes canonical documents as a corpus artifact.
func WriteCorpus(path string, docs []*models.Document) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, doc := range docs {
		rec := corpusRecord{
			ID:       doc.ID,
			Title:    doc.Title,
			URL:      doc.URL,
			Revision: doc.Revision,
			Text:     strings.Join(doc.Tokens, " "),
		}
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("failed to write corpus record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus: %w", err)
	}
	return nil
}

// ReadCorpus loads a corpus artifact. Unparsable lines are skipped and
// counted; a missing file is an error the caller treats as fatal.
func ReadCorpus(path string) (docs []*models.Document, badLines int, err error) {
	sc, closeFn, err := openLines(path)
	if err != nil {
		return nil, 0, err
	}
	defer closeFn()

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec corpusRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			badLines++
			continue
		}
		docs = append(docs, &models.Document{
			ID:       rec.ID,
			Title:    rec.Title,
			URL:      rec.URL,
			Revision: rec.Revision,
			Tokens:   strings.Split(rec.Text, " "),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, badLines, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return docs, badLines, nil
}

// WriteGold writes questions with their annotations as a gold artifact.
func WriteGold(path string, questions []models.Question, annotations map[string][]models.Annotation) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, q := range questions {
		rec := goldRecord{QuestionID: q.ID, QuestionText: q.Text}
		for _, ann := range annotations[q.ID] {
			rec.Annotations = append(rec.Annotations, toGoldAnnotation(ann))
		}
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("failed to write gold record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush gold: %w", err)
	}
	return nil
}

func toGoldAnnotation(ann models.Annotation) goldAnnotation {
	g := goldAnnotation{NoAnswer: ann.NoAnswer}
	if ann.LongAnswer != nil {
		g.DocumentID = ann.LongAnswer.DocumentID
		g.LongAnswer = []int{ann.LongAnswer.StartToken, ann.LongAnswer.EndToken}
	}
	for _, s := range ann.ShortAnswers {
		if g.DocumentID == "" {
			g.DocumentID = s.DocumentID
		}
		g.ShortAnswers = append(g.ShortAnswers, [2]int{s.StartToken, s.EndToken})
	}
	return g
}

func fromGoldAnnotation(qid string, g goldAnnotation) models.Annotation {
	ann := models.Annotation{QuestionID: qid, NoAnswer: g.NoAnswer}
	if len(g.LongAnswer) == 2 {
		ann.LongAnswer = &models.TokenSpan{
			DocumentID: g.DocumentID,
			StartToken: g.LongAnswer[0],
			EndToken:   g.LongAnswer[1],
		}
	}
	for _, s := range g.ShortAnswers {
		ann.ShortAnswers = append(ann.ShortAnswers, models.TokenSpan{
			DocumentID: g.DocumentID,
			StartToken: s[0],
			EndToken:   s[1],
		})
	}
	if ann.NoAnswer {
		// Guard the invariant: a no-answer judgment carries no spans.
		ann.LongAnswer = nil
		ann.ShortAnswers = nil
	}
	return ann
}

// ReadGold loads a gold artifact. Unparsable lines are skipped and counted;
// a missing file is an error the caller treats as fatal.
func ReadGold(path string) (questions []models.Question, annotations map[string][]models.Annotation, badLines int, err error) {
	sc, closeFn, err := openLines(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer closeFn()

	annotations = make(map[string][]models.Annotation)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec goldRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.QuestionID == "" {
			badLines++
			continue
		}
		questions = append(questions, models.Question{ID: rec.QuestionID, Text: rec.QuestionText})
		for _, g := range rec.Annotations {
			annotations[rec.QuestionID] = append(annotations[rec.QuestionID], fromGoldAnnotation(rec.QuestionID, g))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, badLines, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return questions, annotations, badLines, nil
}
