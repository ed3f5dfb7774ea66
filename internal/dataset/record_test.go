package dataset

import (
	"testing"
)

func TestWikiTitle(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"escaped wikipedia url",
			"https://en.wikipedia.org//w/index.php?title=The_Walking_Dead_(season_8)&amp;oldid=805660596",
			"The Walking Dead (season 8)",
		},
		{
			"plain ampersand",
			"https://en.wikipedia.org//w/index.php?title=Email_marketing&oldid=814071202",
			"Email marketing",
		},
		{"title at end of url", "https://example.org/w/index.php?title=Free_Solo", "Free Solo"},
		{"no title parameter", "https://example.org/page", ""},
		{"empty url", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WikiTitle(tt.url); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRevision(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int64
	}{
		{"escaped url", "https://en.wikipedia.org//w/index.php?title=X&amp;oldid=805660596", 805660596},
		{"plain url", "https://en.wikipedia.org//w/index.php?title=X&oldid=7", 7},
		{"no oldid", "https://example.org/w/index.php?title=X", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Revision(tt.url); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	line := `{"example_id": 559, "question_text": "when does season 8 of the walking dead start",
		"document_url": "https://en.wikipedia.org//w/index.php?title=The_Walking_Dead_(season_8)&amp;oldid=805660596",
		"document_text": "The Walking Dead ( season 8 ) - wikipedia <H1> The Walking Dead ( season 8 ) </H1> premiered on October 22 , 2017",
		"annotations": [{"yes_no_answer": "NONE", "long_answer": {"start_token": 18, "end_token": 24}, "short_answers": [{"start_token": 20, "end_token": 22}]}]}`

	ex, err := ParseRecord([]byte(line))
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	if ex.Question.ID != "559" {
		t.Errorf("question id = %q, want 559", ex.Question.ID)
	}
	if ex.Question.Text != "when does season 8 of the walking dead start" {
		t.Errorf("question text = %q", ex.Question.Text)
	}
	if ex.Document.Title != "The Walking Dead (season 8)" {
		t.Errorf("title = %q", ex.Document.Title)
	}
	if ex.Document.Revision != 805660596 {
		t.Errorf("revision = %d", ex.Document.Revision)
	}
	if len(ex.Document.Tokens) != 24 {
		t.Fatalf("token count = %d, want 24", len(ex.Document.Tokens))
	}
	if len(ex.Annotations) != 1 {
		t.Fatalf("annotations = %d, want 1", len(ex.Annotations))
	}
	ann := ex.Annotations[0]
	if ann.NoAnswer {
		t.Error("annotation with spans must not be no-answer")
	}
	if ann.LongAnswer == nil || ann.LongAnswer.StartToken != 18 || ann.LongAnswer.EndToken != 24 {
		t.Errorf("long answer = %+v", ann.LongAnswer)
	}
	if len(ann.ShortAnswers) != 1 {
		t.Fatalf("short answers = %d, want 1", len(ann.ShortAnswers))
	}
	if got := ex.Document.SpanText(&ann.ShortAnswers[0]); got != "October 22" {
		t.Errorf("short answer text = %q, want %q", got, "October 22")
	}
}

func TestParseRecord_noAnswer(t *testing.T) {
	line := `{"example_id": 7, "question_text": "q", "document_url": "https://x?title=A&oldid=1",
		"document_text": "A - wikipedia body",
		"annotations": [{"yes_no_answer": "NONE", "long_answer": {"start_token": -1, "end_token": -1}, "short_answers": []}]}`

	ex, err := ParseRecord([]byte(line))
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	if !ex.Annotations[0].NoAnswer {
		t.Error("annotation without spans should be no-answer")
	}
	if ex.Annotations[0].LongAnswer != nil || ex.Annotations[0].ShortAnswers != nil {
		t.Error("no-answer annotation must carry no spans")
	}
}

func TestParseRecord_dropsOutOfRangeSpans(t *testing.T) {
	// 4 tokens; the short span reaches past the document.
	line := `{"example_id": 8, "question_text": "q", "document_url": "https://x?title=A&oldid=1",
		"document_text": "one two three four",
		"annotations": [{"long_answer": {"start_token": 0, "end_token": 4}, "short_answers": [{"start_token": 2, "end_token": 9}]}]}`

	ex, err := ParseRecord([]byte(line))
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	ann := ex.Annotations[0]
	if ann.LongAnswer == nil {
		t.Error("in-range long answer should be kept")
	}
	if len(ann.ShortAnswers) != 0 {
		t.Errorf("out-of-range short answer should be dropped, got %+v", ann.ShortAnswers)
	}
}

func TestParseRecord_explicitTitleWins(t *testing.T) {
	line := `{"example_id": 9, "question_text": "q", "document_title": "Explicit Title",
		"document_url": "https://x?title=Url_Title&oldid=1", "document_text": "body text"}`

	ex, err := ParseRecord([]byte(line))
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	if ex.Document.Title != "Explicit Title" {
		t.Errorf("title = %q, want explicit field", ex.Document.Title)
	}
}

func TestParseRecord_errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"invalid json", `{"example_id": `},
		{"missing example_id", `{"question_text": "q", "document_text": "x"}`},
		{"missing document_text", `{"example_id": 3, "question_text": "q"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRecord([]byte(tt.line)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
