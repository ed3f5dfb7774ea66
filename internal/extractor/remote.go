package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// readRequest is the payload sent to the model service for one document.
type readRequest struct {
	Question string   `json:"question"`
	Tokens   []string `json:"tokens"`
}

// readResponse is the model service's answer. Spans are [start, end) token
// offset pairs into the submitted tokens.
type readResponse struct {
	ShortAnswer *[2]int `json:"short_answer,omitempty"`
	LongAnswer  *[2]int `json:"long_answer,omitempty"`
	Confidence  float64 `json:"confidence"`
	NoAnswer    bool    `json:"no_answer"`
}

// RemoteReader delegates reading to an external model service over HTTP.
// The service owns the model; this adapter owns encoding, decoding, and
// span validation.
type RemoteReader struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewRemoteReader creates a reader calling the service at baseURL. A nil
// logger falls back to a no-op logger.
func NewRemoteReader(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteReader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ReadDocument posts the question and document tokens to the service and
// decodes the span it returns. Spans that fall outside the document are
// dropped rather than passed downstream.
func (r *RemoteReader) ReadDocument(ctx context.Context, question string, doc *models.Document) (*SpanResult, error) {
	payload, err := json.Marshal(readRequest{Question: question, Tokens: doc.Tokens})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal read request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/read", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create read request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call read endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("read endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded readResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode read response: %w", err)
	}

	if decoded.NoAnswer {
		return &SpanResult{NoAnswer: true}, nil
	}

	result := &SpanResult{
		ShortAnswer: r.toSpan(doc, decoded.ShortAnswer),
		LongAnswer:  r.toSpan(doc, decoded.LongAnswer),
		Confidence:  decoded.Confidence,
	}
	if result.ShortAnswer == nil && result.LongAnswer == nil {
		result.NoAnswer = true
	}
	return result, nil
}

// toSpan converts an offset pair into a validated span, or nil.
func (r *RemoteReader) toSpan(doc *models.Document, pair *[2]int) *models.TokenSpan {
	if pair == nil {
		return nil
	}
	span := &models.TokenSpan{DocumentID: doc.ID, StartToken: pair[0], EndToken: pair[1]}
	if !span.Valid() || span.EndToken > len(doc.Tokens) {
		r.logger.Warn("model service returned out-of-range span",
			zap.String("document_id", doc.ID),
			zap.Int("start_token", pair[0]),
			zap.Int("end_token", pair[1]),
			zap.Int("document_tokens", len(doc.Tokens)))
		return nil
	}
	return span
}

// Name identifies the reader in reports.
func (r *RemoteReader) Name() string { return "remote" }

// Close releases idle connections.
func (r *RemoteReader) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
