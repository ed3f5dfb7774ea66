//go:build !cgo
// +build !cgo

package extractor

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

var errONNXRequiresCGO = errors.New("ONNX reader requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXReader stub type when built without CGO (see onnx.go for the real
// implementation).
type ONNXReader struct{}

// NewONNXReader returns an error when built without CGO (ONNX not available).
func NewONNXReader(_ string, _, _ int) (*ONNXReader, error) {
	return nil, errONNXRequiresCGO
}

// ReadDocument is unreachable; the constructor never returns a reader.
func (r *ONNXReader) ReadDocument(_ context.Context, _ string, _ *models.Document) (*SpanResult, error) {
	return nil, errONNXRequiresCGO
}

// Name identifies the reader in reports.
func (r *ONNXReader) Name() string { return "onnx" }

// Close is a no-op.
func (r *ONNXReader) Close() error { return nil }
