//go:build cgo
// +build cgo

package extractor

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/kotae/internal/models"
)

// ONNXReader runs a BERT-style extractive QA model through ONNX Runtime. It
// requires CGO and the onnxruntime shared library.
type ONNXReader struct {
	session   *ort.AdvancedSession
	maxTokens int
	maxAnswer int
	tokenizer Tokenizer
	// Pre-allocated tensors for Run(); we update input data and read outputs.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	startLogitsTensor   *ort.Tensor[float32]
	endLogitsTensor     *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXReader creates an ONNX reader. InitializeEnvironment is called if
// not already done.
func NewONNXReader(modelPath string, maxTokens, maxAnswerTokens int) (*ONNXReader, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	tokenizer := &WordTokenizer{}
	enc := tokenizer.Tokenize("", nil, maxTokens)
	maxTokens = len(enc.InputIDs)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), enc.InputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), enc.AttentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), enc.TokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	startLogitsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), make([]float32, maxTokens))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create start_logits tensor: %w", err)
	}
	endLogitsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), make([]float32, maxTokens))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		startLogitsTensor.Destroy()
		return nil, fmt.Errorf("failed to create end_logits tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"start_logits", "end_logits"},
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor},
		[]ort.ArbitraryTensor{startLogitsTensor, endLogitsTensor},
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		startLogitsTensor.Destroy()
		endLogitsTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXReader{
		session:             session,
		maxTokens:           maxTokens,
		maxAnswer:           maxAnswerTokens,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		startLogitsTensor:   startLogitsTensor,
		endLogitsTensor:     endLogitsTensor,
	}, nil
}

// ReadDocument encodes the question with the document prefix, runs the
// model, and decodes the best span. The no-answer score at [CLS] gates the
// result: a span that does not beat it yields NoAnswer.
func (r *ONNXReader) ReadDocument(ctx context.Context, question string, doc *models.Document) (*SpanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	enc := r.tokenizer.Tokenize(question, doc.Tokens, r.maxTokens)
	copy(r.inputIDsTensor.GetData(), enc.InputIDs)
	copy(r.attentionMaskTensor.GetData(), enc.AttentionMask)
	copy(r.tokenTypeIDsTensor.GetData(), enc.TokenTypeIDs)

	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	startLogits := r.startLogitsTensor.GetData()
	endLogits := r.endLogitsTensor.GetData()

	span, ok := bestSpan(startLogits, endLogits, enc, r.maxAnswer)
	nullScore := float64(startLogits[0]) + float64(endLogits[0])
	if !ok || span.Score <= nullScore {
		return &SpanResult{NoAnswer: true}, nil
	}

	short := &models.TokenSpan{DocumentID: doc.ID, StartToken: span.Start, EndToken: span.End}
	return &SpanResult{
		ShortAnswer: short,
		LongAnswer:  enclosingBlock(doc, span.Start, span.End),
		Confidence:  span.Score - nullScore,
	}, nil
}

// Name identifies the reader in reports.
func (r *ONNXReader) Name() string { return "onnx" }

// Close destroys the session and tensors.
func (r *ONNXReader) Close() error {
	var err error
	if r.session != nil {
		err = r.session.Destroy()
		r.session = nil
	}
	if r.inputIDsTensor != nil {
		_ = r.inputIDsTensor.Destroy()
		r.inputIDsTensor = nil
	}
	if r.attentionMaskTensor != nil {
		_ = r.attentionMaskTensor.Destroy()
		r.attentionMaskTensor = nil
	}
	if r.tokenTypeIDsTensor != nil {
		_ = r.tokenTypeIDsTensor.Destroy()
		r.tokenTypeIDsTensor = nil
	}
	if r.startLogitsTensor != nil {
		_ = r.startLogitsTensor.Destroy()
		r.startLogitsTensor = nil
	}
	if r.endLogitsTensor != nil {
		_ = r.endLogitsTensor.Destroy()
		r.endLogitsTensor = nil
	}
	return err
}
