package extractor

import "strings"

// Special token IDs shared with the word-level QA model export.
const (
	clsTokenID int64 = 101
	sepTokenID int64 = 102
)

// Encoding is a fixed-length model input plus the mapping from input
// positions back to document token offsets.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
	// DocStart is the input position of the first document token; DocLen is
	// how many document tokens fit. Input position DocStart+i corresponds to
	// document token i.
	DocStart int
	DocLen   int
}

// Tokenizer encodes a question/document pair for BERT-style models:
// [CLS] question [SEP] document [SEP], padded to a fixed length.
type Tokenizer interface {
	Tokenize(question string, docTokens []string, maxTokens int) *Encoding
}

// WordTokenizer is a word-split tokenizer with hash-based token IDs, matched
// to models exported with a word-level vocabulary.
type WordTokenizer struct{}

// Tokenize encodes the pair into exactly maxTokens positions. The question
// takes at most half the input so the document always has room; document
// tokens that do not fit are dropped, which bounds where answers can be
// found to the encoded prefix.
func (t *WordTokenizer) Tokenize(question string, docTokens []string, maxTokens int) *Encoding {
	if maxTokens <= 0 {
		maxTokens = 384
	}
	enc := &Encoding{
		InputIDs:      make([]int64, maxTokens),
		AttentionMask: make([]int64, maxTokens),
		TokenTypeIDs:  make([]int64, maxTokens),
	}

	pos := 0
	put := func(id, typeID int64) {
		if pos >= maxTokens {
			return
		}
		enc.InputIDs[pos] = id
		enc.AttentionMask[pos] = 1
		enc.TokenTypeIDs[pos] = typeID
		pos++
	}

	put(clsTokenID, 0)
	qBudget := maxTokens/2 - 2
	for _, w := range strings.Fields(question) {
		if qBudget <= 0 {
			break
		}
		put(wordID(w), 0)
		qBudget--
	}
	put(sepTokenID, 0)

	enc.DocStart = pos
	for _, w := range docTokens {
		if pos >= maxTokens-1 {
			break
		}
		put(wordID(w), 1)
	}
	enc.DocLen = pos - enc.DocStart
	put(sepTokenID, 1)
	return enc
}

// wordID returns a deterministic hash-based token ID, offset past the
// special IDs so no word collides with [CLS] or [SEP].
func wordID(w string) int64 {
	h := 0
	for _, c := range strings.ToLower(w) {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return int64(h%30000) + 1000
}
