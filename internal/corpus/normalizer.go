// Package corpus normalizes raw documents into the canonical evaluation
// corpus and holds it in memory for candidate resolution.
package corpus

import (
	"fmt"
	"sort"

	"github.com/hyperjump/kotae/internal/docid"
	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// MalformedDocumentError marks a raw document that cannot enter the corpus.
// Malformed documents are skipped and counted, never fatal to a batch.
type MalformedDocumentError struct {
	ID     string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %q: %s", e.ID, e.Reason)
}

// Stats counts the outcome of one normalization pass.
type Stats struct {
	In       int `json:"in"`
	Out      int `json:"out"`
	Rejected int `json:"rejected"`
}

// Result is the outcome of Normalize: the canonical corpus plus the identity
// mapping annotation spans are rewritten with.
type Result struct {
	// Documents is the canonical corpus, exactly one document per title key,
	// sorted by title key so index builds are deterministic.
	Documents []*models.Document
	// Canonical maps every accepted input document ID (winners and losers
	// alike) to the canonical document ID for its title key.
	Canonical map[string]string
	Stats     Stats
}

// Normalizer deduplicates and canonicalizes raw documents before indexing.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer. logger may be nil.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize collapses raw documents onto one canonical document per title.
// The title key is the case- and whitespace-insensitive canonical title.
// Among duplicates the highest revision wins; equal or absent revisions fall
// back to the lexicographically greatest document ID, so the winner never
// depends on input order. Documents without a title or ID, or with no
// tokens, are malformed: skipped and counted.
func (n *Normalizer) Normalize(raw []*models.Document) *Result {
	res := &Result{
		Canonical: make(map[string]string),
		Stats:     Stats{In: len(raw)},
	}

	winners := make(map[string]*models.Document)
	members := make(map[string][]string) // title key -> accepted input IDs
	for _, doc := range raw {
		if err := validate(doc); err != nil {
			res.Stats.Rejected++
			n.logger.Warn("rejecting malformed document", zap.Error(err))
			continue
		}
		key := docid.CanonicalTitle(doc.Title)
		members[key] = append(members[key], doc.ID)
		cur, ok := winners[key]
		if !ok || wins(doc, cur) {
			winners[key] = doc
		}
	}

	keys := make([]string, 0, len(winners))
	for key := range winners {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		winner := winners[key]
		res.Documents = append(res.Documents, winner)
		for _, id := range members[key] {
			res.Canonical[id] = winner.ID
		}
	}
	res.Stats.Out = len(res.Documents)

	n.logger.Info("corpus normalized",
		zap.Int("in", res.Stats.In),
		zap.Int("out", res.Stats.Out),
		zap.Int("rejected", res.Stats.Rejected),
		zap.Int("duplicates", res.Stats.In-res.Stats.Out-res.Stats.Rejected))
	return res
}

// wins reports whether a replaces b as the canonical document for a title:
// higher revision first, then greater document ID.
func wins(a, b *models.Document) bool {
	if a.Revision != b.Revision {
		return a.Revision > b.Revision
	}
	return a.ID > b.ID
}

func validate(doc *models.Document) error {
	switch {
	case doc.ID == "":
		return &MalformedDocumentError{ID: doc.ID, Reason: "missing id"}
	case docid.CanonicalTitle(doc.Title) == "":
		return &MalformedDocumentError{ID: doc.ID, Reason: "missing title"}
	case len(doc.Tokens) == 0:
		return &MalformedDocumentError{ID: doc.ID, Reason: "no tokens"}
	}
	return nil
}
