package corpus

import (
	"github.com/hyperjump/kotae/internal/docid"
	"github.com/hyperjump/kotae/internal/models"
)

// Store holds the canonical corpus in memory, keyed by document ID and by
// canonical title. Read-only after construction, so it is safe for
// concurrent use by evaluation workers.
type Store struct {
	byID    map[string]*models.Document
	byTitle map[string]*models.Document
	docs    []*models.Document
}

// NewStore builds a store over an already-canonical corpus (one document per
// title key, as produced by Normalize).
func NewStore(docs []*models.Document) *Store {
	s := &Store{
		byID:    make(map[string]*models.Document, len(docs)),
		byTitle: make(map[string]*models.Document, len(docs)),
		docs:    docs,
	}
	for _, d := range docs {
		s.byID[d.ID] = d
		s.byTitle[docid.CanonicalTitle(d.Title)] = d
	}
	return s
}

// Get returns the document with the given ID, or nil.
func (s *Store) Get(id string) *models.Document {
	return s.byID[id]
}

// GetByTitle returns the canonical document for a title, or nil.
func (s *Store) GetByTitle(title string) *models.Document {
	return s.byTitle[docid.CanonicalTitle(title)]
}

// Len returns the number of canonical documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Documents returns the corpus in its stable (title key) order.
func (s *Store) Documents() []*models.Document {
	return s.docs
}
