package dataset

import (
	"sync"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// GoldStore serves gold annotations to the evaluator. It is read-only
// between reloads; Reload swaps the whole snapshot atomically so a running
// evaluation keeps the questions it started with.
type GoldStore struct {
	path   string
	logger *zap.Logger

	mu          sync.RWMutex
	questions   []models.Question
	annotations map[string][]models.Annotation
}

// OpenGoldStore loads the gold artifact at path. A missing or unreadable
// file is an error: without gold data there is nothing to evaluate.
func OpenGoldStore(path string, logger *zap.Logger) (*GoldStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &GoldStore{path: path, logger: logger}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload re-reads the gold artifact and swaps it in. On error the previous
// snapshot stays in place.
func (g *GoldStore) Reload() error {
	questions, annotations, badLines, err := ReadGold(g.path)
	if err != nil {
		return err
	}
	if badLines > 0 {
		g.logger.Warn("skipped unparsable gold lines", zap.Int("lines", badLines))
	}

	g.mu.Lock()
	g.questions = questions
	g.annotations = annotations
	g.mu.Unlock()

	g.logger.Info("gold dataset loaded",
		zap.String("path", g.path),
		zap.Int("questions", len(questions)))
	return nil
}

// Questions returns the current question snapshot. Callers must not modify it.
func (g *GoldStore) Questions() []models.Question {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.questions
}

// Annotations returns the annotations for a question; may be empty.
func (g *GoldStore) Annotations(questionID string) []models.Annotation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.annotations[questionID]
}

// Len returns the number of questions.
func (g *GoldStore) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.questions)
}
