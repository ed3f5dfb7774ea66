// Package config provides configuration loading and structs for the Kotae harness.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Evaluate  EvaluateConfig  `yaml:"evaluate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the run database and the embedded index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// DatasetConfig holds paths to the prepared evaluation artifacts.
type DatasetConfig struct {
	// CorpusPath is the canonical corpus (one document per JSONL line).
	CorpusPath string `yaml:"corpus_path"`
	// GoldPath is the gold dataset (one question with annotations per JSONL line).
	GoldPath string `yaml:"gold_path"`
	// Watch reloads the gold dataset when the file changes (server mode only).
	Watch bool `yaml:"watch"`
}

// RetrievalConfig holds search engine and retrieval settings.
type RetrievalConfig struct {
	// Engine selects the search backend: "bleve" (embedded) or "meilisearch".
	Engine    string  `yaml:"engine"`
	TopK      int     `yaml:"top_k"`
	TimeoutMS int     `yaml:"timeout_ms"`
	// MaxQPS caps queries per second against the engine. 0 disables the cap.
	MaxQPS      float64           `yaml:"max_qps"`
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig holds remote search service settings.
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// ExtractorConfig holds answer extraction settings.
type ExtractorConfig struct {
	// Reader selects the span strategy: "lexical", "onnx", or "remote".
	Reader string `yaml:"reader"`
	// MaxCandidates bounds how many retrieved documents are read per question.
	MaxCandidates   int     `yaml:"max_candidates"`
	TimeoutMS       int     `yaml:"timeout_ms"`
	MaxAnswerTokens int     `yaml:"max_answer_tokens"`
	WindowTokens    int     `yaml:"window_tokens"`
	MinOverlap      float64 `yaml:"min_overlap"`
	ONNX            ONNXConfig   `yaml:"onnx"`
	Remote          RemoteConfig `yaml:"remote"`
}

// ONNXConfig holds span model settings.
type ONNXConfig struct {
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
}

// RemoteConfig holds remote reader service settings.
type RemoteConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// ScoringConfig holds gold-matching settings.
type ScoringConfig struct {
	// ShortAnswerMaxTokens is the length limit for the over-length gold
	// short answer policy below.
	ShortAnswerMaxTokens int `yaml:"short_answer_max_tokens"`
	// LongShortAnswers controls gold short answers over the limit:
	// "keep" matches them normally, "flag" logs them but still matches,
	// "drop" excludes them from the gold set.
	LongShortAnswers string `yaml:"long_short_answers"`
}

// EvaluateConfig holds run orchestration settings.
type EvaluateConfig struct {
	Concurrency int `yaml:"concurrency"`
	// MaxQuestions evaluates only the first N questions. 0 means all.
	MaxQuestions int `yaml:"max_questions"`
}

// Timeout returns the retrieval timeout as a duration.
func (r *RetrievalConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Timeout returns the extraction timeout as a duration.
func (e *ExtractorConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMS) * time.Millisecond
}

// Timeout returns the remote reader call timeout as a duration.
func (r *RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Load reads and parses the config file at path, expands paths, applies
// defaults, and validates. Returns an error if the file cannot be read,
// parsed, or fails validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Dataset.CorpusPath = expandPath(cfg.Dataset.CorpusPath, configDir)
	cfg.Dataset.GoldPath = expandPath(cfg.Dataset.GoldPath, configDir)
	if cfg.Extractor.ONNX.ModelPath != "" {
		cfg.Extractor.ONNX.ModelPath = expandPath(cfg.Extractor.ONNX.ModelPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enum-valued fields. Bad values here are the only class of
// error that aborts a run before any question is processed.
func (c *Config) Validate() error {
	switch c.Retrieval.Engine {
	case "bleve", "meilisearch":
	default:
		return fmt.Errorf("invalid retrieval engine %q (want bleve or meilisearch)", c.Retrieval.Engine)
	}
	switch c.Extractor.Reader {
	case "lexical", "onnx", "remote":
	default:
		return fmt.Errorf("invalid extractor reader %q (want lexical, onnx, or remote)", c.Extractor.Reader)
	}
	switch c.Scoring.LongShortAnswers {
	case "keep", "flag", "drop":
	default:
		return fmt.Errorf("invalid long_short_answers policy %q (want keep, flag, or drop)", c.Scoring.LongShortAnswers)
	}
	return nil
}

// Save writes the config to path. Used by `kotae init` style tooling and tests.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
