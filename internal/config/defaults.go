package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/db/runs.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kotae/data/indices/bleve"
	}
	if cfg.Retrieval.Engine == "" {
		cfg.Retrieval.Engine = "bleve"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 20
	}
	if cfg.Retrieval.TimeoutMS == 0 {
		cfg.Retrieval.TimeoutMS = 10000
	}
	if cfg.Retrieval.Meilisearch.Host == "" {
		cfg.Retrieval.Meilisearch.Host = "http://localhost:7700"
	}
	if cfg.Retrieval.Meilisearch.Index == "" {
		cfg.Retrieval.Meilisearch.Index = "corpus"
	}
	if cfg.Extractor.Reader == "" {
		cfg.Extractor.Reader = "lexical"
	}
	if cfg.Extractor.MaxCandidates == 0 {
		cfg.Extractor.MaxCandidates = 5
	}
	if cfg.Extractor.TimeoutMS == 0 {
		cfg.Extractor.TimeoutMS = 30000
	}
	if cfg.Extractor.MaxAnswerTokens == 0 {
		cfg.Extractor.MaxAnswerTokens = 10
	}
	if cfg.Extractor.WindowTokens == 0 {
		cfg.Extractor.WindowTokens = 60
	}
	if cfg.Extractor.MinOverlap == 0 {
		cfg.Extractor.MinOverlap = 0.3
	}
	if cfg.Extractor.ONNX.ModelPath == "" {
		cfg.Extractor.ONNX.ModelPath = "/usr/local/var/kotae/data/models/bert-qa.onnx"
	}
	if cfg.Extractor.ONNX.MaxTokens == 0 {
		cfg.Extractor.ONNX.MaxTokens = 384
	}
	if cfg.Extractor.Remote.BaseURL == "" {
		cfg.Extractor.Remote.BaseURL = "http://localhost:8091"
	}
	if cfg.Extractor.Remote.TimeoutMS == 0 {
		cfg.Extractor.Remote.TimeoutMS = 15000
	}
	// Threshold from the dataset's annotation guidelines: short answers
	// longer than five tokens are usually annotation noise.
	if cfg.Scoring.ShortAnswerMaxTokens == 0 {
		cfg.Scoring.ShortAnswerMaxTokens = 5
	}
	if cfg.Scoring.LongShortAnswers == "" {
		cfg.Scoring.LongShortAnswers = "keep"
	}
	if cfg.Evaluate.Concurrency == 0 {
		cfg.Evaluate.Concurrency = 4
	}
}
