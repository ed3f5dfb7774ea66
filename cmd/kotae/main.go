// Package main is the Kotae CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/evaluate"
	"github.com/hyperjump/kotae/internal/extractor"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/runstore"
	"github.com/hyperjump/kotae/internal/scoring"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae evaluate" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for snapshots, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "prepare":
		runPrepare()
	case "index":
		runIndex()
	case "evaluate":
		runEvaluate()
	case "runs":
		runRuns()
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// reorderArgs moves any flags (and their values) that appear after positional
// arguments to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument, so
// "kotae runs show <run-id> --show-config" would otherwise leave
// --show-config unparsed.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runPrepare() {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	full := fs.Bool("full", false, "keep no-answer questions (full-system evaluation)")
	maxExamples := fs.Int("max-examples", 0, "stop after accepting this many records (0 = all)")
	outputFormat := fs.String("output", "text", "output format for the stats: text or json")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae prepare [flags] <raw-dataset.jsonl[.gz]>")
		os.Exit(1)
	}
	rawPath := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	prep := dataset.NewPreparer(dataset.PrepareOptions{
		RetrieverEvalOnly: !*full,
		MaxAnswerTokens:   cfg.Scoring.ShortAnswerMaxTokens,
		MaxExamples:       *maxExamples,
	}, logger)

	stats, err := prep.Run(context.Background(), rawPath, cfg.Dataset.CorpusPath, cfg.Dataset.GoldPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prepare failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("records:          %d   # raw records read\n", stats.Records)
		fmt.Printf("bad_lines:        %d   # unparseable lines skipped\n", stats.BadLines)
		fmt.Printf("no_short_answer:  %d   # dropped: first annotation has no short answer\n", stats.NoShortAnswer)
		fmt.Printf("truncated:        %d   # trimmed to the first short answer\n", stats.Truncated)
		fmt.Printf("unsolvable:       %d   # dropped: answer text absent from document text\n", stats.Unsolvable)
		fmt.Printf("over_length:      %d   # dropped: short answer over the token limit\n", stats.OverLength)
		fmt.Printf("doc_rejected:     %d   # dropped: source document rejected as malformed\n", stats.DocRejected)
		fmt.Println()
		fmt.Printf("Wrote %d documents to %s (%d read, %d rejected)\n",
			stats.Corpus.Out, cfg.Dataset.CorpusPath, stats.Corpus.In, stats.Corpus.Rejected)
		fmt.Printf("Wrote %d questions to %s\n", stats.Questions, cfg.Dataset.GoldPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	engine := fs.String("engine", "", "search backend to build (default: retrieval.engine from config)")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *engine != "" {
		cfg.Retrieval.Engine = *engine
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	corpusPath := cfg.Dataset.CorpusPath
	if fs.NArg() >= 1 {
		corpusPath = fs.Arg(0)
	}

	raw, badLines, err := dataset.ReadCorpus(corpusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read corpus: %v\n", err)
		os.Exit(1)
	}
	if badLines > 0 {
		logger.Warn("corpus has malformed lines",
			zap.Int("skipped", badLines),
			zap.String("path", corpusPath))
	}

	result := corpus.NewNormalizer(logger).Normalize(raw)
	fmt.Printf("Corpus: %d read, %d canonical, %d rejected\n",
		result.Stats.In, result.Stats.Out, result.Stats.Rejected)

	backend, err := newSearchBackend(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open search backend: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	if err := corpus.BuildIndex(context.Background(), backend, result.Documents, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Index build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d document(s) into the %s index\n", len(result.Documents), cfg.Retrieval.Engine)
}

func runEvaluate() {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (per-question progress)")
	name := fs.String("name", "", "label recorded on the run")
	topK := fs.Int("top-k", 0, "candidates per question (0 = retrieval.top_k from config)")
	concurrency := fs.Int("concurrency", 0, "parallel questions (0 = evaluate.concurrency from config)")
	maxQuestions := fs.Int("max-questions", 0, "evaluate only the first N questions (0 = evaluate.max_questions from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	save := fs.Bool("save", false, "persist the report to the run database")
	_ = fs.Parse(os.Args[2:])

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *topK > 0 {
		cfg.Retrieval.TopK = *topK
	}
	if *concurrency > 0 {
		cfg.Evaluate.Concurrency = *concurrency
	}
	if *maxQuestions > 0 {
		cfg.Evaluate.MaxQuestions = *maxQuestions
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	runner := newRunner(components, cfg, evaluate.RunnerOptions{
		Engine:       cfg.Retrieval.Engine,
		Reader:       components.Reader.Name(),
		TopK:         cfg.Retrieval.TopK,
		Concurrency:  cfg.Evaluate.Concurrency,
		MaxQuestions: cfg.Evaluate.MaxQuestions,
		Name:         *name,
	}, logger)

	// Ctrl-C stops the run and reports whatever was scored so far; a second
	// Ctrl-C exits immediately.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("interrupt received, stopping after in-flight questions")
		cancel()
		<-sigChan
		os.Exit(1)
	}()

	report, err := runner.Run(ctx, components.Gold)
	if err != nil {
		logger.Fatal("Evaluation failed", zap.Error(err))
	}

	if *save {
		snapshot, err := yaml.Marshal(cfg)
		if err != nil {
			logger.Warn("failed to snapshot config", zap.Error(err))
		}
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer saveCancel()
		if err := components.Runs.Save(saveCtx, report, string(snapshot)); err != nil {
			logger.Error("failed to save run", zap.String("run_id", report.RunID), zap.Error(err))
		} else {
			logger.Info("run saved", zap.String("run_id", report.RunID))
		}
	}

	if err := cli.WriteReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRuns() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: kotae runs <list|show> [flags]")
		fmt.Println("  kotae runs list             List saved evaluation runs")
		fmt.Println("  kotae runs show <run-id>    Show one saved run in full")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	limit := fs.Int("limit", 20, "number of runs to list")
	offset := fs.Int("offset", 0, "runs to skip before listing")
	showConfig := fs.Bool("show-config", false, "print the config snapshot stored with the run")
	_ = fs.Parse(reorderArgs(os.Args[3:]))

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := runstore.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open run store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	switch sub {
	case "list":
		summaries, err := store.List(ctx, *offset, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteRunList(os.Stdout, summaries, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "show":
		if fs.NArg() < 1 {
			fmt.Println("Usage: kotae runs show [flags] <run-id>")
			os.Exit(1)
		}
		runID := fs.Arg(0)
		run, err := store.Get(ctx, runID)
		if err != nil {
			if errors.Is(err, runstore.ErrRunNotFound) {
				fmt.Fprintf(os.Stderr, "Run not found: %s\n", runID)
			} else {
				fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
			}
			os.Exit(1)
		}
		if format == cli.OutputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(run); err != nil {
				fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if err := cli.WriteReport(os.Stdout, run.Report, cli.OutputText); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		if *showConfig && run.Config != "" {
			fmt.Printf("\nConfig snapshot:\n%s", run.Config)
		}
	default:
		fmt.Printf("Unknown runs subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (evaluation progress, dataset reloads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if cfg.Dataset.Watch {
		gold := components.Gold
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		goldWatch := watcher.NewFileWatcher(cfg.Dataset.GoldPath, func() {
			if err := gold.Reload(); err != nil {
				logger.Error("gold dataset reload failed", zap.Error(err))
				return
			}
			logger.Info("gold dataset reloaded", zap.Int("questions", gold.Len()))
		}, watchOpts...)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := goldWatch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start dataset watcher", zap.Error(err))
		}
		defer goldWatch.Stop()
	}

	eval := &evalService{components: components, cfg: cfg, logger: logger}
	srv := server.NewServer(
		eval,
		components.Corpus,
		components.Gold,
		components.Searcher,
		components.Runs,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// evalService adapts the initialized components to the server's evaluation
// endpoint. Each request gets its own runner sized to its overrides; the
// shared stages behind it are safe for concurrent use.
type evalService struct {
	components *Components
	cfg        *config.Config
	logger     *zap.Logger
}

func (e *evalService) Evaluate(ctx context.Context, overrides server.EvalOverrides) (*models.MetricsReport, error) {
	opts := evaluate.RunnerOptions{
		Engine:       e.cfg.Retrieval.Engine,
		Reader:       e.components.Reader.Name(),
		TopK:         e.cfg.Retrieval.TopK,
		Concurrency:  e.cfg.Evaluate.Concurrency,
		MaxQuestions: e.cfg.Evaluate.MaxQuestions,
		Name:         overrides.Name,
	}
	if overrides.TopK > 0 {
		opts.TopK = overrides.TopK
	}
	if overrides.Concurrency > 0 {
		opts.Concurrency = overrides.Concurrency
	}
	if overrides.MaxQuestions > 0 {
		opts.MaxQuestions = overrides.MaxQuestions
	}
	runner := newRunner(e.components, e.cfg, opts, e.logger)
	return runner.Run(ctx, e.components.Gold)
}

// newRunner wires the pipeline stages for one evaluation run. The retrieval
// client and extractor are thin stateless wrappers, so each run gets fresh
// ones sized to its top_k and timeouts.
func newRunner(c *Components, cfg *config.Config, opts evaluate.RunnerOptions, logger *zap.Logger) *evaluate.Runner {
	client := retrieval.NewClient(c.Searcher, c.Corpus, opts.TopK,
		retrieval.WithTimeout(cfg.Retrieval.Timeout()),
		retrieval.WithRateLimit(cfg.Retrieval.MaxQPS),
		retrieval.WithLogger(logger),
	)
	ex := extractor.New(c.Reader, cfg.Extractor.MaxCandidates,
		extractor.WithTimeout(cfg.Extractor.Timeout()),
		extractor.WithLogger(logger),
	)
	return evaluate.NewRunner(client, ex, c.Scorer, opts, logger)
}

// searchBackend is the engine surface the commands share: queries for
// evaluation, corpus pushes for index builds, and the document count for
// status reporting.
type searchBackend interface {
	retrieval.Searcher
	corpus.Indexer
}

func newSearchBackend(cfg *config.Config) (searchBackend, error) {
	switch cfg.Retrieval.Engine {
	case "bleve":
		return retrieval.NewBleveSearcher(cfg.Storage.BleveIndexPath)
	case "meilisearch":
		m := cfg.Retrieval.Meilisearch
		return retrieval.NewMeiliSearcher(m.Host, m.APIKey, m.Index), nil
	default:
		return nil, fmt.Errorf("unknown retrieval engine %q", cfg.Retrieval.Engine)
	}
}

// Components holds initialized services.
type Components struct {
	Corpus   *corpus.Store
	Gold     *dataset.GoldStore
	Searcher searchBackend
	Reader   extractor.Reader
	Scorer   *scoring.Scorer
	Runs     *runstore.Store
}

func (c *Components) Close() {
	if c.Searcher != nil {
		_ = c.Searcher.Close()
	}
	if c.Reader != nil {
		_ = c.Reader.Close()
	}
	if c.Runs != nil {
		_ = c.Runs.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	raw, badLines, err := dataset.ReadCorpus(cfg.Dataset.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	if badLines > 0 {
		logger.Warn("corpus has malformed lines",
			zap.Int("skipped", badLines),
			zap.String("path", cfg.Dataset.CorpusPath))
	}
	corpusStore := corpus.NewStore(raw)

	gold, err := dataset.OpenGoldStore(cfg.Dataset.GoldPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load gold dataset: %w", err)
	}

	searcher, err := newSearchBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search backend: %w", err)
	}

	var reader extractor.Reader
	switch cfg.Extractor.Reader {
	case "lexical":
		reader = extractor.NewLexicalReader(cfg.Extractor.WindowTokens, cfg.Extractor.MinOverlap, cfg.Extractor.MaxAnswerTokens)
	case "onnx":
		onnxReader, onnxErr := extractor.NewONNXReader(cfg.Extractor.ONNX.ModelPath, cfg.Extractor.ONNX.MaxTokens, cfg.Extractor.MaxAnswerTokens)
		if onnxErr != nil {
			// The harness still works without the model; span quality drops
			// but every question stays scoreable.
			logger.Warn("onnx reader unavailable, falling back to lexical",
				zap.String("model_path", cfg.Extractor.ONNX.ModelPath),
				zap.Error(onnxErr))
			reader = extractor.NewLexicalReader(cfg.Extractor.WindowTokens, cfg.Extractor.MinOverlap, cfg.Extractor.MaxAnswerTokens)
		} else {
			reader = onnxReader
		}
	case "remote":
		reader = extractor.NewRemoteReader(cfg.Extractor.Remote.BaseURL, cfg.Extractor.Remote.Timeout(), logger)
	default:
		return nil, fmt.Errorf("unknown extractor reader %q", cfg.Extractor.Reader)
	}

	scorer := scoring.NewScorer(cfg.Scoring.ShortAnswerMaxTokens, scoring.Policy(cfg.Scoring.LongShortAnswers), logger)

	runs, err := runstore.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	logger.Info("components initialized",
		zap.Int("corpus_documents", corpusStore.Len()),
		zap.Int("gold_questions", gold.Len()),
		zap.String("engine", cfg.Retrieval.Engine),
		zap.String("reader", reader.Name()))

	return &Components{
		Corpus:   corpusStore,
		Gold:     gold,
		Searcher: searcher,
		Reader:   reader,
		Scorer:   scorer,
		Runs:     runs,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - Open-domain QA retrieval and answer evaluation harness

Usage:
  kotae prepare [flags] <raw.jsonl[.gz]>  Build corpus and gold artifacts from the raw dataset
  kotae index [flags] [corpus.jsonl]      Normalize the corpus and build the search index
  kotae evaluate [flags]                  Run retrieve-read-score over the gold dataset
  kotae runs <list|show> [flags]          Inspect saved evaluation runs
  kotae server [flags]                    Start the HTTP API server
  kotae version                           Show version
  kotae help                              Show this help

Prepare Flags:
  --config string       Config file path (default: /usr/local/etc/kotae/config.yaml)
  --full                Keep no-answer questions (default keeps answerable questions only)
  --max-examples int    Stop after accepting this many records (0 = all)
  --output string       Output format for the stats: text or json (default: text)

Index Flags:
  --config string    Config file path
  --engine string    Search backend to build: bleve or meilisearch (default: retrieval.engine from config)

Evaluate Flags:
  --config string        Config file path
  --debug                Enable debug logging (per-question progress)
  --name string          Label recorded on the run
  --top-k int            Candidates per question (0 = retrieval.top_k from config)
  --concurrency int      Parallel questions (0 = evaluate.concurrency from config)
  --max-questions int    Evaluate only the first N questions (0 = evaluate.max_questions from config)
  --output string        Output format: text or json (default: text)
  --save                 Persist the report to the run database

Runs Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)
  --limit int        Runs per page for list (default: 20)
  --offset int       Runs to skip for list (default: 0)
  --show-config      Print the stored config snapshot with show

Server Flags:
  --config string    Config file path
  --debug            Enable debug logging (evaluation progress, dataset reloads, etc.)

Examples:
  kotae prepare v1.0-simplified_nq-dev-all.jsonl.gz
  kotae index
  kotae evaluate --name nightly --save
  kotae evaluate --top-k 5 --max-questions 100 --output json
  kotae runs list
  kotae runs show 3f9c1a2e-8e5c-4c6e-b1a2-0c9d0f4b2a71
  kotae server`)
}
