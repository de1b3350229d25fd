// Package main is the Chishiki CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/cli"
	"github.com/hyperjump/chishiki/internal/config"
	"github.com/hyperjump/chishiki/internal/engine"
	"github.com/hyperjump/chishiki/internal/server"
	"github.com/hyperjump/chishiki/internal/watcher"
	"github.com/hyperjump/chishiki/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/chishiki/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence so a dev checkout uses its own
// config. Returns the config and the path that was actually loaded.
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
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "search":
		runSearch()
	case "expand":
		runExpand()
	case "paths":
		runPaths()
	case "suggest":
		runSuggest()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("chishiki version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: chishiki <command> [flags]

Commands:
  server    Start the HTTP API server (with ingest drop-dir watching)
  ingest    Ingest JSONL record files
  search    Search the knowledge store (plain, diversity, fusion, keyword, hybrid)
  expand    Expand a concept through the relationship graph
  paths     Enumerate directed paths between two concepts
  suggest   Suggest concepts related to a set of seed concepts
  stats     Show store and graph statistics
  version   Print version

Run "chishiki <command> -h" for command flags.
`)
}

// openEngine loads config, builds a logger, and opens the engine. It is the
// shared bootstrap for every subcommand.
func openEngine(configPath string, debug bool) (*engine.Engine, *config.Config, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))

	e, err := engine.Open(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open engine", zap.Error(err))
	}
	return e, cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	e, cfg, logger := openEngine(*configPath, *debug)
	defer logger.Sync()
	defer e.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchOpts := []watcher.Option{}
		if cfg.Debug || *debug {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.NewWatcher(cfg.Watch.Directories, cfg.Watch.Extensions, func(path string) {
			if err := e.IngestFile(context.Background(), path); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		}, watchOpts...)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(e, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: chishiki ingest [flags] <file.jsonl> [more files...]")
		os.Exit(1)
	}

	e, _, logger := openEngine(*configPath, *debug)
	defer logger.Sync()
	defer e.Close()

	ctx := context.Background()
	for _, path := range fs.Args() {
		if err := e.IngestFile(ctx, path); err != nil {
			logger.Fatal("Ingest failed", zap.String("path", path), zap.Error(err))
		}
		fmt.Printf("Ingested %s\n", path)
	}
}

// buildQuery joins positional args with spaces so multi-word queries work the
// same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that appear after positional arguments to the front
// so flag.Parse sees them; the flag package stops at the first non-flag arg.
func argsReorder(args []string) []string {
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

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	mode := fs.String("mode", "plain", "retrieval mode: plain, diversity, fusion, keyword, or hybrid")
	limit := fs.Int("limit", 0, "number of results (0 = config default)")
	asJSON := fs.Bool("json", false, "print results as JSON")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: chishiki search [flags] <query>")
		os.Exit(1)
	}

	e, _, logger := openEngine(*configPath, false)
	defer logger.Sync()
	defer e.Close()

	ctx := context.Background()
	var out interface{}
	var err error
	switch *mode {
	case "plain":
		out, err = e.Search(ctx, query, *limit)
	case "diversity":
		out, err = e.DiversitySearch(ctx, query, *limit)
	case "fusion":
		out, err = e.Fuse(ctx, query, *limit)
	case "keyword":
		out, err = e.KeywordSearch(ctx, query, *limit)
	case "hybrid":
		out, err = e.Hybrid(ctx, query, *limit)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q; use plain, diversity, fusion, keyword, or hybrid\n", *mode)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal("Search failed", zap.Error(err))
	}
	format := cli.OutputText
	if *asJSON {
		format = cli.OutputJSON
	}
	if err := cli.WriteResults(os.Stdout, out, format); err != nil {
		logger.Fatal("Output failed", zap.Error(err))
	}
}

func runExpand() {
	fs := flag.NewFlagSet("expand", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	depth := fs.Int("depth", 0, "expansion depth (0 = config default)")
	asJSON := fs.Bool("json", false, "print results as JSON")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	name := buildQuery(fs.Args())
	if name == "" {
		fmt.Fprintln(os.Stderr, "Usage: chishiki expand [flags] <concept>")
		os.Exit(1)
	}

	e, _, logger := openEngine(*configPath, false)
	defer logger.Sync()
	defer e.Close()

	expansion := e.ExpandConcept(name, *depth)
	if *asJSON {
		printJSON(expansion, true)
		return
	}
	cli.WriteExpansion(os.Stdout, expansion)
}

func runPaths() {
	fs := flag.NewFlagSet("paths", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	source := fs.String("from", "", "source concept")
	target := fs.String("to", "", "target concept")
	maxLength := fs.Int("max-length", 0, "maximum path length in edges (0 = config default)")
	_ = fs.Parse(os.Args[2:])

	if *source == "" || *target == "" {
		fmt.Fprintln(os.Stderr, "Usage: chishiki paths -from <concept> -to <concept> [-max-length N]")
		os.Exit(1)
	}

	e, _, logger := openEngine(*configPath, false)
	defer logger.Sync()
	defer e.Close()

	paths := e.FindPaths(*source, *target, *maxLength)
	if len(paths) == 0 {
		fmt.Printf("No paths from %q to %q\n", *source, *target)
		return
	}
	for _, path := range paths {
		fmt.Println(strings.Join(path, " -> "))
	}
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 10, "number of suggestions")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: chishiki suggest [flags] <concept> [more concepts...]")
		os.Exit(1)
	}

	e, _, logger := openEngine(*configPath, false)
	defer logger.Sync()
	defer e.Close()

	cli.WriteSuggestions(os.Stdout, e.SuggestRelated(fs.Args(), *limit))
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	asJSON := fs.Bool("json", false, "print stats as JSON")
	_ = fs.Parse(os.Args[2:])

	e, _, logger := openEngine(*configPath, false)
	defer logger.Sync()
	defer e.Close()

	stats, err := e.Stats(context.Background())
	if err != nil {
		logger.Fatal("Stats failed", zap.Error(err))
	}
	if *asJSON {
		printJSON(stats, true)
		return
	}
	fmt.Printf("Chunks:       %d\n", stats.Chunks)
	fmt.Printf("Sources:      %s\n", strings.Join(stats.Sources, ", "))
	fmt.Printf("Keyword docs: %d\n", stats.KeywordDocs)
	fmt.Printf("Concepts:     %d\n", stats.Graph.Nodes)
	fmt.Printf("Edges:        %d\n", stats.Graph.Edges)
	fmt.Printf("Density:      %.4f\n", stats.Graph.Density)
	fmt.Printf("Communities:  %d\n", stats.Communities)
	if len(stats.Graph.TopConcepts) > 0 {
		fmt.Println("Top concepts:")
		for _, c := range stats.Graph.TopConcepts {
			fmt.Printf("  %-38s %d\n", c.Name, c.Mentions)
		}
	}
}

func printJSON(v interface{}, indent bool) {
	enc := json.NewEncoder(os.Stdout)
	if indent {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
