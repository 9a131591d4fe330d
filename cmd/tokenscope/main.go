// TokenScope entry point.
//
// Usage:
//
//	tokenscope compare "The quick brown fox"       # compare default tokenizers
//	tokenscope compare -file doc.txt -o report.xlsx
//	tokenscope compare -tokenizers mock_whitespace,mock_char -mock "hello"
//	tokenscope tokenizers                           # list registered backends
//	tokenscope version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quackverse/tokenscope"
	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/export"
	"github.com/quackverse/tokenscope/internal/metrics"
	"github.com/quackverse/tokenscope/types"
)

// Version information (injected at build time).
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compare":
		runCompare(os.Args[2:])
	case "tokenizers":
		runTokenizers(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	tokenizers := fs.String("tokenizers", "", "Comma-separated tokenizer names (config default when empty)")
	file := fs.String("file", "", "Read input text from file")
	mock := fs.Bool("mock", false, "Use deterministic mock backends (no network, no model loading)")
	review := fs.Bool("review", false, "Request LLM commentary")
	out := fs.String("o", "", "Export destination (format from config output_format)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *mock {
		cfg.UseMockTokenizers = true
	}
	if *review {
		cfg.EnableReview = true
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	text, err := readInput(fs.Args(), *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}

	var names []string
	if *tokenizers != "" {
		for _, name := range strings.Split(*tokenizers, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	}

	collector := metrics.NewCollector("tokenscope", prometheus.DefaultRegisterer, logger)
	scope, err := tokenscope.New(
		tokenscope.WithConfig(cfg),
		tokenscope.WithLogger(logger),
		tokenscope.WithCollector(collector),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := scope.Compare(ctx, text, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Comparison failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(report)

	if *out != "" {
		exporter, err := export.ForFormat(cfg.OutputFormat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		path, err := exporter.Write(report, *out)
		collector.ObserveExport(exporter.Format(), exportStatus(err))
		if err != nil {
			// The report stayed valid; only the export failed.
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", path)
	}
}

func runTokenizers(args []string) {
	fs := flag.NewFlagSet("tokenizers", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	scope, err := tokenscope.New(tokenscope.WithConfig(cfg), tokenscope.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	names := scope.Registry().Names()
	fmt.Println("Registered tokenizer backends:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}

func loadConfig(path string) *config.Config {
	loader := config.NewLoader().WithValidator(config.Validate)
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// readInput takes the input document from the positional argument or
// from a file; the two are mutually exclusive, argument wins.
func readInput(args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no input: pass text as an argument or use -file")
}

// printSummary renders a human-readable preview; the authoritative
// artifact is the exported report.
func printSummary(report *types.ComparisonReport) {
	fmt.Printf("Input digest: %s\n\n", report.InputDigest)
	for _, name := range report.Order {
		res := report.Results[name]
		fmt.Printf("%-18s %-6s tokens=%-6d elapsed=%.2fms", name, res.Status(), res.TokenCount, res.ElapsedMS)
		if m, ok := report.Metrics[name]; ok {
			fmt.Printf(" avg_len=%.2f distinct=%.2f", m.AvgTokenLength, m.DistinctTokenRatio)
		}
		if msg := res.StatusMessage(); msg != "" {
			fmt.Printf("  (%s)", msg)
		}
		fmt.Println()

		preview := report.DisplayTokens(name)
		if len(preview) > 0 {
			texts := make([]string, len(preview))
			for i, tok := range preview {
				texts[i] = fmt.Sprintf("%q", tok.Text)
			}
			fmt.Printf("    %s\n", strings.Join(texts, " "))
		}
	}

	if len(report.Pairwise) > 0 {
		fmt.Println("\nPairwise:")
		for _, p := range report.Pairwise {
			recon := "n/a"
			if p.ReconstructionEditDistance != nil {
				recon = fmt.Sprintf("%.4f", *p.ReconstructionEditDistance)
			}
			fmt.Printf("  %s vs %s: boundary=%.4f delta=%d recon=%s\n",
				p.AdapterA, p.AdapterB, p.BoundaryAlignmentScore, p.TokenCountDelta, recon)
		}
	}

	if len(report.Ranking) > 0 {
		fmt.Printf("\nRanking (most compact first): %s\n", strings.Join(report.Ranking, " > "))
	}

	if report.Commentary != "" {
		fmt.Printf("\nCommentary:\n%s\n", report.Commentary)
	} else if report.CommentaryUnavailable {
		fmt.Printf("\nCommentary unavailable: %s\n", report.CommentaryFailureCause)
	}
}

func exportStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func printVersion() {
	fmt.Printf("TokenScope %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
}

func printUsage() {
	fmt.Println(`TokenScope - tokenizer comparison and scoring

Usage:
  tokenscope compare [flags] <text>   Compare tokenizers over one input
  tokenscope tokenizers               List registered backends
  tokenscope version                  Show version information

Compare flags:
  -config path        Config file path
  -tokenizers a,b     Tokenizer selection (ordered)
  -file path          Read input from file
  -mock               Substitute deterministic mock backends
  -review             Request LLM commentary
  -o path             Export the report (format from output_format)`)
}
