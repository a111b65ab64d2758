package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"strikewatch/internal/cli"
	"strikewatch/internal/config"
	"strikewatch/internal/dedup"
	"strikewatch/internal/extract"
	"strikewatch/internal/filter"
	"strikewatch/internal/logging"
	"strikewatch/internal/model"
	"strikewatch/internal/review"
	"strikewatch/internal/store"
)

// setup loads the env file, the configuration, and the logger; every
// command starts here after flag parsing.
func setup(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, logger, nil
}

func confirm(prompt string, autoConfirm bool) bool {
	if autoConfirm {
		fmt.Printf("%s [y/N]: y (auto-confirmed)\n", prompt)
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func messageClusterOptions(cfg *config.Config) dedup.MessageClusterOptions {
	return dedup.MessageClusterOptions{
		SimilarityThreshold: cfg.SimilarityThreshold,
		TokenPrefixLen:      cfg.TokenPrefixLen,
		MinTokenLen:         cfg.MinTokenLen,
	}
}

func dedupOptions(cfg *config.Config) dedup.Options {
	return dedup.Options{Matcher: dedup.MatcherOptions{
		DateWindowDays:   cfg.DateWindowDays,
		CoordRadiusKM:    cfg.CoordRadiusKM,
		MinCitySubstrLen: cfg.MinCitySubstrLen,
	}}
}

// filterStep reads scraped messages, applies the keyword filter, and
// collapses cross-channel near-duplicates.
func filterStep(cfg *config.Config, logger zerolog.Logger, rawDir, outPath string) ([]model.RawMessage, error) {
	messages, bad, err := store.ReadJSONLDir[model.RawMessage](rawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw messages: %w", err)
	}

	kept, stats := filter.Apply(messages)
	clustered := dedup.ClusterMessages(kept, messageClusterOptions(cfg))

	logger.Info().
		Int("loaded", stats.Input).
		Int("bad_lines", bad).
		Int("kept", stats.Kept).
		Int("after_dedup", len(clustered)).
		Msg("filter step complete")

	if err := store.WriteJSONL(outPath, clustered); err != nil {
		return nil, fmt.Errorf("write filtered messages: %w", err)
	}
	return clustered, nil
}

// extractStep sends filtered messages through the LLM and persists the
// extracted incidents.
func extractStep(ctx context.Context, cfg *config.Config, logger zerolog.Logger, messages []model.RawMessage, outPath string, autoConfirm bool) ([]model.Incident, error) {
	if err := cfg.RequireGemini(); err != nil {
		return nil, err
	}

	client, err := extract.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ExtractModel)
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	svc := extract.NewService(client, logger, extract.Options{
		BatchSize:     cfg.BatchSize,
		MaxConcurrent: cfg.MaxConcurrent,
	})

	est := svc.Estimate(messages)
	fmt.Printf("extraction estimate: %d messages in %d batches, ~%d input tokens, ~$%.2f\n",
		est.Messages, est.Batches, est.InputTokens, est.TotalUSD)
	if !confirm("Proceed with extraction?", autoConfirm) {
		return nil, errors.New("extraction cancelled")
	}

	incidents, stats, err := svc.Extract(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("extract incidents: %w", err)
	}
	logger.Info().
		Int("batches", stats.Batches).
		Int("failed_batches", stats.FailedBatches).
		Int("incidents", stats.Incidents).
		Int("skipped", stats.Skipped).
		Msg("extract step complete")

	if err := store.WriteJSONL(outPath, incidents); err != nil {
		return nil, fmt.Errorf("write incidents: %w", err)
	}
	return incidents, nil
}

// dedupStep clusters incident records into canonical incidents.
func dedupStep(cfg *config.Config, logger zerolog.Logger, incidents []model.Incident, outPath string) ([]model.CanonicalIncident, error) {
	canonical, stats := dedup.Deduplicate(incidents, dedupOptions(cfg))

	logger.Info().
		Int("input", stats.Input).
		Int("dropped_low", stats.DroppedLow).
		Int("clusters", stats.Clusters).
		Int("weak_clusters", stats.WeakClusters).
		Msg("dedup step complete")

	if err := store.WriteJSONL(outPath, canonical); err != nil {
		return nil, fmt.Errorf("write canonical incidents: %w", err)
	}
	return canonical, nil
}

func runFilter(args []string) int {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	rawDir := fs.String("raw", "", "Directory of scraped *.jsonl files (default from config)")
	out := fs.String("out", "", "Output path for filtered messages (default <extracted>/filtered.jsonl)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := setup(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	dir := *rawDir
	if dir == "" {
		dir = cfg.RawDir
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.ExtractedDir, "filtered.jsonl")
	}

	clustered, err := filterStep(cfg, logger, dir, outPath)
	if err != nil {
		logger.Error().Err(err).Msg("filter failed")
		fmt.Fprintf(os.Stderr, "Filter failed: %v\n", err)
		return 1
	}

	fmt.Printf("filter kept=%d out=%s\n", len(clustered), outPath)
	return 0
}

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	in := fs.String("in", "", "Filtered messages JSONL (default <extracted>/filtered.jsonl)")
	out := fs.String("out", "", "Output path for incidents (default <extracted>/incidents.jsonl)")
	timeout := fs.Duration("timeout", 30*time.Minute, "Command timeout")
	yes := fs.Bool("yes", false, "Skip the cost confirmation prompt")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := setup(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	inPath := *in
	if inPath == "" {
		inPath = filepath.Join(cfg.ExtractedDir, "filtered.jsonl")
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.ExtractedDir, "incidents.jsonl")
	}

	messages, bad, err := store.ReadJSONL[model.RawMessage](inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", inPath, err)
		return 1
	}
	if bad > 0 {
		logger.Warn().Int("bad_lines", bad).Str("path", inPath).Msg("skipped malformed lines")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	incidents, err := extractStep(ctx, cfg, logger, messages, outPath, *yes)
	if err != nil {
		logger.Error().Err(err).Msg("extract failed")
		fmt.Fprintf(os.Stderr, "Extract failed: %v\n", err)
		return 1
	}

	fmt.Printf("extract incidents=%d out=%s\n", len(incidents), outPath)
	return 0
}

func runDedup(args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	in := fs.String("in", "", "Incidents JSONL (default <extracted>/incidents.jsonl)")
	out := fs.String("out", "", "Output path for canonical incidents (default <extracted>/deduped.jsonl)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := setup(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	inPath := *in
	if inPath == "" {
		inPath = filepath.Join(cfg.ExtractedDir, "incidents.jsonl")
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.ExtractedDir, "deduped.jsonl")
	}

	incidents, bad, err := store.ReadJSONL[model.Incident](inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", inPath, err)
		return 1
	}
	if bad > 0 {
		logger.Warn().Int("bad_lines", bad).Str("path", inPath).Msg("skipped malformed lines")
	}

	canonical, err := dedupStep(cfg, logger, incidents, outPath)
	if err != nil {
		logger.Error().Err(err).Msg("dedup failed")
		fmt.Fprintf(os.Stderr, "Dedup failed: %v\n", err)
		return 1
	}

	fmt.Printf("dedup input=%d unique=%d out=%s\n", len(incidents), len(canonical), outPath)
	return 0
}

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	in := fs.String("in", "", "Canonical incidents JSONL (default <extracted>/deduped.jsonl)")
	out := fs.String("out", "", "Output CSV path (default from config)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := setup(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	inPath := *in
	if inPath == "" {
		inPath = filepath.Join(cfg.ExtractedDir, "deduped.jsonl")
	}
	outPath := *out
	if outPath == "" {
		outPath = cfg.OutputCSV
	}

	canonical, bad, err := store.ReadJSONL[model.CanonicalIncident](inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", inPath, err)
		return 1
	}
	if bad > 0 {
		logger.Warn().Int("bad_lines", bad).Str("path", inPath).Msg("skipped malformed lines")
	}

	if err := store.ExportCSV(outPath, canonical); err != nil {
		logger.Error().Err(err).Msg("export failed")
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		return 1
	}

	logger.Info().Int("rows", len(canonical)).Str("path", outPath).Msg("export complete")
	fmt.Printf("export rows=%d out=%s\n", len(canonical), outPath)
	return 0
}

func runProcess(args []string) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", time.Hour, "Command timeout")
	yes := fs.Bool("yes", false, "Skip the cost confirmation prompt")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := setup(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	filteredPath := filepath.Join(cfg.ExtractedDir, "filtered.jsonl")
	incidentsPath := filepath.Join(cfg.ExtractedDir, "incidents.jsonl")
	dedupedPath := filepath.Join(cfg.ExtractedDir, "deduped.jsonl")

	messages, err := filterStep(cfg, logger, cfg.RawDir, filteredPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Filter failed: %v\n", err)
		return 1
	}
	if len(messages) == 0 {
		fmt.Println("process: no messages passed the filter")
		return 0
	}

	incidents, err := extractStep(ctx, cfg, logger, messages, incidentsPath, *yes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extract failed: %v\n", err)
		return 1
	}

	canonical, err := dedupStep(cfg, logger, incidents, dedupedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dedup failed: %v\n", err)
		return 1
	}

	if err := store.ExportCSV(cfg.OutputCSV, canonical); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		return 1
	}

	fmt.Printf("process messages=%d incidents=%d unique=%d csv=%s\n",
		len(messages), len(incidents), len(canonical), cfg.OutputCSV)
	return 0
}

func runReview(args []string) int {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	in := fs.String("in", "", "Canonical incidents JSONL (default <extracted>/deduped.jsonl)")
	out := fs.String("out", "", "Output path for reviewed incidents (default <extracted>/reviewed.jsonl)")
	reportPath := fs.String("report", "", "Review report path (default <data>/review_report.md)")
	timeout := fs.Duration("timeout", 15*time.Minute, "Command timeout")
	yes := fs.Bool("yes", false, "Skip the cost confirmation prompt")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := setup(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := cfg.RequireGemini(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	inPath := *in
	if inPath == "" {
		inPath = filepath.Join(cfg.ExtractedDir, "deduped.jsonl")
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.ExtractedDir, "reviewed.jsonl")
	}
	report := *reportPath
	if report == "" {
		report = filepath.Join(cfg.DataDir, "review_report.md")
	}

	canonical, _, err := store.ReadJSONL[model.CanonicalIncident](inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", inPath, err)
		return 1
	}
	if len(canonical) == 0 {
		fmt.Println("review: nothing to review")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := extract.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ReviewModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
		return 1
	}
	svc := review.NewService(client, logger)

	est, err := svc.Estimate(canonical)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Estimate failed: %v\n", err)
		return 1
	}
	fmt.Printf("review estimate: %d rows, ~%d input tokens, ~$%.2f\n", est.Rows, est.InputTokens, est.TotalUSD)
	if !confirm("Proceed with review?", *yes) {
		fmt.Println("review cancelled")
		return 0
	}

	result, err := svc.Run(ctx, canonical)
	if err != nil {
		logger.Error().Err(err).Msg("review failed")
		fmt.Fprintf(os.Stderr, "Review failed: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(filepath.Dir(report), 0o755); err == nil {
		if writeErr := os.WriteFile(report, []byte(result.Report), 0o644); writeErr != nil {
			logger.Warn().Err(writeErr).Msg("could not write review report")
		}
	}

	reviewed := canonical
	if result.Corrected != nil {
		reviewed = result.Corrected
	}
	if err := store.WriteJSONL(outPath, reviewed); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outPath, err)
		return 1
	}

	fmt.Printf("review rows=%d reviewed=%d out=%s report=%s\n", len(canonical), len(reviewed), outPath, report)
	return 0
}
