// Command ingest classifies a CSV of payment data, gates the column mapping
// against policy, and streams the file to the collector in independently
// encrypted chunks.
//
// Usage:
//
//	ingest -file data.csv -site example.com -user operator
//	ingest -file data.csv -dry-run
//	ingest -file data.csv -map "0=pan,2=exp_combined" -title "0=Card"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cardstream/ingest/internal/classify"
	"github.com/cardstream/ingest/internal/config"
	"github.com/cardstream/ingest/internal/logging"
	"github.com/cardstream/ingest/internal/pipeline"
	"github.com/cardstream/ingest/internal/policy"
	"github.com/cardstream/ingest/internal/rowsource"
	"github.com/cardstream/ingest/internal/transport"
)

func main() {
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var (
		file    = flag.String("file", "", "CSV file to upload (required)")
		site    = flag.String("site", cfg.Upload.Site, "account site bound into each chunk")
		user    = flag.String("user", cfg.Upload.User, "operator name bound into each chunk")
		mapFlag = flag.String("map", "", "mapping overrides, e.g. \"0=pan,2=exp_combined\"")
		titles  = flag.String("title", "", "export label overrides, e.g. \"0=Card Number\"")
		dryRun  = flag.Bool("dry-run", false, "classify and validate only; upload nothing")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "ingest: -file is required")
		flag.Usage()
		os.Exit(2)
	}
	if !*dryRun && (*site == "" || *user == "") {
		fmt.Fprintln(os.Stderr, "ingest: -site and -user are required for upload (or set UPLOAD_SITE / UPLOAD_USER)")
		os.Exit(2)
	}

	if err := run(cfg, *file, *site, *user, *mapFlag, *titles, *dryRun); err != nil {
		if msg := pipeline.FormatUserError(err); msg != "" {
			fmt.Fprintln(os.Stderr, "ingest: "+msg)
		}
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, file, site, user, mapFlag, titleFlag string, dryRun bool) error {
	src, err := rowsource.OpenCSV(file)
	if err != nil {
		return err
	}
	defer src.Close()

	// Classification pass: bounded sample only.
	sample, err := src.TakeRows(cfg.Upload.SampleRows)
	if err != nil {
		return err
	}
	headers := src.Headers()

	guesses := classify.GuessColumns(headers, sample)
	printGuesses(guesses)
	printPreview(headers, sample)

	mapping := classify.Mapping(guesses)
	if err := applyMappingOverrides(mapping, mapFlag); err != nil {
		return err
	}
	customTitles, err := parseTitles(titleFlag)
	if err != nil {
		return err
	}

	if err := policy.Validate(mapping); err != nil {
		return err
	}
	fmt.Println("mapping accepted by policy")

	if dryRun {
		return nil
	}

	// Upload pass: stream the whole file.
	if err := src.Reopen(); err != nil {
		return err
	}

	sender := transport.NewHTTPSender(cfg.Collector.URL, &http.Client{Timeout: cfg.Collector.Timeout})
	runner := pipeline.NewRunner(sender,
		pipeline.WithBatchSize(cfg.Upload.BatchSize),
		pipeline.WithProgress(func(p pipeline.Progress) {
			slog.Debug("progress", "phase", p.Phase, "chunks", p.ChunksSent, "rows", p.RowsSent, "bytes", p.BytesRead)
		}),
	)

	total, err := runner.Run(context.Background(), src, mapping, customTitles, pipeline.AccountContext{Site: site, User: user})
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %d rows to %s\n", total, cfg.Collector.URL)
	return nil
}

// printGuesses renders the classifier's verdicts, best guesses first.
func printGuesses(guesses []classify.ColumnGuess) {
	fmt.Println("column guesses:")
	for _, g := range guesses {
		header := g.Header
		if header == "" {
			header = fmt.Sprintf("column_%d", g.Index)
		}
		fmt.Printf("  [%d] %-24s %-14s %.2f  %s\n", g.Index, header, g.Kind.Label(), g.Score, strings.Join(g.Reasons, "; "))
	}
}

// printPreview renders a masked sample so the operator can sanity-check the
// data without card numbers reaching the terminal.
func printPreview(headers []string, sample [][]string) {
	if len(sample) == 0 {
		return
	}
	fmt.Println("preview (masked):")
	if len(headers) > 0 {
		fmt.Println("  " + strings.Join(headers, " | "))
	}
	for _, row := range pipeline.PreviewRows(sample) {
		fmt.Println("  " + strings.Join(row, " | "))
	}
}

// applyMappingOverrides applies "idx=kind" pairs on top of classifier output.
// "idx=" (empty kind) or "idx=unknown" removes a column from the mapping.
func applyMappingOverrides(mapping classify.ColumnMapping, spec string) error {
	if spec == "" {
		return nil
	}
	for _, pair := range strings.Split(spec, ",") {
		idx, value, err := splitOverride(pair)
		if err != nil {
			return err
		}
		if value == "" || value == "unknown" {
			delete(mapping, idx)
			continue
		}
		kind := classify.ParseKind(value)
		if kind == classify.Unknown {
			return fmt.Errorf("unknown field kind %q in -map", value)
		}
		mapping[idx] = kind
	}
	return nil
}

// parseTitles parses "idx=label" pairs into custom export titles.
func parseTitles(spec string) (classify.CustomTitles, error) {
	if spec == "" {
		return nil, nil
	}
	titles := make(classify.CustomTitles)
	for _, pair := range strings.Split(spec, ",") {
		idx, value, err := splitOverride(pair)
		if err != nil {
			return nil, err
		}
		titles[idx] = value
	}
	return titles, nil
}

func splitOverride(pair string) (int, string, error) {
	idxStr, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
	if !ok {
		return 0, "", fmt.Errorf("malformed override %q, want idx=value", pair)
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		return 0, "", fmt.Errorf("invalid column index %q in override", idxStr)
	}
	return idx, strings.TrimSpace(value), nil
}
