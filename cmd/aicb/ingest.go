package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aicb-dev/aicb/internal/config"
	"github.com/aicb-dev/aicb/internal/dataset"
	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/model"
	"github.com/aicb-dev/aicb/internal/transcript"
)

func ingestCmd() *cobra.Command {
	var column, source, format string
	var strict bool
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Parse a CSV transcript export or JSON/JSONL records into the local index",
		Long: `Ingest conversation data and index it for show/search/browse/stats.

CSV input: one column holds a whole free-text transcript per row; each row
is parsed into a structured conversation. JSON/JSONL input (file or
directory) is loaded as already-structured records. Malformed rows or
records are logged and skipped unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("strict") {
				cfg.Strict = strict
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if column != "" {
				cfg.TranscriptColumn = column
			}
			if source != "" {
				cfg.Source = source
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			path := args[0]
			convs, total, err := loadConversations(path, format, cfg, logger)
			if err != nil {
				return err
			}

			db, err := index.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			if err := db.ReplaceAll(convs); err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. parsed=%d skipped=%d indexed=%d\n",
				len(convs), total-len(convs), len(convs))
			return nil
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "CSV column holding transcripts (default from config)")
	cmd.Flags().StringVar(&source, "source", "", "Source label for conversation metadata (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "Input format: csv, json or jsonl (default by extension)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Halt on the first malformed row or record")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel transcript parsers (default from config)")

	return cmd
}

// loadConversations dispatches to the free-text or structured path and
// returns the conversations plus the number of input units seen.
func loadConversations(path, format string, cfg *config.Config, logger *zap.Logger) ([]model.Conversation, int, error) {
	if format == "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			format = "json"
		} else {
			format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		}
	}

	switch format {
	case "csv":
		texts, err := dataset.ReadTranscriptColumn(path, cfg.TranscriptColumn)
		if err != nil {
			return nil, 0, err
		}
		fmt.Fprintf(os.Stderr, "Parsing %d transcripts from %s...\n", len(texts), path)
		batch := &transcript.Batch{
			Parser: transcript.NewParser(transcript.Config{
				OperatorAliases: cfg.OperatorAliases,
				DefaultTopic:    cfg.DefaultTopic,
				Source:          cfg.Source,
			}),
			Strict:  cfg.Strict,
			Workers: cfg.Workers,
			Logger:  logger,
		}
		convs, err := batch.ParseAll(texts)
		return convs, len(texts), err

	case "json", "jsonl":
		loader := &dataset.Loader{Strict: cfg.Strict, Logger: logger}
		convs, err := loader.Load(path)
		return convs, len(convs), err

	default:
		return nil, 0, fmt.Errorf("%w: %q", dataset.ErrUnsupportedFormat, format)
	}
}
