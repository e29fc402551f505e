package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/index"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, DB, FTS5, and show counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  Transcript column: %q\n", cfg.TranscriptColumn)
			fmt.Printf("  Operator aliases:  %v\n", cfg.OperatorAliases)
			fmt.Printf("  Default topic:     %q\n", cfg.DefaultTopic)
			fmt.Printf("  Source label:      %q\n", cfg.Source)

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'aicb ingest' first)")
				return nil
			}

			db, err := index.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			convCount, err := db.Count()
			if err != nil {
				return fmt.Errorf("count conversations: %w", err)
			}

			msgCount, err := db.MessageTotal()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Conversations: %d\n", convCount)
			fmt.Printf("  Messages:      %d\n", msgCount)

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == msgCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", msgCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}
