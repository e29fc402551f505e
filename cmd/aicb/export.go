package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/dataset"
	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/stats"
)

func exportCmd() *cobra.Command {
	var format, topic string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the indexed conversations to a JSON or JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := index.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			convs, err := db.All()
			if err != nil {
				return fmt.Errorf("read index: %w", err)
			}
			if topic != "" {
				convs = stats.FilterByTopic(convs, topic)
			}

			if err := dataset.Export(args[0], format, convs); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d conversations to %s\n", len(convs), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: json or jsonl (default by extension)")
	cmd.Flags().StringVar(&topic, "topic", "", "Export only conversations with this topic")

	return cmd
}
