package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/search"
	"github.com/aicb-dev/aicb/internal/tui"
)

func browseCmd() *cobra.Command {
	var topic string
	var limit int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse and filter conversations",
		Long: `Open a two-panel terminal UI: conversation list on the left,
rendered transcript on the right. Typing filters with full-text
search; Enter copies the selected conversation id to the clipboard.`,
		Args: cobra.NoArgs,
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

			return tui.Run(db, search.Options{Topic: topic, Limit: limit})
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Only browse conversations with this topic")
	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum conversations per listing")

	return cmd
}
