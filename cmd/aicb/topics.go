package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/index"
)

func topicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List distinct topics with conversation counts",
		Args:  cobra.NoArgs,
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

			topics, err := db.Topics()
			if err != nil {
				return fmt.Errorf("read index: %w", err)
			}
			if len(topics) == 0 {
				fmt.Println("No conversations ingested.")
				return nil
			}
			for _, tc := range topics {
				fmt.Printf("%4d  %s\n", tc.Count, tc.Topic)
			}
			return nil
		},
	}
}
