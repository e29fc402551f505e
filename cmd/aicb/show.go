package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/render"
)

func showCmd() *cobra.Command {
	var width, contextN int
	var query string

	cmd := &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print one conversation with colored roles and timestamps",
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

			if width <= 0 {
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					width = w
				}
			}

			out, _, err := render.Conversation(db, args[0], render.Options{
				HitSeq:  -1,
				Context: contextN,
				Width:   width,
				Query:   query,
			})
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (default terminal width)")
	cmd.Flags().IntVar(&contextN, "context", -1, "Messages of context around the hit, -1 for all")
	cmd.Flags().StringVar(&query, "query", "", "Highlight these keywords in the output")

	return cmd
}
