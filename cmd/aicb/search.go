package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/search"
)

const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[2m"
	ansiCyan  = "\x1b[36m"
	ansiBold  = "\x1b[1m"
)

func searchCmd() *cobra.Command {
	var topic, role string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Full-text search over indexed message content",
		Long: `Search message content with FTS5 syntax (AND, OR, NOT, "phrases").
Each conversation appears once, represented by its best-ranked message.
Output is one result per line; when stdout is not a terminal the
columns are tab separated and uncolored.`,
		Args: cobra.MinimumNArgs(1),
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

			results, err := search.Search(db, search.Options{
				Query: strings.Join(args, " "),
				Topic: topic,
				Role:  role,
				Limit: limit,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results.")
				return nil
			}

			isTTY := term.IsTerminal(int(os.Stdout.Fd()))
			for _, r := range results {
				printResult(r, isTTY)
			}
			fmt.Fprintf(os.Stderr, "%d conversations matched.\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Only match conversations with this topic")
	cmd.Flags().StringVar(&role, "role", "", "Only match messages from this role (user, operator, expert)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of conversations")

	return cmd
}

func printResult(r search.Result, isTTY bool) {
	date := r.StartedAt
	if len(date) >= 10 {
		date = date[:10]
	}
	snippet := strings.ReplaceAll(r.Snippet, "\n", " ")

	if !isTTY {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", r.ConversationID, date, r.Topic, r.Role, snippet)
		return
	}

	// Highlight the >>> <<< hit markers instead of printing them.
	snippet = strings.ReplaceAll(snippet, ">>>", ansiBold)
	snippet = strings.ReplaceAll(snippet, "<<<", ansiReset)

	fmt.Printf("%s%s%s  %s[%s]%s %s\n  %s\n",
		ansiDim, date, ansiReset,
		ansiCyan, r.Topic, ansiReset,
		r.ConversationID,
		snippet)
}
