package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/stats"
)

func statsCmd() *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show descriptive statistics over the indexed conversations",
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

			convs, err := db.All()
			if err != nil {
				return fmt.Errorf("read index: %w", err)
			}
			if topic != "" {
				convs = stats.FilterByTopic(convs, topic)
			}

			s, ok := stats.Compute(convs)
			if !ok {
				fmt.Println("No conversations ingested.")
				return nil
			}

			fmt.Printf("Conversations:        %d\n", s.Conversations)
			fmt.Printf("Messages:             %d\n", s.Messages)
			fmt.Printf("Avg messages/conv:    %.2f\n", s.AvgMessagesPerConversation)
			fmt.Printf("Avg duration:         %.2f min\n", s.AvgDurationMinutes)
			fmt.Printf("Topics:               %d\n", len(s.Topics))
			for _, t := range sortedByCount(s.TopicCounts) {
				fmt.Printf("  %4d  %s\n", s.TopicCounts[t], t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Restrict statistics to one topic")

	return cmd
}

// sortedByCount orders topics by descending count, then alphabetically.
func sortedByCount(counts map[string]int) []string {
	topics := make([]string, 0, len(counts))
	for t := range counts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	return topics
}
