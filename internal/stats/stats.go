package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/aicb-dev/aicb/internal/model"
)

// Statistics summarizes a loaded conversation set.
type Statistics struct {
	Conversations              int
	Messages                   int
	AvgMessagesPerConversation float64
	// AvgDurationMinutes is the mean first-to-last message span, over
	// conversations with at least two messages.
	AvgDurationMinutes float64
	Topics             []string
	TopicCounts        map[string]int
}

func (s *Statistics) String() string {
	return fmt.Sprintf("conversations=%d messages=%d avg_messages=%.2f avg_duration_min=%.2f topics=%d",
		s.Conversations, s.Messages, s.AvgMessagesPerConversation, s.AvgDurationMinutes, len(s.Topics))
}

// Compute derives descriptive statistics. ok is false for an empty set;
// no zero divisions happen either way.
func Compute(convs []model.Conversation) (s *Statistics, ok bool) {
	if len(convs) == 0 {
		return nil, false
	}

	totalMessages := 0
	counts := make(map[string]int)
	var durationSum float64
	durationN := 0
	for i := range convs {
		c := &convs[i]
		totalMessages += c.MessageCount()
		counts[c.Topic]++
		if c.MessageCount() >= 2 {
			durationSum += c.Duration().Minutes()
			durationN++
		}
	}

	avgDuration := 0.0
	if durationN > 0 {
		avgDuration = durationSum / float64(durationN)
	}

	return &Statistics{
		Conversations:              len(convs),
		Messages:                   totalMessages,
		AvgMessagesPerConversation: round2(float64(totalMessages) / float64(len(convs))),
		AvgDurationMinutes:         round2(avgDuration),
		Topics:                     Topics(convs),
		TopicCounts:                counts,
	}, true
}

// FilterByTopic returns the conversations whose topic matches exactly.
func FilterByTopic(convs []model.Conversation, topic string) []model.Conversation {
	var out []model.Conversation
	for i := range convs {
		if convs[i].Topic == topic {
			out = append(out, convs[i])
		}
	}
	return out
}

// ConversationByID returns the conversation with the given id, or nil.
func ConversationByID(convs []model.Conversation, id string) *model.Conversation {
	for i := range convs {
		if convs[i].ID == id {
			return &convs[i]
		}
	}
	return nil
}

// Topics returns the sorted distinct topics.
func Topics(convs []model.Conversation) []string {
	seen := make(map[string]struct{})
	for i := range convs {
		seen[convs[i].Topic] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
