package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role tags the sender of a message. The free-text path only ever produces
// user or operator; structured records may carry values outside the known
// set, which are kept verbatim rather than rejected.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleExpert   Role = "expert"
)

// Known reports whether the role is one of the anticipated values.
func (r Role) Known() bool {
	switch r {
	case RoleUser, RoleOperator, RoleExpert:
		return true
	}
	return false
}

// Message is a single timestamped utterance. Immutable once built.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
}

// Metadata describes where and when a conversation originated.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Conversation is one ingested chat. Messages keep source order, which is
// not guaranteed chronological; consumers needing that must sort.
type Conversation struct {
	ID       string    `json:"id"`
	Topic    string    `json:"topic"`
	Messages []Message `json:"messages"`
	Raw      string    `json:"raw,omitempty"`
	Metadata Metadata  `json:"metadata"`
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// Duration is the span from first to last message. Zero for conversations
// with fewer than two messages.
func (c *Conversation) Duration() time.Duration {
	if len(c.Messages) < 2 {
		return 0
	}
	return c.Messages[len(c.Messages)-1].Timestamp.Sub(c.Messages[0].Timestamp)
}

// NewConversationID returns a fresh opaque conversation identifier.
func NewConversationID() string {
	return uuid.NewString()
}

// CandidateAnswers maps model-name labels to produced responses for one
// conversation. The label set is open. Two wire shapes are accepted: the
// mapping under a "candidates" object, and the flat form where every key
// except "id" is a candidate.
type CandidateAnswers struct {
	ID         string
	Candidates map[string]string
}

func (c *CandidateAnswers) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Candidates = make(map[string]string, len(raw))
	for k, v := range raw {
		if k == "candidates" && len(v) > 0 && v[0] == '{' {
			var m map[string]string
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("candidates: %w", err)
			}
			for mk, mv := range m {
				c.Candidates[mk] = mv
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("candidate %q: %w", k, err)
		}
		if k == "id" {
			c.ID = s
			continue
		}
		c.Candidates[k] = s
	}
	return nil
}

func (c CandidateAnswers) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(c.Candidates)+1)
	for k, v := range c.Candidates {
		out[k] = v
	}
	out["id"] = c.ID
	return json.Marshal(out)
}
