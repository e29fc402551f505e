package transcript

import (
	"errors"
	"testing"
	"time"

	"github.com/aicb-dev/aicb/internal/model"
)

func testParser() *Parser {
	return NewParser(Config{
		OperatorAliases: []string{"Awel", "Awel wachtrij"},
		DefaultTopic:    "Conflict with friends",
		Source:          "awel_chat",
	})
}

func TestParse_BasicTranscript(t *testing.T) {
	text := "Date/time: 10.02.2023, 17:22 - 17:43\n\n17:22 Awel wachtrij: Hallo!\n17:26 Anna: hoi"

	conv, err := testParser().Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2023, 2, 10, 17, 22, 0, 0, time.UTC)
	if !conv.Metadata.Timestamp.Equal(wantStart) {
		t.Errorf("metadata timestamp = %v, want %v", conv.Metadata.Timestamp, wantStart)
	}
	if conv.Metadata.Source != "awel_chat" {
		t.Errorf("source = %q, want awel_chat", conv.Metadata.Source)
	}
	if conv.Topic != "Conflict with friends" {
		t.Errorf("topic = %q", conv.Topic)
	}
	if conv.ID == "" {
		t.Error("expected a generated conversation ID")
	}
	if conv.Raw != text {
		t.Error("raw text not retained")
	}

	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	m0, m1 := conv.Messages[0], conv.Messages[1]
	if m0.Role != model.RoleOperator || m0.Content != "Hallo!" {
		t.Errorf("msg[0] = %s %q, want operator 'Hallo!'", m0.Role, m0.Content)
	}
	if !m0.Timestamp.Equal(wantStart) {
		t.Errorf("msg[0] timestamp = %v, want %v", m0.Timestamp, wantStart)
	}
	if m1.Role != model.RoleUser || m1.Content != "hoi" {
		t.Errorf("msg[1] = %s %q, want user 'hoi'", m1.Role, m1.Content)
	}
	if want := time.Date(2023, 2, 10, 17, 26, 0, 0, time.UTC); !m1.Timestamp.Equal(want) {
		t.Errorf("msg[1] timestamp = %v, want %v", m1.Timestamp, want)
	}
}

func TestParse_MultiLineContent(t *testing.T) {
	text := "Date/time: 01.03.2023, 20:00 - 20:30\n\n" +
		"20:01 Jo: er is al een week ruzie\nen het wordt alleen maar erger\n\n" +
		"20:05 Awel: Dag Jo, welkom bij awel!"

	conv, err := testParser().Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}

	want := "er is al een week ruzie\nen het wordt alleen maar erger"
	if conv.Messages[0].Content != want {
		t.Errorf("folded content = %q, want %q", conv.Messages[0].Content, want)
	}
	if conv.Messages[1].Role != model.RoleOperator {
		t.Errorf("msg[1] role = %s, want operator", conv.Messages[1].Role)
	}
}

func TestParse_MissingHeader(t *testing.T) {
	for _, text := range []string{
		"",
		"17:22 Awel: Hallo!",
		"Datum: 10.02.2023, 17:22 - 17:43\n17:22 Awel: hoi",
	} {
		_, err := testParser().Parse(text)
		if !errors.Is(err, ErrMalformedTranscript) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedTranscript", text, err)
		}
	}
}

func TestParse_HeaderOnlyYieldsEmptyConversation(t *testing.T) {
	conv, err := testParser().Parse("Date/time: 10.02.2023, 17:22 - 17:43\n\nsome preamble without messages")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(conv.Messages))
	}
	// An empty message list must serialize as [], not null.
	if conv.Messages == nil {
		t.Error("Messages is nil, want empty non-nil slice")
	}
}

func TestParse_MessagesShareHeaderDate(t *testing.T) {
	text := "Date/time: 31.12.2023, 23:50 - 00:10\n\n23:55 Sam: hoi\n00:05 Awel: dag Sam"

	conv, err := testParser().Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Midnight crossing is not resolved: both messages keep the header date.
	for i, m := range conv.Messages {
		if m.Timestamp.Year() != 2023 || m.Timestamp.Month() != 12 || m.Timestamp.Day() != 31 {
			t.Errorf("msg[%d] date = %v, want 2023-12-31", i, m.Timestamp)
		}
	}
}

func TestParse_ContentTrimmed(t *testing.T) {
	conv, err := testParser().Parse("Date/time: 10.02.2023, 17:22 - 17:43\n\n17:22 Awel:   Hallo!   \n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Content != "Hallo!" {
		t.Fatalf("messages = %+v, want one trimmed 'Hallo!'", conv.Messages)
	}
}

func TestParse_BlankContentLineDropped(t *testing.T) {
	// A message-start line with nothing after the sender colon carries no
	// content and must not become a message.
	conv, err := testParser().Parse("Date/time: 10.02.2023, 17:22 - 17:43\n\n17:22 Anna:   \n17:24 Awel: Hallo!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Content != "Hallo!" {
		t.Fatalf("messages = %+v, want only 'Hallo!'", conv.Messages)
	}
}

func TestParse_InvalidMessageClock(t *testing.T) {
	_, err := testParser().Parse("Date/time: 10.02.2023, 17:22 - 17:43\n\n99:99 Awel: hoi")
	if !errors.Is(err, ErrMalformedTranscript) {
		t.Errorf("error = %v, want ErrMalformedTranscript", err)
	}
}

func TestClassifyRole_ConfiguredAliases(t *testing.T) {
	p := NewParser(Config{OperatorAliases: []string{"Helpline", "Helpline queue"}})

	cases := []struct {
		sender string
		want   model.Role
	}{
		{"Helpline", model.RoleOperator},
		{"Helpline queue", model.RoleOperator},
		{"  Helpline  ", model.RoleOperator},
		{"Awel", model.RoleUser}, // not in this parser's alias set
		{"Anna", model.RoleUser},
		{"*****", model.RoleUser},
	}
	for _, c := range cases {
		if got := p.classifyRole(c.sender); got != c.want {
			t.Errorf("classifyRole(%q) = %s, want %s", c.sender, got, c.want)
		}
	}
}

func TestParse_TopicClassifierHook(t *testing.T) {
	p := NewParser(Config{
		DefaultTopic:  "placeholder",
		ClassifyTopic: func(raw string) string { return "bullying" },
	})
	conv, err := p.Parse("Date/time: 10.02.2023, 17:22 - 17:43\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Topic != "bullying" {
		t.Errorf("topic = %q, want classifier output", conv.Topic)
	}
}
