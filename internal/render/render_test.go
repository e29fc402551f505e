package render

import (
	"strings"
	"testing"
	"time"

	"github.com/aicb-dev/aicb/internal/model"
)

func testConv() *model.Conversation {
	start := time.Date(2023, 2, 10, 17, 22, 0, 0, time.UTC)
	return &model.Conversation{
		ID:    "conv-1",
		Topic: "friends",
		Messages: []model.Message{
			{Timestamp: start, Role: model.RoleOperator, Content: "Hallo!"},
			{Timestamp: start.Add(4 * time.Minute), Role: model.RoleUser, Content: "hoi, er is ruzie"},
			{Timestamp: start.Add(10 * time.Minute), Role: model.RoleExpert, Content: "probeer erover te praten"},
			{Timestamp: start.Add(12 * time.Minute), Role: model.Role("moderator"), Content: "gesloten"},
		},
		Metadata: model.Metadata{Timestamp: start, Source: "awel_chat"},
	}
}

func TestRender_RoleLabelsAndTimes(t *testing.T) {
	out := Render(testConv(), Options{HitSeq: -1})

	for _, want := range []string{"OPER", "USER", "EXPT", "MODERATOR", "17:22", "17:26", "Hallo!", "  hoi, er is ruzie"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "conv-1") || !strings.Contains(out, "[friends]") {
		t.Error("header missing id or topic")
	}
	// 12 minutes first-to-last
	if !strings.Contains(out, "12 min") {
		t.Error("header missing duration")
	}
}

func TestRender_EmptyConversation(t *testing.T) {
	conv := testConv()
	conv.Messages = nil
	out := Render(conv, Options{HitSeq: -1})
	if !strings.Contains(out, "(empty conversation)") {
		t.Errorf("output = %q", out)
	}
}

func TestRender_HitWindow(t *testing.T) {
	out, hit := render(testConv(), Options{HitSeq: 2, Context: 1})
	if hit < 0 {
		t.Fatal("expected a hit line")
	}
	if !strings.Contains(out, "(1 messages before)") {
		t.Error("missing before marker")
	}
	if strings.Contains(out, "Hallo!") {
		t.Error("message outside context window was rendered")
	}
	if !strings.Contains(out, ">> EXPT") {
		t.Error("hit message not highlighted")
	}
}

func TestRender_KeywordHighlight(t *testing.T) {
	out := Render(testConv(), Options{HitSeq: -1, Query: "ruzie"})
	if !strings.Contains(out, colorBoldRed+"ruzie"+colorReset) {
		t.Error("query term not highlighted")
	}
}

func TestWrapLine(t *testing.T) {
	lines := wrapLine("abcdefghij", 4)
	if len(lines) != 3 || lines[0] != "abcd" || lines[2] != "ij" {
		t.Errorf("wrapped = %q", lines)
	}

	// ANSI escapes take no visible width.
	lines = wrapLine(colorDim+"abcd"+colorReset, 4)
	if len(lines) != 1 {
		t.Errorf("ANSI-wrapped = %q", lines)
	}
}
