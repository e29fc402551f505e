package search

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/model"
)

func seededDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "aicb.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	start := time.Date(2023, 2, 10, 17, 0, 0, 0, time.UTC)
	set := []model.Conversation{
		{
			ID:    "c1",
			Topic: "friends",
			Messages: []model.Message{
				{Timestamp: start, Role: model.RoleOperator, Content: "Hallo, welkom bij de chat"},
				{Timestamp: start.Add(time.Minute), Role: model.RoleUser, Content: "er is ruzie met mijn vriendin"},
				{Timestamp: start.Add(2 * time.Minute), Role: model.RoleUser, Content: "de ruzie duurt al een week"},
			},
			Metadata: model.Metadata{Timestamp: start, Source: "awel_chat"},
		},
		{
			ID:    "c2",
			Topic: "school",
			Messages: []model.Message{
				{Timestamp: start, Role: model.RoleUser, Content: "ik heb stress over school"},
			},
			Metadata: model.Metadata{Timestamp: start.Add(time.Hour), Source: "awel_chat"},
		},
	}
	if err := db.ReplaceAll(set); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func TestSearch_DedupsPerConversation(t *testing.T) {
	db := seededDB(t)

	results, err := Search(db, Options{Query: "ruzie"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 deduped hit, got %d", len(results))
	}
	r := results[0]
	if r.ConversationID != "c1" || r.Topic != "friends" {
		t.Errorf("hit = %+v", r)
	}
	if !strings.Contains(r.Snippet, ">>>") {
		t.Errorf("snippet not marked: %q", r.Snippet)
	}
}

func TestSearch_RoleFilter(t *testing.T) {
	db := seededDB(t)

	results, err := Search(db, Options{Query: "stress", Role: "operator"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no operator hits for 'stress', got %+v", results)
	}

	results, err = Search(db, Options{Query: "stress", Role: "user"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ConversationID != "c2" {
		t.Fatalf("user hits = %+v", results)
	}
}

func TestSearch_TopicFilter(t *testing.T) {
	db := seededDB(t)

	results, err := Search(db, Options{Query: "chat OR school", Topic: "school"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ConversationID != "c2" {
		t.Fatalf("topic-filtered hits = %+v", results)
	}
}

func TestMakeSnippet(t *testing.T) {
	got := makeSnippet("aaaa bbbb cccc dddd eeee", "cccc", 5)
	if !strings.Contains(got, ">>>cccc<<<") {
		t.Errorf("snippet = %q", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet ellipses missing: %q", got)
	}
}
