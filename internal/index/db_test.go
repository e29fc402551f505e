package index

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aicb-dev/aicb/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "aicb.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func storedSet() []model.Conversation {
	day1 := time.Date(2023, 2, 10, 17, 22, 0, 0, time.UTC)
	day2 := time.Date(2023, 2, 11, 9, 0, 0, 0, time.UTC)
	return []model.Conversation{
		{
			ID:    "conv-1",
			Topic: "friends",
			Messages: []model.Message{
				{Timestamp: day1, Role: model.RoleOperator, Content: "Hallo!"},
				{Timestamp: day1.Add(4 * time.Minute), Role: model.RoleUser, Content: "hoi\ner is ruzie"},
			},
			Raw:      "raw text one",
			Metadata: model.Metadata{Timestamp: day1, Source: "awel_chat"},
		},
		{
			ID:       "conv-2",
			Topic:    "school",
			Messages: []model.Message{},
			Raw:      "raw text two",
			Metadata: model.Metadata{Timestamp: day2, Source: "awel_chat"},
		},
	}
}

func TestReplaceAllAndReadBack(t *testing.T) {
	db := openTestDB(t)
	want := storedSet()

	if err := db.ReplaceAll(want); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	n, err := db.Count()
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v; want 2", n, err)
	}
	m, err := db.MessageTotal()
	if err != nil || m != 2 {
		t.Fatalf("message total = %d, %v; want 2", m, err)
	}

	got, err := db.ConversationByID("conv-1")
	if err != nil {
		t.Fatalf("get conv-1: %v", err)
	}
	if !reflect.DeepEqual(*got, want[0]) {
		t.Errorf("conv-1 round trip mismatch:\ngot  %+v\nwant %+v", *got, want[0])
	}

	missing, err := db.ConversationByID("nope")
	if err != nil || missing != nil {
		t.Errorf("lookup of unknown id = %+v, %v; want nil, nil", missing, err)
	}
}

func TestReplaceAll_ReplacesPreviousSet(t *testing.T) {
	db := openTestDB(t)
	set := storedSet()

	if err := db.ReplaceAll(set); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := db.ReplaceAll(set[:1]); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	n, _ := db.Count()
	if n != 1 {
		t.Fatalf("count after replace = %d, want 1", n)
	}
	if c, _ := db.ConversationByID("conv-2"); c != nil {
		t.Error("conv-2 should have been replaced away")
	}
}

func TestConversations_OrderAndFilter(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceAll(storedSet()); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	sums, err := db.Conversations("", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Newest first.
	if len(sums) != 2 || sums[0].ID != "conv-2" || sums[1].ID != "conv-1" {
		t.Fatalf("unexpected order: %+v", sums)
	}
	if sums[1].Preview != "Hallo!" || sums[1].MessageCount != 2 {
		t.Errorf("conv-1 summary = %+v", sums[1])
	}

	filtered, err := db.Conversations("friends", 0)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "conv-1" {
		t.Fatalf("topic filter result: %+v", filtered)
	}
}

func TestTopics(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceAll(storedSet()); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	topics, err := db.Topics()
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	want := []TopicCount{{"friends", 1}, {"school", 1}}
	if !reflect.DeepEqual(topics, want) {
		t.Errorf("topics = %+v, want %+v", topics, want)
	}
}

func TestPreview_TruncatesOnRuneBoundary(t *testing.T) {
	c := model.Conversation{
		Messages: []model.Message{
			{Content: strings.Repeat("é", previewLimit+20)},
		},
	}
	got := preview(&c)
	if !utf8.ValidString(got) {
		t.Fatal("preview split a rune mid-sequence")
	}
	if n := utf8.RuneCountInString(got); n != previewLimit {
		t.Errorf("preview length = %d runes, want %d", n, previewLimit)
	}
}

func TestAll_RoundTripsSet(t *testing.T) {
	db := openTestDB(t)
	set := storedSet()
	if err := db.ReplaceAll(set); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	all, err := db.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all returned %d conversations", len(all))
	}
	// Newest first: conv-2 then conv-1.
	if !reflect.DeepEqual(all[0], set[1]) || !reflect.DeepEqual(all[1], set[0]) {
		t.Error("All() did not round-trip the stored set")
	}
}
