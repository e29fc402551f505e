package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/aicb-dev/aicb/internal/index"
)

// Result is one conversation hit: the best-ranked matching message plus
// enough context to list it.
type Result struct {
	ConversationID string
	Seq            int
	StartedAt      string
	Topic          string
	Source         string
	Preview        string
	Snippet        string
	Role           string
	Rank           float64
}

type Options struct {
	Query string
	Topic string // "" = all
	Role  string // "" = all
	Limit int
}

// containsCJK reports whether the string contains a CJK ideograph; FTS5's
// unicode61 tokenizer cannot segment those, so such queries fall back to
// LIKE substring matching.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a marked snippet around the first occurrence of
// query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 {
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search runs a full-text query over indexed message content, returning
// at most one (best-ranked) hit per conversation.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after.
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.ConversationID] {
			continue
		}
		seen[r.ConversationID] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{opts.Query}

	if opts.Topic != "" {
		conditions = append(conditions, "c.topic = ?")
		args = append(args, opts.Topic)
	}
	if opts.Role != "" {
		conditions = append(conditions, "m.role = ?")
		args = append(args, opts.Role)
	}

	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			m.conversation_id,
			m.seq,
			c.started_at,
			c.topic,
			c.source,
			c.preview,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			m.role,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN conversations c ON m.conversation_id = c.id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, where)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.content LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	if opts.Topic != "" {
		conditions = append(conditions, "c.topic = ?")
		args = append(args, opts.Topic)
	}
	if opts.Role != "" {
		conditions = append(conditions, "m.role = ?")
		args = append(args, opts.Role)
	}

	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			m.conversation_id,
			m.seq,
			c.started_at,
			c.topic,
			c.source,
			c.preview,
			m.content,
			m.role
		FROM messages m
		JOIN conversations c ON m.conversation_id = c.id
		WHERE %s
		ORDER BY c.started_at DESC
		LIMIT ?
	`, where)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.ConversationID, &r.Seq, &r.StartedAt,
			&r.Topic, &r.Source, &r.Preview,
			&fullText, &r.Role,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ConversationID, &r.Seq, &r.StartedAt,
			&r.Topic, &r.Source, &r.Preview,
			&r.Snippet, &r.Role, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
