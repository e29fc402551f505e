package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"github.com/aicb-dev/aicb/internal/model"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS conversations (
    id            TEXT PRIMARY KEY,
    topic         TEXT NOT NULL DEFAULT '',
    source        TEXT NOT NULL DEFAULT '',
    started_at    TEXT NOT NULL DEFAULT '',
    raw           TEXT NOT NULL DEFAULT '',
    preview       TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    conversation_id TEXT NOT NULL,
    seq             INTEGER NOT NULL,
    ts              TEXT NOT NULL DEFAULT '',
    role            TEXT NOT NULL,
    content         TEXT NOT NULL,
    PRIMARY KEY (conversation_id, seq)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

const tsLayout = time.RFC3339

// schemaVersion should be bumped whenever the stored shape changes; a
// mismatch clears the store so the next ingest rebuilds it.
const schemaVersion = "1"

const previewLimit = 200

type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	d.migrateSchemaVersion()
	return d, nil
}

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		d.db.Exec("DELETE FROM messages")
		d.db.Exec("DELETE FROM conversations")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// ReplaceAll swaps the stored set for convs in one transaction.
func (d *DB) ReplaceAll(convs []model.Conversation) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return err
	}

	convStmt, err := tx.Prepare(
		`INSERT INTO conversations (id, topic, source, started_at, raw, preview, message_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer convStmt.Close()

	msgStmt, err := tx.Prepare(
		`INSERT INTO messages (conversation_id, seq, ts, role, content)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer msgStmt.Close()

	for i := range convs {
		c := &convs[i]
		if _, err := convStmt.Exec(
			c.ID,
			c.Topic,
			c.Metadata.Source,
			c.Metadata.Timestamp.Format(tsLayout),
			c.Raw,
			preview(c),
			len(c.Messages),
		); err != nil {
			return fmt.Errorf("insert conversation %s: %w", c.ID, err)
		}
		for seq, m := range c.Messages {
			if _, err := msgStmt.Exec(
				c.ID, seq, m.Timestamp.Format(tsLayout), string(m.Role), m.Content,
			); err != nil {
				return fmt.Errorf("insert message %s/%d: %w", c.ID, seq, err)
			}
		}
	}

	return tx.Commit()
}

// preview flattens the first message into a single list-friendly line.
func preview(c *model.Conversation) string {
	if len(c.Messages) == 0 {
		return ""
	}
	s := strings.ReplaceAll(c.Messages[0].Content, "\n", " ")
	if utf8.RuneCountInString(s) > previewLimit {
		s = string([]rune(s)[:previewLimit])
	}
	return s
}

func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&n)
	return n, err
}

func (d *DB) MessageTotal() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// Summary is the list-view projection of a stored conversation.
type Summary struct {
	ID           string
	Topic        string
	Source       string
	StartedAt    string
	Preview      string
	MessageCount int
}

// Conversations lists stored conversations newest first, optionally
// filtered by exact topic. limit <= 0 means no limit.
func (d *DB) Conversations(topic string, limit int) ([]Summary, error) {
	q := `SELECT id, topic, source, started_at, preview, message_count
	      FROM conversations`
	var args []interface{}
	if topic != "" {
		q += " WHERE topic = ?"
		args = append(args, topic)
	}
	q += " ORDER BY started_at DESC, id"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Topic, &s.Source, &s.StartedAt, &s.Preview, &s.MessageCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ConversationByID reconstructs one stored conversation, nil when absent.
func (d *DB) ConversationByID(id string) (*model.Conversation, error) {
	var c model.Conversation
	var startedAt string
	err := d.db.QueryRow(
		"SELECT id, topic, source, started_at, raw FROM conversations WHERE id = ?", id,
	).Scan(&c.ID, &c.Topic, &c.Metadata.Source, &startedAt, &c.Raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Metadata.Timestamp, err = time.Parse(tsLayout, startedAt); err != nil {
		return nil, fmt.Errorf("conversation %s started_at: %w", id, err)
	}

	if c.Messages, err = d.messagesFor(id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DB) messagesFor(id string) ([]model.Message, error) {
	rows, err := d.db.Query(
		"SELECT ts, role, content FROM messages WHERE conversation_id = ? ORDER BY seq", id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var m model.Message
		var ts, role string
		if err := rows.Scan(&ts, &role, &m.Content); err != nil {
			return nil, err
		}
		if m.Timestamp, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("conversation %s message ts: %w", id, err)
		}
		m.Role = model.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// All reconstructs every stored conversation, newest first. Used by export.
func (d *DB) All() ([]model.Conversation, error) {
	sums, err := d.Conversations("", 0)
	if err != nil {
		return nil, err
	}
	out := make([]model.Conversation, 0, len(sums))
	for _, s := range sums {
		c, err := d.ConversationByID(s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// TopicCount pairs a topic with its conversation count.
type TopicCount struct {
	Topic string
	Count int
}

// Topics returns distinct topics with counts, sorted by topic.
func (d *DB) Topics() ([]TopicCount, error) {
	rows, err := d.db.Query(
		"SELECT topic, COUNT(*) FROM conversations GROUP BY topic ORDER BY topic",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopicCount
	for rows.Next() {
		var tc TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
