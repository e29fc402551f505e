package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aicb-dev/aicb/internal/model"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// Loader reads already-structured conversation records from JSON or JSONL
// files. Records either match the full conversation shape or a simplified
// shape carrying one user message and one expert response, which is
// normalized into a two-message conversation.
type Loader struct {
	// Strict halts on the first malformed record instead of skipping it.
	Strict bool
	Logger *zap.Logger
}

// Load reads conversations from a file or, non-recursively, from every
// .json/.jsonl file in a directory.
func (l *Loader) Load(path string) ([]model.Conversation, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDataSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return l.loadDir(path)
	}
	return l.loadFile(path)
}

func (l *Loader) loadDir(dir string) ([]model.Conversation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".jsonl":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var convs []model.Conversation
	for _, name := range names {
		part, err := l.loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		convs = append(convs, part...)
	}
	return convs, nil
}

func (l *Loader) loadFile(path string) ([]model.Conversation, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return l.loadJSON(path)
	case ".jsonl":
		return l.loadJSONL(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func (l *Loader) loadJSON(path string) ([]model.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, err := splitJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, path, err)
	}

	var convs []model.Conversation
	for i, raw := range records {
		conv, err := decodeRecord(raw)
		if err != nil {
			if l.Strict {
				return nil, fmt.Errorf("%s record %d: %w", path, i, err)
			}
			l.logger().Error("skipping malformed record",
				zap.String("file", path),
				zap.Int("record", i),
				zap.Error(err))
			continue
		}
		convs = append(convs, *conv)
	}
	return convs, nil
}

func (l *Loader) loadJSONL(path string) ([]model.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var convs []model.Conversation
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		conv, err := decodeRecord(line)
		if err != nil {
			if l.Strict {
				return nil, fmt.Errorf("%s line %d: %w", path, lineNum, err)
			}
			l.logger().Error("skipping malformed record",
				zap.String("file", path),
				zap.Int("line", lineNum),
				zap.Error(err))
			continue
		}
		convs = append(convs, *conv)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return convs, nil
}

func (l *Loader) logger() *zap.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return zap.NewNop()
}

// splitJSON turns a JSON document into its record slices: an array yields
// its elements, a single object yields itself.
func splitJSON(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var record json.RawMessage
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, err
	}
	return []json.RawMessage{record}, nil
}

// fallbackRecord is the simplified shape: one user message, one expert
// response, and metadata.
type fallbackRecord struct {
	ID             string         `json:"id"`
	Topic          string         `json:"topic"`
	UserMessage    string         `json:"user_message"`
	ExpertResponse string         `json:"expert_response"`
	Metadata       model.Metadata `json:"metadata"`
}

// decodeRecord maps one JSON object to a conversation, trying the full
// shape first and the simplified shape second.
func decodeRecord(raw []byte) (*model.Conversation, error) {
	var conv model.Conversation
	if err := json.Unmarshal(raw, &conv); err == nil && validConversation(&conv) {
		return &conv, nil
	}

	var fb fallbackRecord
	if err := json.Unmarshal(raw, &fb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if fb.UserMessage == "" || fb.ExpertResponse == "" || fb.Metadata.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: matches neither conversation nor user/expert shape", ErrMalformedRecord)
	}

	id := fb.ID
	if id == "" {
		id = model.NewConversationID()
	}
	return &model.Conversation{
		ID:    id,
		Topic: fb.Topic,
		Messages: []model.Message{
			{Timestamp: fb.Metadata.Timestamp, Role: model.RoleUser, Content: fb.UserMessage},
			{Timestamp: fb.Metadata.Timestamp, Role: model.RoleExpert, Content: fb.ExpertResponse},
		},
		Metadata: fb.Metadata,
	}, nil
}

// validConversation reports whether a decoded record carries the full
// shape: an id, a start timestamp, and an explicit messages field.
func validConversation(c *model.Conversation) bool {
	return c.ID != "" && !c.Metadata.Timestamp.IsZero() && c.Messages != nil
}

// LoadCandidateAnswers reads candidate-answer records (conversation id
// plus a model-label → response mapping) from a JSON or JSONL file.
func (l *Loader) LoadCandidateAnswers(path string) ([]model.CandidateAnswers, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDataSourceNotFound, path)
	}

	var records []json.RawMessage
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		records, err = splitJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, path, err)
		}
	case ".jsonl":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			records = append(records, append(json.RawMessage(nil), line...))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	var out []model.CandidateAnswers
	for i, raw := range records {
		var ca model.CandidateAnswers
		if err := json.Unmarshal(raw, &ca); err != nil || ca.ID == "" {
			if l.Strict {
				return nil, fmt.Errorf("%s record %d: %w: %v", path, i, ErrMalformedRecord, err)
			}
			l.logger().Error("skipping malformed candidate record",
				zap.String("file", path),
				zap.Int("record", i),
				zap.Error(err))
			continue
		}
		out = append(out, ca)
	}
	return out, nil
}
