package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aicb-dev/aicb/internal/model"
)

// Export writes the conversation set to path in the named format
// ("json" for a pretty-printed array, "jsonl" for one compact object per
// line). An empty format is derived from the path's extension.
func Export(path, format string, convs []model.Conversation) error {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "json":
		return ExportJSON(path, convs)
	case "jsonl":
		return ExportJSONL(path, convs)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, format)
	}
}

// ExportJSON writes a pretty-printed JSON array. Non-ASCII text is kept
// literal, not escaped.
func ExportJSON(path string, convs []model.Conversation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(convs); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ExportJSONL writes one compact JSON object per line.
func ExportJSONL(path string, convs []model.Conversation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for i := range convs {
		if err := enc.Encode(&convs[i]); err != nil {
			return fmt.Errorf("encode line %d: %w", i, err)
		}
	}
	return nil
}
