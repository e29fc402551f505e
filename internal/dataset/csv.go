package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTranscriptColumn is the column holding raw transcripts in the
// 2023 AWEL export.
const DefaultTranscriptColumn = "gesprek anoniem"

// ReadTranscriptColumn reads the named column out of a CSV file, one raw
// transcript string per row. The header row locates the column.
func ReadTranscriptColumn(path, column string) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDataSourceNotFound, path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("%w: %s is not a CSV file", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: column %q not found in %s", ErrUnsupportedFormat, column, path)
	}

	var texts []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if col >= len(row) {
			continue
		}
		texts = append(texts, row[col])
	}
	return texts, nil
}
