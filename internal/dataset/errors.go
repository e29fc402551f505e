package dataset

import "errors"

// Error kinds callers classify with errors.Is. Not-found and
// unsupported-format errors are fatal to the operation that hit them;
// malformed records are recoverable at batch granularity in lenient mode.
var (
	ErrDataSourceNotFound      = errors.New("data source not found")
	ErrUnsupportedFormat       = errors.New("unsupported format")
	ErrMalformedRecord         = errors.New("malformed record")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
