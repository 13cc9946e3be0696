package domain

import (
	"context"
	"io"
)

// StatementExtractor turns one uploaded statement into an Outcome.
type StatementExtractor interface {
	Extract(ctx context.Context, doc *Document, password string) Outcome
}

// DocumentInspector inspects a PDF without extracting its tables.
type DocumentInspector interface {
	Inspect(doc *Document) (*DocumentInfo, error)
}

// StatementSummarizer computes per-type totals for an extracted table.
type StatementSummarizer interface {
	Summarize(table *Table) *Summary
}

// StatementExporter writes an extracted table in a downloadable format.
type StatementExporter interface {
	Export(w io.Writer, table *Table, format ExportFormat) error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFormat() string
	GetTableColumns() []string
	GetSnapTolerance() float64
	GetPageErrorPolicy() PageErrorPolicy
	GetCurrency() string
	GetAllowedOrigins() []string
	GetRateLimitPerSecond() float64
	GetRateLimitBurst() int
	GetMetricsEnabled() bool
	GetAppTitle() string
	GetAppDescription() string
}
