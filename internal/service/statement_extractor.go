package service

import (
	"context"
	"strings"
	"time"

	"statement-reader/internal/domain"
)

// minTableRows is the smallest table taken as data; anything shorter is
// a layout artifact such as a lone header.
const minTableRows = 2

// StatementExtractor pulls the transaction table out of a statement PDF.
type StatementExtractor struct {
	columns  []string
	settings TableSettings
	policy   domain.PageErrorPolicy
	open     documentOpener
	logger   domain.Logger
}

// NewStatementExtractor creates an extractor mapping rows onto columns.
func NewStatementExtractor(
	columns []string,
	settings TableSettings,
	policy domain.PageErrorPolicy,
	logger domain.Logger,
) *StatementExtractor {
	return &StatementExtractor{
		columns:  append([]string(nil), columns...),
		settings: settings,
		policy:   policy,
		open:     openPDF,
		logger:   logger,
	}
}

// Extract reads every page of doc in order and collects the rows of all
// qualifying tables. The document is closed before Extract returns.
// Any error fails the whole extraction; no partial table is returned.
func (e *StatementExtractor) Extract(ctx context.Context, doc *domain.Document, password string) domain.Outcome {
	start := time.Now()
	requestID := domain.RequestIDFromContext(ctx)
	defer func() {
		if err := doc.Close(); err != nil {
			e.logger.Warn("Failed to close document", "file", doc.Name, "error", err)
		}
	}()

	rows, err := e.collectRows(ctx, doc, password)
	if err != nil {
		e.logger.Warn("Statement extraction failed",
			"request_id", requestID, "file", doc.Name, "error", err)
		return domain.Failure(err)
	}
	if len(rows) == 0 {
		e.logger.Info("No tables found in statement",
			"request_id", requestID, "file", doc.Name, "duration_ms", time.Since(start).Milliseconds())
		return domain.Empty(domain.NoTablesMessage)
	}

	table := &domain.Table{Columns: append([]string(nil), e.columns...), Rows: rows}
	e.logger.Info("Statement extracted",
		"request_id", requestID,
		"file", doc.Name,
		"rows", len(rows),
		"degraded_rows", len(table.DegradedRows()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return domain.Success(table)
}

func (e *StatementExtractor) collectRows(ctx context.Context, doc *domain.Document, password string) (rows []domain.Row, err error) {
	defer recoverError(&err)

	src, err := e.open(doc, password)
	if err != nil {
		return nil, err
	}

	numPages := src.NumPage()
	for n := 1; n <= numPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageRows, err := e.pageRows(src, n)
		if err != nil {
			if e.policy == domain.PageErrorSkip {
				e.logger.Warn("Skipping unreadable page", "file", doc.Name, "page", n, "error", err)
				continue
			}
			e.logger.Debug("Page failed", "file", doc.Name, "page", n, "total", numPages)
			return nil, err
		}
		rows = append(rows, pageRows...)
	}
	return rows, nil
}

// pageRows returns the rows of every table on page n with at least two rows.
func (e *StatementExtractor) pageRows(src pageSource, n int) ([]domain.Row, error) {
	text, err := src.PageText(n)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		e.logger.Debug("Skipping page without text", "page", n)
		return nil, nil
	}

	tables, err := src.PageTables(n, e.settings)
	if err != nil {
		return nil, err
	}

	var rows []domain.Row
	for _, table := range tables {
		if len(table) < minTableRows {
			continue
		}
		for _, cells := range table {
			rows = append(rows, e.fitRow(cells))
		}
	}
	e.logger.Debug("Page processed", "page", n, "tables", len(tables), "rows", len(rows))
	return rows, nil
}

// fitRow truncates a row to the column count. Shorter rows are kept as found.
func (e *StatementExtractor) fitRow(cells []string) domain.Row {
	width := len(e.columns)
	if len(cells) > width {
		cells = cells[:width]
	}
	return append(domain.Row(nil), cells...)
}
