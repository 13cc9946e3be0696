package service

import (
	"encoding/csv"
	"fmt"
	"io"

	"statement-reader/internal/domain"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// exportSheet is the worksheet name of XLSX exports.
const exportSheet = "Statement"

// StatementExporter writes extracted tables as CSV or XLSX.
type StatementExporter struct {
	logger domain.Logger
}

// NewStatementExporter creates a new statement exporter
func NewStatementExporter(logger domain.Logger) *StatementExporter {
	return &StatementExporter{
		logger: logger,
	}
}

// Export writes the header row followed by every table row. Short rows are
// written as found.
func (e *StatementExporter) Export(w io.Writer, table *domain.Table, format domain.ExportFormat) error {
	switch format {
	case domain.ExportFormatCSV:
		return e.writeCSV(w, table)
	case domain.ExportFormatXLSX:
		return e.writeXLSX(w, table)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

func (e *StatementExporter) writeCSV(w io.Writer, table *domain.Table) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	e.logger.Debug("CSV export written", "rows", len(table.Rows))
	return nil
}

func (e *StatementExporter) writeXLSX(w io.Writer, table *domain.Table) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", toCells(table.Columns)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, toCells(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	e.logger.Debug("XLSX export written", "rows", len(table.Rows))
	return nil
}

// toCells converts string cells into the slice pointer SetSheetRow expects.
func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
