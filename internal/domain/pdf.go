package domain

import (
	"bytes"
	"io"
)

// PageErrorPolicy decides what a failing page does to the whole extraction.
type PageErrorPolicy string

const (
	// PageErrorFail aborts the extraction and discards rows gathered so far.
	PageErrorFail PageErrorPolicy = "fail"
	// PageErrorSkip logs the failing page and continues with the next one.
	PageErrorSkip PageErrorPolicy = "skip"
)

// ParsePageErrorPolicy maps a configuration value to a policy, defaulting to PageErrorFail.
func ParsePageErrorPolicy(s string) PageErrorPolicy {
	if PageErrorPolicy(s) == PageErrorSkip {
		return PageErrorSkip
	}
	return PageErrorFail
}

// ExportFormat represents the download formats of an extracted table
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ReadAtCloser is the random access input a PDF reader needs.
// multipart.File satisfies it.
type ReadAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Document is an uploaded PDF, open for the duration of one extraction.
type Document struct {
	Name string
	Size int64

	data   ReadAtCloser
	closed bool
}

// NewDocument wraps an open upload.
func NewDocument(name string, data ReadAtCloser, size int64) *Document {
	return &Document{Name: name, Size: size, data: data}
}

// NewDocumentFromBytes wraps an in-memory PDF.
func NewDocumentFromBytes(name string, b []byte) *Document {
	return NewDocument(name, nopCloser{bytes.NewReader(b)}, int64(len(b)))
}

// ReadAt implements io.ReaderAt.
func (d *Document) ReadAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, ErrDocumentClosed
	}
	return d.data.ReadAt(p, off)
}

// Bytes reads the whole document without moving any read offset.
func (d *Document) Bytes() ([]byte, error) {
	return io.ReadAll(io.NewSectionReader(d, 0, d.Size))
}

// Close releases the underlying upload. Calling it more than once is a no-op.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.data.Close()
}

// Closed reports whether Close has been called.
func (d *Document) Closed() bool {
	return d.closed
}

// DocumentInfo contains information about the PDF document
type DocumentInfo struct {
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	PageCount     int    `json:"page_count"`
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	NeedsPassword bool   `json:"needs_password"`
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
