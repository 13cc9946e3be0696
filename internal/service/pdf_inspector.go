package service

import (
	"errors"
	"fmt"

	"statement-reader/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// PDFInspector reads page count, metadata and encryption state with MuPDF.
type PDFInspector struct {
	logger domain.Logger
}

// NewPDFInspector creates a new PDF inspector
func NewPDFInspector(logger domain.Logger) *PDFInspector {
	return &PDFInspector{
		logger: logger,
	}
}

// Inspect opens doc without a password. An encrypted document is reported
// through NeedsPassword rather than as an error.
func (p *PDFInspector) Inspect(doc *domain.Document) (*domain.DocumentInfo, error) {
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	info := &domain.DocumentInfo{
		Name: doc.Name,
		Size: doc.Size,
	}

	f, err := fitz.NewFromMemory(data)
	if err != nil {
		if errors.Is(err, fitz.ErrNeedsPassword) {
			p.logger.Debug("PDF is encrypted", "file", doc.Name)
			info.NeedsPassword = true
			return info, nil
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info.PageCount = f.NumPage()
	meta := f.Metadata()
	if title, ok := meta["title"]; ok && title != "" {
		info.Title = title
	}
	if author, ok := meta["author"]; ok && author != "" {
		info.Author = author
	}

	p.logger.Debug("PDF inspected", "file", doc.Name, "pages", info.PageCount)
	return info, nil
}
