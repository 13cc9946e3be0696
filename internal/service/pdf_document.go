package service

import (
	"errors"
	"fmt"

	"statement-reader/internal/domain"

	"github.com/ledongthuc/pdf"
)

// pageSource is the page-level view of an opened PDF that the extractor walks.
// Pages are numbered from 1.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
	PageTables(n int, settings TableSettings) ([][][]string, error)
}

// documentOpener opens a document, decrypting it with password when one is given.
type documentOpener func(doc *domain.Document, password string) (pageSource, error)

// pdfDocument adapts a ledongthuc/pdf reader to pageSource.
type pdfDocument struct {
	reader *pdf.Reader
}

// openPDF is the documentOpener backed by ledongthuc/pdf. An encrypted document
// opened without a password fails with domain.ErrPasswordRequired.
func openPDF(doc *domain.Document, password string) (src pageSource, err error) {
	defer recoverError(&err)

	var r *pdf.Reader
	if password == "" {
		r, err = pdf.NewReader(doc, doc.Size)
	} else {
		r, err = pdf.NewReaderEncrypted(doc, doc.Size, passwordOnce(password))
	}
	if err != nil {
		if password == "" && errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, fmt.Errorf("%w: %v", domain.ErrPasswordRequired, err)
		}
		return nil, err
	}
	return &pdfDocument{reader: r}, nil
}

// passwordOnce yields the password on the first call and "" afterwards,
// which tells the reader to stop retrying.
func passwordOnce(password string) func() string {
	tried := false
	return func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	}
}

func (d *pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of page n, "" for a page without content.
func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer recoverError(&err)

	p := d.reader.Page(n)
	if !hasContent(p) {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// PageTables runs the table finder over the glyphs and rectangles of page n.
func (d *pdfDocument) PageTables(n int, settings TableSettings) (tables [][][]string, err error) {
	defer recoverError(&err)

	p := d.reader.Page(n)
	if !hasContent(p) {
		return nil, nil
	}
	content := p.Content()
	return newTableFinder(settings).FindTables(content.Text, content.Rect), nil
}

func hasContent(p pdf.Page) bool {
	return !p.V.IsNull() && !p.V.Key("Contents").IsNull()
}

// recoverError turns a panic raised while decoding a malformed PDF into err.
func recoverError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case error:
		*err = fmt.Errorf("malformed PDF: %w", v)
	default:
		*err = fmt.Errorf("malformed PDF: %v", v)
	}
}
