package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"statement-reader/internal/domain"
	apperrors "statement-reader/pkg/errors"
)

// multipartMemory is the part of an upload kept in memory; the rest spills to disk.
const multipartMemory = 8 << 20

const fileRequiredMessage = "File is required"

// ExtractionRecorder receives one observation per finished extraction.
type ExtractionRecorder interface {
	ObserveExtraction(outcome string, rows int, elapsed time.Duration)
}

// readUpload validates the multipart "file" field and opens it as a Document.
// The caller owns the returned document.
func readUpload(w http.ResponseWriter, r *http.Request, maxFileSize int64) (*domain.Document, *apperrors.AppError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, invalidUpload(fileTooLargeMessage(maxFileSize))
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, invalidUpload("Invalid upload", err.Error())
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, invalidUpload(fileRequiredMessage)
	}

	// Sanitize filename (strip any path components)
	name := strings.TrimSpace(filepath.Base(header.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "statement.pdf"
	}

	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		_ = file.Close()
		return nil, invalidUpload("Unsupported file type. Allowed: PDF (.pdf).")
	}
	if header.Size > maxFileSize {
		_ = file.Close()
		return nil, invalidUpload(fileTooLargeMessage(maxFileSize))
	}

	return domain.NewDocument(name, file, header.Size), nil
}

func invalidUpload(message string, details ...string) *apperrors.AppError {
	appErr := apperrors.NewValidationError(message, details...)
	appErr.Cause = &domain.ValidationError{Field: "file", Message: message}
	return appErr
}

func fileTooLargeMessage(maxFileSize int64) string {
	return fmt.Sprintf("File too large. Maximum file size is %.0fMB.", math.Ceil(float64(maxFileSize)/(1<<20)))
}
