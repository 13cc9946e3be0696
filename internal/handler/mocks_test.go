package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"statement-reader/internal/domain"
)

// Mock logger used by handler package tests.
type MockHandlerLogger struct{}

func NewMockHandlerLogger() domain.Logger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})             {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})             {}

// mockExtractor returns a fixed outcome and records its inputs.
type mockExtractor struct {
	outcome      domain.Outcome
	calls        int
	lastPassword string
	lastName     string
	lastBody     []byte
}

func (m *mockExtractor) Extract(_ context.Context, doc *domain.Document, password string) domain.Outcome {
	m.calls++
	m.lastPassword = password
	m.lastName = doc.Name
	m.lastBody, _ = doc.Bytes()
	_ = doc.Close()
	return m.outcome
}

type mockInspector struct {
	info *domain.DocumentInfo
	err  error
}

func (m *mockInspector) Inspect(doc *domain.Document) (*domain.DocumentInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info := *m.info
	info.Name = doc.Name
	info.Size = doc.Size
	return &info, nil
}

type mockSummarizer struct{}

func (mockSummarizer) Summarize(table *domain.Table) *domain.Summary {
	return &domain.Summary{
		Rows:     len(table.Rows),
		Currency: "INR",
		Totals:   []domain.TypeTotal{{Type: "Debit", Count: 1, Amount: "40.00", Display: "₹40.00"}},
	}
}

type mockExporter struct {
	err        error
	lastFormat domain.ExportFormat
	lastTable  *domain.Table
}

func (m *mockExporter) Export(w io.Writer, table *domain.Table, format domain.ExportFormat) error {
	if m.err != nil {
		return m.err
	}
	m.lastFormat = format
	m.lastTable = table
	_, err := io.WriteString(w, "exported:"+string(format))
	return err
}

// mockRecorder collects metric observations.
type mockRecorder struct {
	mu          sync.Mutex
	extractions []string
	requests    []string
}

func (m *mockRecorder) ObserveExtraction(outcome string, rows int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractions = append(m.extractions, outcome)
}

func (m *mockRecorder) ObserveRequest(route, method string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, method+" "+route+" "+http.StatusText(status))
}

// mockConfig implements domain.Config with fixed values.
type mockConfig struct {
	maxFileSize int64
}

func (c mockConfig) GetServerPort() string { return "8080" }
func (c mockConfig) GetMaxFileSize() int64 {
	if c.maxFileSize == 0 {
		return 1 << 20
	}
	return c.maxFileSize
}
func (c mockConfig) GetLogLevel() string                        { return "info" }
func (c mockConfig) GetLogFormat() string                       { return "text" }
func (c mockConfig) GetTableColumns() []string                  { return domain.DefaultColumns }
func (c mockConfig) GetSnapTolerance() float64                  { return 3 }
func (c mockConfig) GetPageErrorPolicy() domain.PageErrorPolicy { return domain.PageErrorFail }
func (c mockConfig) GetCurrency() string                        { return "INR" }
func (c mockConfig) GetAllowedOrigins() []string                { return []string{"http://localhost:8080"} }
func (c mockConfig) GetRateLimitPerSecond() float64             { return 5 }
func (c mockConfig) GetRateLimitBurst() int                     { return 10 }
func (c mockConfig) GetMetricsEnabled() bool                    { return true }
func (c mockConfig) GetAppTitle() string                        { return "PhonePe Transaction Insights" }
func (c mockConfig) GetAppDescription() string                  { return "Extracts the transaction table." }

// newUploadRequest builds a multipart request with an optional file and password.
func newUploadRequest(t *testing.T, target, fileName string, content []byte, password string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if password != "" {
		if err := mw.WriteField("password", password); err != nil {
			t.Fatalf("failed to write password: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func successOutcome() domain.Outcome {
	return domain.Success(&domain.Table{
		Columns: domain.DefaultColumns,
		Rows: []domain.Row{
			{"Date", "Transaction Details", "Type", "Amount"},
			{"Jan 01, 2024", "Paid to <Cafe>", "Debit", "₹40"},
			{"Jan 02, 2024", "Refund"},
		},
	})
}

var pdfBytes = []byte("%PDF-1.4 fake statement")
