package service

import (
	"strings"
	"sync"

	"statement-reader/internal/domain"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.record("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

// Has reports whether a message starting with prefix was logged.
func (m *MockLogger) Has(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// fakePage is one page served by fakeSource.
type fakePage struct {
	text     string
	tables   [][][]string
	textErr  error
	tableErr error
	panics   bool
}

// fakeSource is an in-memory pageSource.
type fakeSource struct {
	pages      []fakePage
	tableCalls []int
}

func (f *fakeSource) NumPage() int {
	return len(f.pages)
}

func (f *fakeSource) PageText(n int) (string, error) {
	p := f.pages[n-1]
	if p.panics {
		panic("bad xref entry")
	}
	return p.text, p.textErr
}

func (f *fakeSource) PageTables(n int, _ TableSettings) ([][][]string, error) {
	f.tableCalls = append(f.tableCalls, n)
	p := f.pages[n-1]
	return p.tables, p.tableErr
}

var _ pageSource = (*fakeSource)(nil)
var _ domain.Logger = (*MockLogger)(nil)
