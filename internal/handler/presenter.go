package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"statement-reader/internal/domain"
	apperrors "statement-reader/pkg/errors"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PasswordPrompt is shown when an encrypted statement is uploaded without a password.
const PasswordPrompt = "Please enter your password to extract the table data."

// View states of the page.
const (
	viewForm     = "form"
	viewPassword = "password"
	viewError    = "error"
	viewEmpty    = "empty"
	viewSuccess  = "success"
)

// pageView is the data rendered by the page template.
type pageView struct {
	Title       string
	Description string
	State       string
	Message     string
	FileName    string
	Columns     []string
	Rows        []rowView
	Degraded    int
	Summary     *domain.Summary
	TableJSON   string
}

// rowView is one grid row; Missing pads the grid for rows shorter than the
// column set without touching the data.
type rowView struct {
	Cells    []string
	Missing  []struct{}
	Degraded bool
}

// Presenter renders the upload form and the extraction result page
type Presenter struct {
	extractor   domain.StatementExtractor
	inspector   domain.DocumentInspector
	summarizer  domain.StatementSummarizer
	recorder    ExtractionRecorder
	columns     []string
	title       string
	description string
	maxFileSize int64
	logger      domain.Logger
}

// NewPresenter creates a new presenter
func NewPresenter(
	extractor domain.StatementExtractor,
	inspector domain.DocumentInspector,
	summarizer domain.StatementSummarizer,
	recorder ExtractionRecorder,
	config domain.Config,
	logger domain.Logger,
) *Presenter {
	return &Presenter{
		extractor:   extractor,
		inspector:   inspector,
		summarizer:  summarizer,
		recorder:    recorder,
		columns:     config.GetTableColumns(),
		title:       config.GetAppTitle(),
		description: config.GetAppDescription(),
		maxFileSize: config.GetMaxFileSize(),
		logger:      logger,
	}
}

// Index handles GET /
func (p *Presenter) Index(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, p.newView(viewForm))
}

// Upload handles POST /
func (p *Presenter) Upload(w http.ResponseWriter, r *http.Request) {
	doc, appErr := readUpload(w, r, p.maxFileSize)
	if appErr != nil {
		if appErr.Message == fileRequiredMessage {
			p.render(w, http.StatusOK, p.newView(viewForm))
			return
		}
		view := p.newView(viewError)
		view.Message = appErr.Message
		p.render(w, apperrors.GetStatusCode(appErr), view)
		return
	}

	password := r.FormValue("password")
	if password == "" && p.needsPassword(doc) {
		_ = doc.Close()
		view := p.newView(viewPassword)
		view.FileName = doc.Name
		view.Message = PasswordPrompt
		p.render(w, http.StatusOK, view)
		return
	}

	outcome := runExtraction(r.Context(), p.extractor, p.recorder, doc, password)
	p.render(w, http.StatusOK, p.outcomeView(doc.Name, outcome))
}

// needsPassword inspects the upload so an encrypted statement gets the password
// prompt instead of an error. Inspection failures fall through to extraction.
func (p *Presenter) needsPassword(doc *domain.Document) bool {
	info, err := p.inspector.Inspect(doc)
	if err != nil {
		p.logger.Debug("PDF inspection failed", "file", doc.Name, "error", err)
		return false
	}
	return info.NeedsPassword
}

func (p *Presenter) outcomeView(fileName string, outcome domain.Outcome) pageView {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		view := p.newView(viewSuccess)
		view.FileName = fileName
		view.Columns = outcome.Table.Columns
		view.Summary = p.summarizer.Summarize(outcome.Table)
		for _, row := range outcome.Table.Rows {
			rv := rowView{Cells: row, Degraded: row.Degraded(len(outcome.Table.Columns))}
			if rv.Degraded {
				rv.Missing = make([]struct{}, len(outcome.Table.Columns)-len(row))
				view.Degraded++
			}
			view.Rows = append(view.Rows, rv)
		}
		if b, err := json.Marshal(outcome.Table); err == nil {
			view.TableJSON = string(b)
		}
		return view

	case domain.OutcomeEmpty:
		view := p.newView(viewEmpty)
		view.FileName = fileName
		view.Message = outcome.Message
		return view

	default:
		if outcome.NeedsPassword() {
			view := p.newView(viewPassword)
			view.FileName = fileName
			view.Message = PasswordPrompt
			return view
		}
		view := p.newView(viewError)
		view.FileName = fileName
		view.Message = outcome.Message
		return view
	}
}

func (p *Presenter) newView(state string) pageView {
	return pageView{
		Title:       p.title,
		Description: p.description,
		State:       state,
		Columns:     p.columns,
	}
}

// render buffers the page so a template error never leaves a half-written response.
func (p *Presenter) render(w http.ResponseWriter, status int, view pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		p.logger.Error("Failed to render page", err, "state", view.State)
		writeAppError(w, apperrors.NewInternalError("Failed to render page", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
