package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/event-manager/internal/application"
)

//go:embed templates/*.html
var templateFiles embed.FS

const layoutTemplate = "templates/layout.html"

// page is the data handed to the layout template.
type page struct {
	Title  string
	Flash  string
	Active string
	Data   any
}

// Responder renders HTML pages and redirects with flash notices.
type Responder struct {
	pages  map[string]*template.Template
	flash  *FlashStore
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"idString": func(id int64) string { return strconv.FormatInt(id, 10) },
	"categoryValue": categoryValue,
	"selected": func(set map[string]bool, id int64) bool {
		return set[strconv.FormatInt(id, 10)]
	},
	"pluralize": func(n int, singular, plural string) string {
		if n == 1 {
			return singular
		}
		return plural
	},
}

// NewResponder parses the embedded templates. Every page template is parsed
// together with the layout.
func NewResponder(flash *FlashStore, logger *slog.Logger) (*Responder, error) {
	names, err := fs.Glob(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("http: list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFiles, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("http: parse %s: %w", name, err)
		}
		pages[strings.TrimPrefix(name, "templates/")] = tmpl
	}

	return &Responder{pages: pages, flash: flash, logger: defaultLogger(logger)}, nil
}

// Render writes the named page with status. Any pending flash notice is
// consumed and shown.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	tmpl, ok := rs.pages[name]
	if !ok {
		rs.loggerFor(r.Context()).ErrorContext(r.Context(), "unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p.Flash = rs.flash.Pop(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		rs.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rs.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

// Redirect sends a 303 to target carrying message as a flash notice.
func (rs *Responder) Redirect(w http.ResponseWriter, r *http.Request, target, message string) {
	rs.flash.Set(w, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type errorPage struct {
	Status  int
	Heading string
	Message string
}

// NotFound renders the 404 page.
func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Render(w, r, http.StatusNotFound, "error.html", page{
		Title: "Not Found",
		Data: errorPage{
			Status:  http.StatusNotFound,
			Heading: "Page not found",
			Message: "The page you requested does not exist.",
		},
	})
}

// ServerError logs err and renders a generic 500 page.
func (rs *Responder) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		rs.loggerFor(r.Context()).ErrorContext(r.Context(), "request failed", "status", http.StatusInternalServerError, "error", err, "error_kind", application.ErrorKind(err))
	}
	rs.Render(w, r, http.StatusInternalServerError, "error.html", page{
		Title: "Server Error",
		Data: errorPage{
			Status:  http.StatusInternalServerError,
			Heading: "Something went wrong",
			Message: "An unexpected error occurred. Please try again later.",
		},
	})
}

// MethodNotAllowed renders a 405 page listing the allowed methods.
func (rs *Responder) MethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	rs.Render(w, r, http.StatusMethodNotAllowed, "error.html", page{
		Title: "Method Not Allowed",
		Data: errorPage{
			Status:  http.StatusMethodNotAllowed,
			Heading: "Method not allowed",
			Message: "This address only accepts " + strings.Join(allowed, ", ") + " requests.",
		},
	})
}

// HandleServiceError maps not found errors to 404 and everything else to 500.
// Validation errors are handled by the form handlers before reaching here.
func (rs *Responder) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, application.ErrNotFound) {
		rs.NotFound(w, r)
		return
	}
	rs.ServerError(w, r, err)
}

func (rs *Responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return rs.logger
}
