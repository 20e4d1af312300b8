// AngelaMos | 2026
// view.go

// Package view renders the console's server-side HTML pages. Templates are
// embedded in the binary; every page is parsed together with layout.html.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Page is the value every template executes against.
type Page struct {
	AppName string
	Title   string
	User    *middleware.Principal
	Flashes []Flash
	Data    any
}

type FlashSource func(w http.ResponseWriter, r *http.Request) []Flash

type Renderer struct {
	appName string
	pages   map[string]*template.Template
	flashes FlashSource
}

type Option func(*Renderer)

// WithFlashSource wires the store that pending notifications are drained from.
func WithFlashSource(src FlashSource) Option {
	return func(r *Renderer) {
		r.flashes = src
	}
}

func New(appName string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		appName: appName,
		pages:   make(map[string]*template.Template),
	}

	for _, opt := range opts {
		opt(r)
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == layoutFile {
			continue
		}

		tpl, err := template.New(layoutFile).
			Funcs(funcs()).
			ParseFS(templateFS, "templates/"+layoutFile, path)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tpl
	}

	return r, nil
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) Render(
	w http.ResponseWriter,
	req *http.Request,
	status int,
	name, title string,
	data any,
) {
	tpl, ok := r.pages[name]
	if !ok {
		slog.Error("unknown template", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := Page{
		AppName: r.appName,
		Title:   title,
		User:    middleware.GetPrincipal(req.Context()),
		Data:    data,
	}
	if r.flashes != nil {
		page.Flashes = r.flashes(w, req)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, layoutFile, page); err != nil {
		slog.Error("render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // client went away
	_, _ = buf.WriteTo(w)
}

// RoleLabel turns "edition-admin" into "Edition Admin".
func RoleLabel(role string) string {
	if role == "" {
		return "User"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(role, "-", " "))
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"roleLabel": RoleLabel,
		"year":      func() int { return time.Now().Year() },
		"date": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04")
		},
	}
}
