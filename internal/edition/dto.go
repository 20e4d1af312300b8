// AngelaMos | 2026
// dto.go

package edition

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
)

// Form is the create and edit payload, bound from the HTML form or a JSON
// body.
type Form struct {
	Name               string `json:"name"               validate:"required,max=120"`
	Description        string `json:"description"        validate:"max=1000"`
	CoBranding         bool   `json:"coBranding"`
	CustomFields       bool   `json:"customFields"`
	DocumentManagement bool   `json:"documentManagement"`
	EMSResponseReport  bool   `json:"emsResponseReport"`
	NotesModule        bool   `json:"notesModule"`
}

// FormFromRequest decodes a JSON body when the request declares one and
// reads the posted form otherwise.
func FormFromRequest(r *http.Request) (Form, error) {
	if middleware.HasJSONBody(r) {
		var f Form
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			return Form{}, fmt.Errorf("decode edition form: %w", err)
		}
		f.Normalize()
		return f, nil
	}

	if err := r.ParseForm(); err != nil {
		return Form{}, fmt.Errorf("parse edition form: %w", err)
	}

	f := Form{
		Name:               r.PostFormValue("name"),
		Description:        r.PostFormValue("description"),
		CoBranding:         checked(r.PostFormValue("co_branding")),
		CustomFields:       checked(r.PostFormValue("custom_fields")),
		DocumentManagement: checked(r.PostFormValue("document_management")),
		EMSResponseReport:  checked(r.PostFormValue("ems_response_report")),
		NotesModule:        checked(r.PostFormValue("notes_module")),
	}
	f.Normalize()
	return f, nil
}

func FormFromEdition(e *Edition) Form {
	return Form{
		Name:               e.Name,
		Description:        e.Description,
		CoBranding:         e.Features.CoBranding,
		CustomFields:       e.Features.CustomFields,
		DocumentManagement: e.Features.DocumentManagement,
		EMSResponseReport:  e.Features.EMSResponseReport,
		NotesModule:        e.Features.NotesModule,
	}
}

func (f *Form) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
}

func (f Form) Features() Features {
	return Features{
		CoBranding:         f.CoBranding,
		CustomFields:       f.CustomFields,
		DocumentManagement: f.DocumentManagement,
		EMSResponseReport:  f.EMSResponseReport,
		NotesModule:        f.NotesModule,
	}
}

// WriteRequest maps the form onto the backend payload. The slug is always
// derived from the name.
func (f Form) WriteRequest() backend.EditionWriteRequest {
	return backend.EditionWriteRequest{
		Name:        f.Name,
		Slug:        Slugify(f.Name),
		Description: f.Description,
		Features:    f.Features().DTO(),
	}
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

type ListParams struct {
	Search      string
	ShowDeleted bool
}

func ParseListParams(q url.Values) ListParams {
	show, _ := strconv.ParseBool(q.Get("show_deleted"))
	return ListParams{
		Search:      strings.TrimSpace(q.Get("q")),
		ShowDeleted: show,
	}
}

// Matches hides deleted editions unless ShowDeleted is set and applies the
// case-insensitive search over name and slug.
func (p ListParams) Matches(e *Edition) bool {
	if e.IsDeleted() && !p.ShowDeleted {
		return false
	}

	if p.Search == "" {
		return true
	}

	needle := strings.ToLower(p.Search)
	return strings.Contains(strings.ToLower(e.Name), needle) ||
		strings.Contains(strings.ToLower(e.Slug), needle)
}

// ListView feeds editions.html.
type ListView struct {
	Editions    []Edition
	Total       int
	Search      string
	ShowDeleted bool
	LoadError   string
}

// FormView feeds edition_form.html.
type FormView struct {
	IsEdit bool
	ID     string
	Form   Form
	Error  string
}

// ConfirmView feeds edition_delete.html and edition_purge.html.
type ConfirmView struct {
	Edition *Edition
	Phrase  string
	Error   string
}

type ListResponse struct {
	Editions []Edition `json:"editions"`
	Total    int       `json:"total"`
}
