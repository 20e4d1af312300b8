// AngelaMos | 2026
// entity.go

package edition

import (
	"strings"
	"time"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

type Features struct {
	CoBranding         bool `json:"coBranding"`
	CustomFields       bool `json:"customFields"`
	DocumentManagement bool `json:"documentManagement"`
	EMSResponseReport  bool `json:"emsResponseReport"`
	NotesModule        bool `json:"notesModule"`
}

type Edition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Features    Features   `json:"features"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func FromDTO(d backend.EditionDTO) Edition {
	return Edition{
		ID:          d.ID.String(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Status:      ResolveStatus(d),
		Features:    FeaturesFromDTO(d.Features),
		CreatedAt:   d.CreatedAt.Ptr(),
		UpdatedAt:   d.UpdatedAt.Ptr(),
	}
}

// ResolveStatus collapses the backend's status signals into active or
// deleted. An explicit status wins; otherwise is_deleted or deleted_at mark
// the record deleted; anything else is active.
func ResolveStatus(d backend.EditionDTO) Status {
	switch Status(strings.ToLower(strings.TrimSpace(d.Status))) {
	case StatusActive:
		return StatusActive
	case StatusDeleted:
		return StatusDeleted
	}

	if d.IsDeleted.Valid {
		if d.IsDeleted.Bool {
			return StatusDeleted
		}
		return StatusActive
	}

	if !d.DeletedAt.IsZero() {
		return StatusDeleted
	}

	return StatusActive
}

func FeaturesFromDTO(f backend.EditionFeaturesDTO) Features {
	return Features{
		CoBranding:         f.CoBranding,
		CustomFields:       f.CustomFields,
		DocumentManagement: f.DocumentManagement,
		EMSResponseReport:  f.EMSResponseReport,
		NotesModule:        f.NotesModule,
	}
}

func (f Features) DTO() backend.EditionFeaturesDTO {
	return backend.EditionFeaturesDTO{
		CoBranding:         f.CoBranding,
		CustomFields:       f.CustomFields,
		DocumentManagement: f.DocumentManagement,
		EMSResponseReport:  f.EMSResponseReport,
		NotesModule:        f.NotesModule,
	}
}

// Labels lists the enabled features in display order.
func (f Features) Labels() []string {
	var out []string
	if f.CoBranding {
		out = append(out, "Co-branding")
	}
	if f.CustomFields {
		out = append(out, "Custom fields")
	}
	if f.DocumentManagement {
		out = append(out, "Document management")
	}
	if f.EMSResponseReport {
		out = append(out, "EMS response report")
	}
	if f.NotesModule {
		out = append(out, "Notes module")
	}
	return out
}

func (e Edition) IsDeleted() bool {
	return e.Status == StatusDeleted
}

func (e Edition) EnabledFeatures() []string {
	return e.Features.Labels()
}
