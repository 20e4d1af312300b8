// AngelaMos | 2026
// dto.go

package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ID accepts identifiers the backend encodes either as strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Flag is a boolean the backend may send as true/false, 0/1 or a string of
// either. Valid is false when the field was null, absent or unrecognised.
type Flag struct {
	Bool  bool
	Valid bool
}

func NewFlag(b bool) Flag {
	return Flag{Bool: b, Valid: true}
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag{}

	s := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}

	if v, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
		*f = NewFlag(v)
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = NewFlag(n != 0)
	}

	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Bool)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Timestamp decodes the backend's time fields. Empty strings and values in
// no known layout decode to the zero time instead of failing the response.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	*ts = Timestamp{}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}

	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}

	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// Ptr returns nil for the zero time.
func (ts Timestamp) Ptr() *time.Time {
	if ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User        UserDTO `json:"user"`
	Token       string  `json:"token"`
	AccessToken string  `json:"access_token"`
}

// BearerToken returns whichever token field the backend populated.
func (r *LoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

type UserDTO struct {
	ID        ID         `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	EditionID ID         `json:"edition_id,omitempty"`
	CompanyID ID         `json:"company_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

type EditionFeaturesDTO struct {
	CoBranding         bool `json:"co_branding"`
	CustomFields       bool `json:"custom_fields"`
	DocumentManagement bool `json:"document_management"`
	EMSResponseReport  bool `json:"ems_response_report"`
	NotesModule        bool `json:"notes_module"`
}

// EditionDTO is the backend's representation. Status may be absent, and
// older records flag soft deletion through is_deleted or deleted_at instead.
type EditionDTO struct {
	ID          ID                 `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	IsDeleted   Flag               `json:"is_deleted"`
	DeletedAt   Timestamp          `json:"deleted_at"`
	Features    EditionFeaturesDTO `json:"features"`
	CreatedAt   Timestamp          `json:"created_at"`
	UpdatedAt   Timestamp          `json:"updated_at"`
}

type EditionWriteRequest struct {
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status,omitempty"`
	Features    EditionFeaturesDTO `json:"features"`
}
