// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
)

type Role string

const (
	RoleSuperAdmin   Role = "super-admin"
	RoleEditionAdmin Role = "edition-admin"
	RoleCompanyAdmin Role = "company-admin"
	RoleChannelAdmin Role = "channel-admin"
	RoleUser         Role = "user"
)

var Roles = []Role{
	RoleSuperAdmin,
	RoleEditionAdmin,
	RoleCompanyAdmin,
	RoleChannelAdmin,
	RoleUser,
}

// NormalizeRole folds backend spellings such as "SUPER_ADMIN" into the
// console's hyphenated form. Unknown values are returned as-is.
func NormalizeRole(raw string) Role {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return Role(s)
}

func (r Role) Known() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// User is the cached copy of the backend identity kept in the session.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	EditionID string     `json:"edition_id,omitempty"`
	CompanyID string     `json:"company_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func FromDTO(d backend.UserDTO) User {
	return User{
		ID:        d.ID.String(),
		Email:     strings.TrimSpace(d.Email),
		Name:      strings.TrimSpace(d.Name),
		Role:      NormalizeRole(d.Role),
		EditionID: d.EditionID.String(),
		CompanyID: d.CompanyID.String(),
		Status:    d.Status,
		CreatedAt: d.CreatedAt.Ptr(),
	}
}

func (u *User) RoleString() string {
	return string(u.Role)
}

// DisplayName falls back to the email when the backend sent no name.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Valid reports whether a decoded session blob is usable.
func (u *User) Valid() bool {
	return u.ID != "" || u.Email != ""
}

func (u *User) Principal(token string) *middleware.Principal {
	return &middleware.Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.DisplayName(),
		Role:      string(u.Role),
		EditionID: u.EditionID,
		CompanyID: u.CompanyID,
		Status:    u.Status,
		Token:     token,
	}
}
