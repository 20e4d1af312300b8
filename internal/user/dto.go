// AngelaMos | 2026
// dto.go

package user

import (
	"net/url"
	"strings"
)

type ListUsersParams struct {
	Search string
	Role   Role
}

func ParseListParams(q url.Values) ListUsersParams {
	p := ListUsersParams{
		Search: q.Get("q"),
		Role:   NormalizeRole(q.Get("role")),
	}
	p.Normalize()
	return p
}

func (p *ListUsersParams) Normalize() {
	p.Search = strings.TrimSpace(p.Search)
	if p.Role != "" && !p.Role.Known() {
		p.Role = ""
	}
}

// Matches applies the case-insensitive search and the exact role filter.
func (p *ListUsersParams) Matches(u *User) bool {
	if p.Role != "" && u.Role != p.Role {
		return false
	}

	if p.Search == "" {
		return true
	}

	needle := strings.ToLower(p.Search)
	return strings.Contains(strings.ToLower(u.Name), needle) ||
		strings.Contains(strings.ToLower(u.Email), needle)
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	EditionID string `json:"edition_id,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// ListView feeds users.html.
type ListView struct {
	Users     []User
	Total     int
	Search    string
	Role      string
	Roles     []string
	LoadError string
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		EditionID: u.EditionID,
		CompanyID: u.CompanyID,
		Status:    u.Status,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func roleOptions() []string {
	out := make([]string, 0, len(Roles))
	for _, r := range Roles {
		out = append(out, string(r))
	}
	return out
}
