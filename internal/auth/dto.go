// AngelaMos | 2026
// dto.go

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginRequestFromRequest reads the credentials from a JSON body or the
// posted form.
func LoginRequestFromRequest(r *http.Request) (LoginRequest, error) {
	if middleware.HasJSONBody(r) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return LoginRequest{}, fmt.Errorf("decode login request: %w", err)
		}
		req.Email = strings.TrimSpace(req.Email)
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return LoginRequest{}, fmt.Errorf("parse login form: %w", err)
	}

	return LoginRequest{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}, nil
}

// LoginView feeds login.html.
type LoginView struct {
	Email string
	Error string
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
