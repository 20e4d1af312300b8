// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/edition-console/internal/core"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	RequestIDKey contextKey = "request_id"
)

const LoginPath = "/login"

// Principal is the signed-in user as seen by handlers and templates.
type Principal struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	EditionID string
	CompanyID string
	Status    string
	Token     string
}

type SessionResolver interface {
	Resolve(r *http.Request) (*Principal, error)
}

// LoadSession puts the current principal, if any, on the request context.
// Resolution errors degrade to an anonymous request.
func LoadSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r)
			if err != nil {
				slog.WarnContext(r.Context(), "session lookup failed",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
			}

			if p != nil {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r.Context()) == nil {
			deny(w, r, core.UnauthorizedError("authentication required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())

			if p == nil {
				deny(w, r, core.UnauthorizedError("authentication required"))
				return
			}

			if _, ok := roleSet[p.Role]; !ok {
				slog.InfoContext(r.Context(), "role not permitted",
					"path", r.URL.Path,
					"role", p.Role,
					"user_id", p.UserID,
				)
				deny(w, r, core.ForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WantsJSON reports whether the caller asked for JSON and not HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") &&
		!strings.Contains(accept, "text/html")
}

// HasJSONBody reports whether the request body is declared as JSON.
func HasJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func deny(w http.ResponseWriter, r *http.Request, err *core.AppError) {
	if WantsJSON(r) {
		core.JSONError(w, err)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.Role
	}
	return ""
}

// GetToken returns the backend bearer token of the signed-in user.
func GetToken(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.Token
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetPrincipal(ctx) != nil
}
