// AngelaMos | 2026
// handler.go

package dashboard

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/edition-console/internal/admin"
	"github.com/carterperez-dev/templates/edition-console/internal/auth"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
	"github.com/carterperez-dev/templates/edition-console/internal/user"
)

const templateLogin = "login.html"

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any)
}

// StatsProvider reports console state for the super-admin dashboard without
// touching the backend.
type StatsProvider interface {
	Snapshot(ctx context.Context) *admin.SystemStats
}

// View feeds the dashboard templates.
type View struct {
	Stats *admin.SystemStats
}

type Handler struct {
	renderer Renderer
	stats    StatsProvider
}

func NewHandler(renderer Renderer, stats StatsProvider) *Handler {
	return &Handler{
		renderer: renderer,
		stats:    stats,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
}

// Home renders the login view for anonymous visitors and the role's
// dashboard otherwise.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	if p == nil {
		if middleware.WantsJSON(r) {
			core.Unauthorized(w, "")
			return
		}
		h.renderer.Render(w, r, http.StatusOK, templateLogin, "Sign in", auth.LoginView{})
		return
	}

	role := user.NormalizeRole(p.Role)
	route := RouteFor(role)

	if middleware.WantsJSON(r) {
		core.OK(w, map[string]string{
			"dashboard": route.Template,
			"role":      role.String(),
		})
		return
	}

	var v View
	if role == user.RoleSuperAdmin && h.stats != nil {
		v.Stats = h.stats.Snapshot(r.Context())
	}

	h.renderer.Render(w, r, http.StatusOK, route.Template, route.Title, v)
}
