// AngelaMos | 2026
// handler.go

package user

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
)

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any)
}

type Handler struct {
	service  *Service
	renderer Renderer
}

func NewHandler(service *Service, renderer Renderer) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.With(gate).Get("/users", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())

	view := ListView{
		Search: params.Search,
		Role:   string(params.Role),
		Roles:  roleOptions(),
	}

	users, total, err := h.service.ListUsers(r.Context(), middleware.GetToken(r.Context()), params)
	if err != nil {
		slog.WarnContext(r.Context(), "list users failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)

		if middleware.WantsJSON(r) {
			core.JSONError(w, core.NewAppError(err, backend.ErrorMessage(err),
				http.StatusBadGateway, "BACKEND_ERROR"))
			return
		}
		view.LoadError = backend.ErrorMessage(err)
	}

	if middleware.WantsJSON(r) {
		core.OK(w, UserListResponse{Users: ToUserResponseList(users), Total: total})
		return
	}

	view.Users = users
	view.Total = total
	h.renderer.Render(w, r, http.StatusOK, "users.html", "Users", view)
}
