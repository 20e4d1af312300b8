// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
)

const (
	templateLogin = "login.html"
	homePath      = "/"
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

// RegisterRoutes mounts the login routes. limiter wraps only the
// credential submission.
func (h *Handler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Get("/login", h.ShowLogin)

	if limiter != nil {
		r.With(limiter).Post("/login", h.Login)
	} else {
		r.Post("/login", h.Login)
	}

	r.Post("/logout", h.Logout)
}

func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, homePath, http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, templateLogin, "Sign in", LoginView{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := LoginRequestFromRequest(r)
	if err != nil {
		h.loginFailed(w, r, http.StatusBadRequest, "", "invalid form submission")
		return
	}

	u, err := h.service.Login(w, r, req)
	if err != nil {
		status, message := loginErrorResponse(err)
		slog.InfoContext(r.Context(), "login rejected",
			"status", status,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.loginFailed(w, r, status, req.Email, message)
		return
	}

	slog.InfoContext(r.Context(), "user signed in",
		"user_id", u.ID,
		"role", u.Role,
	)

	if middleware.WantsJSON(r) {
		core.OK(w, UserResponse{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
			Role:  u.RoleString(),
		})
		return
	}

	http.Redirect(w, r, homePath, http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(w, r); err != nil {
		slog.WarnContext(r.Context(), "logout failed", "error", err)
	}

	if middleware.WantsJSON(r) {
		core.NoContent(w)
		return
	}

	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// RateLimited re-renders the form when the login limiter trips.
func (h *Handler) RateLimited(w http.ResponseWriter, r *http.Request, res *redis_rate.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(middleware.RetryAfterSeconds(res)))
	h.loginFailed(w, r, http.StatusTooManyRequests, r.PostFormValue("email"),
		"Too many sign-in attempts. Please wait and try again.")
}

func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, status int, email, message string) {
	if middleware.WantsJSON(r) {
		core.JSON(w, status, core.Response{
			Success: false,
			Error:   &core.ErrorBody{Code: errorCode(status), Message: message},
		})
		return
	}

	h.renderer.Render(w, r, status, templateLogin, "Sign in", LoginView{
		Email: email,
		Error: message,
	})
}

func loginErrorResponse(err error) (int, string) {
	var appErr *core.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.StatusCode, appErr.Message
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, backend.ErrorMessage(err)
	case backend.IsRequestFailure(err):
		return http.StatusBadGateway, backend.ErrorMessage(err)
	default:
		return http.StatusInternalServerError, "Sign-in failed. Please try again."
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "INVALID_CREDENTIALS"
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusBadGateway:
		return "BACKEND_ERROR"
	default:
		return "LOGIN_FAILED"
	}
}
