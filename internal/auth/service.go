// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	outcomeSuccess = "success"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
}

type SessionManager interface {
	Login(w http.ResponseWriter, r *http.Request, u user.User, token string) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

type LoginObserver interface {
	ObserveLogin(outcome string)
}

type Service struct {
	backend   Authenticator
	sessions  SessionManager
	validator *validator.Validate
	observer  LoginObserver
}

func NewService(b Authenticator, sessions SessionManager, observer LoginObserver) *Service {
	return &Service{
		backend:   b,
		sessions:  sessions,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		observer:  observer,
	}
}

// Login checks the credentials with the backend and, on success, stores the
// returned user and token in a new session. Invalid input never reaches the
// backend.
func (s *Service) Login(
	w http.ResponseWriter,
	r *http.Request,
	req LoginRequest,
) (*user.User, error) {
	if err := s.validator.Struct(req); err != nil {
		s.observe(outcomeInvalid)
		return nil, fmt.Errorf("login: %w",
			core.NewAppError(err, core.FormatValidationError(err),
				http.StatusUnprocessableEntity, "VALIDATION_ERROR"))
	}

	resp, err := s.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
			s.observe(outcomeInvalid)
			return nil, fmt.Errorf("login: %w: %w", ErrInvalidCredentials, err)
		}
		s.observe(outcomeError)
		return nil, fmt.Errorf("login: %w", err)
	}

	u := user.FromDTO(resp.User)

	if err := s.sessions.Login(w, r, u, resp.BearerToken()); err != nil {
		s.observe(outcomeError)
		return nil, fmt.Errorf("login: %w", err)
	}

	s.observe(outcomeSuccess)
	return &u, nil
}

func (s *Service) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := s.sessions.Logout(w, r); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveLogin(outcome)
	}
}
