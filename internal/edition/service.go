// AngelaMos | 2026
// service.go

package edition

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
)

// ConfirmPhrase must be typed exactly before a permanent delete is sent.
const ConfirmPhrase = "DELETE"

const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRestore = "restore"
	OpPurge   = "purge"
)

var ErrConfirmationRequired = fmt.Errorf("%w: confirmation required", core.ErrInvalidInput)

type Backend interface {
	ListEditions(ctx context.Context, token string) ([]backend.EditionDTO, error)
	CreateEdition(ctx context.Context, token string, req backend.EditionWriteRequest) error
	UpdateEdition(ctx context.Context, token, id string, req backend.EditionWriteRequest) error
	DeleteEdition(ctx context.Context, token, id string) error
	RestoreEdition(ctx context.Context, token, id string) error
	PermanentlyDeleteEdition(ctx context.Context, token, id string) error
}

type MutationObserver interface {
	ObserveMutation(operation, outcome string)
}

type Service struct {
	backend   Backend
	validator *validator.Validate
	observer  MutationObserver
}

func NewService(b Backend, observer MutationObserver) *Service {
	return &Service{
		backend:   b,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		observer:  observer,
	}
}

// List fetches every edition and filters locally. The second return is the
// unfiltered count.
func (s *Service) List(
	ctx context.Context,
	token string,
	params ListParams,
) ([]Edition, int, error) {
	if token == "" {
		return nil, 0, fmt.Errorf("list editions: %w", core.ErrUnauthorized)
	}

	dtos, err := s.backend.ListEditions(ctx, token)
	if err != nil {
		return nil, 0, fmt.Errorf("list editions: %w", err)
	}

	editions := make([]Edition, 0, len(dtos))
	for _, d := range dtos {
		e := FromDTO(d)
		if params.Matches(&e) {
			editions = append(editions, e)
		}
	}

	return editions, len(dtos), nil
}

// Get looks an edition up in the full list; the backend has no single-item
// read.
func (s *Service) Get(ctx context.Context, token, id string) (*Edition, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("get edition: %w", core.NotFoundError("edition"))
	}

	editions, _, err := s.List(ctx, token, ListParams{ShowDeleted: true})
	if err != nil {
		return nil, fmt.Errorf("get edition: %w", err)
	}

	for i := range editions {
		if editions[i].ID == id {
			return &editions[i], nil
		}
	}

	return nil, fmt.Errorf("get edition %s: %w", id, core.NotFoundError("edition"))
}

func (s *Service) Create(ctx context.Context, token string, form Form) error {
	form.Normalize()
	if err := s.validate(form); err != nil {
		return fmt.Errorf("create edition: %w", err)
	}

	req := form.WriteRequest()
	req.Status = string(StatusActive)

	err := s.backend.CreateEdition(ctx, token, req)
	s.observe(OpCreate, err)
	if err != nil {
		return fmt.Errorf("create edition: %w", err)
	}

	return nil
}

func (s *Service) Update(ctx context.Context, token, id string, form Form) error {
	form.Normalize()
	if err := s.validate(form); err != nil {
		return fmt.Errorf("update edition: %w", err)
	}

	err := s.backend.UpdateEdition(ctx, token, id, form.WriteRequest())
	s.observe(OpUpdate, err)
	if err != nil {
		return fmt.Errorf("update edition %s: %w", id, err)
	}

	return nil
}

// SoftDelete marks an edition deleted. Nothing is sent unless the caller
// confirmed.
func (s *Service) SoftDelete(ctx context.Context, token, id string, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("delete edition %s: %w", id, ErrConfirmationRequired)
	}

	err := s.backend.DeleteEdition(ctx, token, id)
	s.observe(OpDelete, err)
	if err != nil {
		return fmt.Errorf("delete edition %s: %w", id, err)
	}

	return nil
}

func (s *Service) Restore(ctx context.Context, token, id string) error {
	err := s.backend.RestoreEdition(ctx, token, id)
	s.observe(OpRestore, err)
	if err != nil {
		return fmt.Errorf("restore edition %s: %w", id, err)
	}

	return nil
}

// PermanentDelete removes an edition for good once the typed phrase matches
// ConfirmPhrase exactly.
func (s *Service) PermanentDelete(ctx context.Context, token, id, phrase string) error {
	if phrase != ConfirmPhrase {
		return fmt.Errorf("purge edition %s: %w", id, ErrConfirmationRequired)
	}

	err := s.backend.PermanentlyDeleteEdition(ctx, token, id)
	s.observe(OpPurge, err)
	if err != nil {
		return fmt.Errorf("purge edition %s: %w", id, err)
	}

	return nil
}

func (s *Service) validate(form Form) error {
	if err := s.validator.Struct(form); err != nil {
		return core.NewAppError(fmt.Errorf("%w: %w", core.ErrInvalidInput, err),
			core.FormatValidationError(err),
			http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	}
	return nil
}

func (s *Service) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(op, core.Outcome(err))
	}
}
