// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
)

type Lister interface {
	ListUsers(ctx context.Context, token string) ([]backend.UserDTO, error)
}

type Service struct {
	backend Lister
}

func NewService(b Lister) *Service {
	return &Service{backend: b}
}

// ListUsers fetches every user and filters locally. The second return is
// the unfiltered count.
func (s *Service) ListUsers(
	ctx context.Context,
	token string,
	params ListUsersParams,
) ([]User, int, error) {
	if token == "" {
		return nil, 0, fmt.Errorf("list users: %w", core.ErrUnauthorized)
	}

	params.Normalize()

	dtos, err := s.backend.ListUsers(ctx, token)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, 0, len(dtos))
	for _, d := range dtos {
		u := FromDTO(d)
		if params.Matches(&u) {
			users = append(users, u)
		}
	}

	return users, len(dtos), nil
}
