// AngelaMos | 2026
// users.go

package backend

import (
	"context"
	"net/http"
)

func (c *Client) ListUsers(ctx context.Context, token string) ([]UserDTO, error) {
	var users []UserDTO

	err := c.do(ctx, call{
		Method: http.MethodGet,
		Route:  "/users",
		Path:   "/users",
		Token:  token,
	}, &users)
	if err != nil {
		return nil, err
	}

	return users, nil
}
