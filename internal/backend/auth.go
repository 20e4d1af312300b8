// AngelaMos | 2026
// auth.go

package backend

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse

	err := c.do(ctx, call{
		Method: http.MethodPost,
		Route:  "/auth/login",
		Path:   "/auth/login",
		Body:   LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.BearerToken() == "" {
		return nil, fmt.Errorf("POST /auth/login: response carried no token: %w", ErrRequestFailed)
	}

	return &resp, nil
}
