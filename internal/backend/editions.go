// AngelaMos | 2026
// editions.go

package backend

import (
	"context"
	"net/http"
)

// ListEditions returns active and soft-deleted editions alike.
func (c *Client) ListEditions(ctx context.Context, token string) ([]EditionDTO, error) {
	var editions []EditionDTO

	err := c.do(ctx, call{
		Method: http.MethodGet,
		Route:  "/editions/all",
		Path:   "/editions/all",
		Token:  token,
	}, &editions)
	if err != nil {
		return nil, err
	}

	return editions, nil
}

func (c *Client) CreateEdition(
	ctx context.Context,
	token string,
	req EditionWriteRequest,
) error {
	return c.do(ctx, call{
		Method: http.MethodPost,
		Route:  "/editions",
		Path:   "/editions",
		Token:  token,
		Body:   req,
	}, nil)
}

func (c *Client) UpdateEdition(
	ctx context.Context,
	token, id string,
	req EditionWriteRequest,
) error {
	escaped, err := escapeID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, call{
		Method: http.MethodPut,
		Route:  "/editions/{id}",
		Path:   "/editions/" + escaped,
		Token:  token,
		Body:   req,
	}, nil)
}

func (c *Client) DeleteEdition(ctx context.Context, token, id string) error {
	escaped, err := escapeID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, call{
		Method: http.MethodDelete,
		Route:  "/editions/{id}",
		Path:   "/editions/" + escaped,
		Token:  token,
	}, nil)
}

func (c *Client) RestoreEdition(ctx context.Context, token, id string) error {
	escaped, err := escapeID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, call{
		Method: http.MethodPut,
		Route:  "/editions/{id}/restore",
		Path:   "/editions/" + escaped + "/restore",
		Token:  token,
	}, nil)
}

func (c *Client) PermanentlyDeleteEdition(ctx context.Context, token, id string) error {
	escaped, err := escapeID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, call{
		Method: http.MethodDelete,
		Route:  "/editions/{id}/permanent",
		Path:   "/editions/" + escaped + "/permanent",
		Token:  token,
	}, nil)
}
