package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// GetJSON fetches path with the optional query and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + query.Encode()
	}
	resp, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// PostJSON sends in as JSON and decodes the response into out, which may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	resp, err := c.Do(ctx, http.MethodPost, path, in, nil)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// DeleteJSON issues a DELETE and decodes any response body into out.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
