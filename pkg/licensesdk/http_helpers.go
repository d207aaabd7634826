package licensesdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// endpoint substitutes the escaped identifier into an endpoint template.
func endpoint(template, id string) string {
	return fmt.Sprintf(template, url.PathEscape(id))
}

// send dispatches to the transport. Errors that are not already an APIError
// are reported as network failures.
func (c *Client) send(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*Response, error) {
	var (
		resp *Response
		err  error
	)

	switch method {
	case http.MethodGet:
		resp, err = c.transport.Get(ctx, path, headers)
	case http.MethodPost:
		resp, err = c.transport.Post(ctx, path, body, headers)
	case http.MethodPut:
		resp, err = c.transport.Put(ctx, path, body, headers)
	case http.MethodDelete:
		resp, err = c.transport.Delete(ctx, path, headers)
	default:
		return nil, newAPIError(
			KindGenericAPIFailure, 0, ErrorCodeValidationError,
			"unsupported HTTP method: "+method,
		)
	}

	if err != nil {
		c.logger.DebugContext(ctx, "license api request failed", "method", method, "path", path, "error", err)

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		return nil, networkError(err)
	}
	if resp == nil {
		return nil, networkError(errors.New("transport returned no response"))
	}

	c.logger.DebugContext(ctx, "license api request", "method", method, "path", path, "status", resp.Status)
	return resp, nil
}

// doAuthRequest issues an authenticated request and decodes the response.
// A missing or expired token fails before the transport is called.
func (c *Client) doAuthRequest(ctx context.Context, method, path string, body any) (*Envelope, error) {
	headers, err := c.auth.issueHeaders(c.now())
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}

	return decodeResponse(resp)
}

// doAuthData is doAuthRequest returning only the data member.
func (c *Client) doAuthData(ctx context.Context, method, path string, body any) (Data, error) {
	env, err := c.doAuthRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ============================================================================
// Query strings
// ============================================================================

// LicenseFilter narrows ListLicenses. Zero values are omitted.
type LicenseFilter struct {
	Status string
	Limit  int
	Offset int

	// Extra holds any additional filters, encoded after the named ones in
	// key order.
	Extra url.Values
}

// Encode serialises the filter as status, limit, offset, then Extra.
func (f *LicenseFilter) Encode() string {
	if f == nil {
		return ""
	}

	var parts []string
	add := func(key, value string) {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	if f.Status != "" {
		add("status", f.Status)
	}
	if f.Limit != 0 {
		add("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset != 0 {
		add("offset", strconv.Itoa(f.Offset))
	}

	extraKeys := make([]string, 0, len(f.Extra))
	for key := range f.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		for _, value := range f.Extra[key] {
			add(key, value)
		}
	}

	return strings.Join(parts, "&")
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
