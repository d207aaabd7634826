package licensesdk

import (
	"context"
	"net/http"
)

// ============================================================================
// License Operations
// ============================================================================

// CreateLicense creates a license. Typical fields are customer_email,
// product_slug, tier_code, domain, activation_limit and expires_days.
func (c *Client) CreateLicense(ctx context.Context, fields map[string]any) (Data, error) {
	return c.doAuthData(ctx, http.MethodPost, EndpointLicensesCreate, objectBody(fields))
}

// ListLicenses lists licenses matching the filter. A nil filter lists all.
func (c *Client) ListLicenses(ctx context.Context, filter *LicenseFilter) (Data, error) {
	return c.doAuthData(ctx, http.MethodGet, withQuery(EndpointLicensesList, filter.Encode()), nil)
}

// GetLicense fetches a license by numeric id or license key.
func (c *Client) GetLicense(ctx context.Context, idOrKey string) (Data, error) {
	env, err := c.doAuthRequest(ctx, http.MethodGet, endpoint(EndpointLicensesGet, idOrKey), nil)
	if err != nil {
		return nil, err
	}

	// A failed envelope may still arrive with a non-error status.
	if env.Failed() && env.Error.Code == ErrorCodeLicenseNotFound {
		message := env.Error.Message
		if message == "" {
			message = "License not found"
		}
		return nil, newAPIError(KindResourceNotFound, env.StatusCode, env.Error.Code, message)
	}

	return env.Data, nil
}

// UpdateLicense updates the given fields of a license.
func (c *Client) UpdateLicense(ctx context.Context, idOrKey string, fields map[string]any) (Data, error) {
	return c.doAuthData(ctx, http.MethodPut, endpoint(EndpointLicensesUpdate, idOrKey), objectBody(fields))
}

// SuspendLicense suspends a license and returns the whole envelope.
func (c *Client) SuspendLicense(ctx context.Context, idOrKey string) (*Envelope, error) {
	return c.doAuthRequest(ctx, http.MethodPost, endpoint(EndpointLicensesSuspend, idOrKey), nil)
}

// ResumeLicense resumes a suspended license and returns the whole envelope.
func (c *Client) ResumeLicense(ctx context.Context, idOrKey string) (*Envelope, error) {
	return c.doAuthRequest(ctx, http.MethodPost, endpoint(EndpointLicensesResume, idOrKey), nil)
}

// FreezeLicense freezes the entitlements of a license and returns the whole envelope.
func (c *Client) FreezeLicense(ctx context.Context, idOrKey string) (*Envelope, error) {
	return c.doAuthRequest(ctx, http.MethodPost, endpoint(EndpointLicensesFreeze, idOrKey), nil)
}

// RevokeLicense revokes a license and returns the whole envelope.
func (c *Client) RevokeLicense(ctx context.Context, idOrKey string) (*Envelope, error) {
	return c.doAuthRequest(ctx, http.MethodDelete, endpoint(EndpointLicensesRevoke, idOrKey), nil)
}

// GetLicenseActivations lists the site activations of a license.
func (c *Client) GetLicenseActivations(ctx context.Context, idOrKey string) (Data, error) {
	return c.doAuthData(ctx, http.MethodGet, endpoint(EndpointLicensesActivations, idOrKey), nil)
}

func objectBody(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return fields
}
