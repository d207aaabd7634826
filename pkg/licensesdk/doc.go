/*
Package licensesdk provides a client SDK for the admin API of the license service.

# Overview

A Client authenticates against the service, keeps the resulting bearer token
and exposes one method per admin endpoint for licenses and products. Every
method performs exactly one HTTP round-trip (SetToken performs none) and
returns either the decoded payload or a typed *APIError.

	client := licensesdk.NewClient("https://licenses.example.com")

	// Log in; the token is stored on the client
	_, err := client.Authenticate(ctx, "admin", "password")

	// Create a license
	data, err := client.CreateLicense(ctx, map[string]any{
		"customer_email": "buyer@example.com",
		"product_slug":   "my-plugin",
		"tier_code":      "01",
	})
	license, err := data.License()

	// List active licenses
	data, err = client.ListLicenses(ctx, &licensesdk.LicenseFilter{Status: "ACTIVE", Limit: 10})
	licenses, err := data.Licenses()

Tokens obtained elsewhere can be injected without a network call:

	exp := time.Now().Add(12 * time.Hour)
	client.SetToken(token, &exp) // nil expiry means the token never expires

# Payloads

Responses use the envelope {success, data, error}. Operations that return
Data hand back the raw "data" member (an empty object when the server sent
none) and decode it on demand with License, Licenses, Product, Products,
Activations, Object or Decode. Suspend, resume, freeze and revoke return the
whole *Envelope.

The resource decoders accept both snake_case and camelCase keys, preferring
snake_case, and never fail: missing required strings decode to "" and
missing optional fields to nil.

# Error Handling

All failures are *APIError values with a Kind, the service error Code and a
Message. Use errors.Is with the sentinels to branch:

	_, err := client.GetLicense(ctx, key)
	switch {
	case errors.Is(err, licensesdk.ErrResourceNotFound):
		// 404 with LICENSE_NOT_FOUND
	case errors.Is(err, licensesdk.ErrNotAuthenticated), errors.Is(err, licensesdk.ErrTokenExpired):
		// no request was sent, authenticate first
	case errors.Is(err, licensesdk.ErrAuthenticationFailure):
		// 401 or 403 from the server
	}

Response classification:

  - body is not JSON: ErrInvalidResponse (any status)
  - 401, 403: ErrAuthenticationFailure
  - 404 with LICENSE_NOT_FOUND: ErrResourceNotFound
  - 400: ErrValidationFailure
  - any other status >= 400: ErrAPIFailure, with the error object in Details
  - transport failure: ErrNetworkFailure, or ErrAuthenticationFailure during Authenticate

# Transport

The default transport uses net/http with a 30 second timeout. Inject any
Transport with WithTransport, for example to route through a proxy or in
tests. Retries are the transport's business; the client never retries.

# Thread Safety

The token is guarded by a mutex, but a Client represents one session:
concurrent Authenticate and SetToken calls race on which token wins. Use one
Client per logical session.
*/
package licensesdk
