package licensesdk

import (
	"encoding/json"
	"net/http"
)

const defaultErrorMessage = "API error"

// decodeResponse turns a transport result into an envelope or a classified
// APIError. Classification is status-first; a 404 is only ResourceNotFound
// when it carries LICENSE_NOT_FOUND.
func decodeResponse(resp *Response) (*Envelope, error) {
	body := []byte(resp.Body)
	if !json.Valid(body) {
		return nil, &APIError{
			Kind:       KindInvalidResponse,
			StatusCode: resp.Status,
			Code:       ErrorCodeValidationError,
			Message:    "invalid JSON response from server",
			Body:       resp.Body,
		}
	}

	env := parseEnvelope(body)
	env.StatusCode = resp.Status
	if resp.Status < http.StatusBadRequest {
		return env, nil
	}

	code := ErrorCodeValidationError
	message := defaultErrorMessage
	var details map[string]any
	if env.Error != nil {
		if env.Error.Code != "" {
			code = env.Error.Code
		}
		if env.Error.Message != "" {
			message = env.Error.Message
		}
		details = env.Error.Fields
	}

	switch {
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, newAPIError(KindAuthenticationFailure, resp.Status, code, message)

	case resp.Status == http.StatusNotFound && code == ErrorCodeLicenseNotFound:
		return nil, newAPIError(KindResourceNotFound, resp.Status, code, message)

	case resp.Status == http.StatusBadRequest:
		return nil, newAPIError(KindValidationFailure, resp.Status, code, message)

	default:
		apiErr := newAPIError(KindGenericAPIFailure, resp.Status, code, message)
		apiErr.Details = details
		return nil, apiErr
	}
}
