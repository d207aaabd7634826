package licensesdk

import (
	"context"
	"net/http"
)

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate logs in with username and password and stores the returned
// token on the client. Network failures are reported as authentication
// failures; the original error remains reachable through errors.Unwrap.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Envelope, error) {
	resp, err := c.send(ctx, http.MethodPost, EndpointAuthLogin, LoginRequest{
		Username: username,
		Password: password,
	}, nil)
	if err != nil {
		if IsKind(err, KindNetworkFailure) {
			return nil, &APIError{
				Kind:    KindAuthenticationFailure,
				Code:    ErrorCodeAuthenticationError,
				Message: "network error during authentication",
				Err:     err,
			}
		}
		return nil, err
	}

	env, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}

	if !env.Success {
		code := ErrorCodeAuthenticationError
		message := "Authentication failed"
		if env.Error != nil {
			if env.Error.Code != "" {
				code = env.Error.Code
			}
			if env.Error.Message != "" {
				message = env.Error.Message
			}
		}
		return nil, newAPIError(KindAuthenticationFailure, resp.Status, code, message)
	}

	if err := c.auth.recordAuthentication(env, c.now()); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "authenticated with license service", "username", username)
	return env, nil
}
