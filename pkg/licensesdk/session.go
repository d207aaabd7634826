package licensesdk

import (
	"math"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// authState holds the bearer token of a Client and its expiry. A nil
// expiresAt means the token never expires.
type authState struct {
	mu        sync.RWMutex
	token     *string
	expiresAt *time.Time
}

// issueHeaders returns the Authorization header for the current token.
func (s *authState) issueHeaders(now time.Time) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, newAPIError(
			KindNotAuthenticated, 0, ErrorCodeMissingToken,
			"not authenticated, call Authenticate or SetToken first",
		)
	}

	if s.expiresAt != nil && !now.Before(*s.expiresAt) {
		return nil, newAPIError(
			KindTokenExpired, 0, ErrorCodeInvalidToken,
			"token has expired, please re-authenticate",
		)
	}

	return map[string]string{
		HeaderAuthorization: BearerPrefix + *s.token,
	}, nil
}

// set overwrites the token and expiry without validation.
func (s *authState) set(token string, expiresAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = &token
	s.expiresAt = nil
	if expiresAt != nil {
		exp := *expiresAt
		s.expiresAt = &exp
	}
}

// recordAuthentication stores the token from a successful login envelope.
//
// A non-zero expires_in sets the expiry relative to now; a negative value
// yields a token that is already expired. When expires_in is absent or zero
// the exp claim of a JWT token is used, and a token without one never
// expires.
func (s *authState) recordAuthentication(env *Envelope, now time.Time) error {
	obj, err := env.Data.Object()
	if err != nil {
		return &APIError{
			Kind:    KindAuthenticationFailure,
			Code:    ErrorCodeAuthenticationError,
			Message: "authentication response data is not an object",
			Err:     err,
		}
	}

	token := stringField(obj, keyToken)
	if token == "" {
		return newAPIError(
			KindAuthenticationFailure, 0, ErrorCodeAuthenticationError,
			"authentication response did not include a token",
		)
	}

	var expiresAt *time.Time
	if expiresIn, ok := asInt(obj[keyExpiresIn]); ok && expiresIn != 0 {
		exp := expiryAfter(now, expiresIn)
		expiresAt = &exp
	} else if exp, ok := jwtExpiry(token); ok {
		expiresAt = &exp
	}

	s.set(token, expiresAt)
	return nil
}

// maxExpiresIn bounds expires_in so the Unix arithmetic below cannot
// overflow. It is roughly 31 million years.
const maxExpiresIn int64 = 1_000_000_000_000_000

// expiryAfter returns now plus seconds. Offsets beyond time.Duration's range
// are added in whole seconds.
func expiryAfter(now time.Time, seconds int) time.Time {
	secs := max(min(int64(seconds), maxExpiresIn), -maxExpiresIn)
	if secs > -maxDurationSeconds && secs < maxDurationSeconds {
		return now.Add(time.Duration(secs) * time.Second)
	}
	return time.Unix(now.Unix()+secs, int64(now.Nanosecond())).In(now.Location())
}

const maxDurationSeconds = int64(math.MaxInt64 / int64(time.Second))

// jwtExpiry reads the exp claim of an unverified JWT.
func jwtExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *authState) snapshot() (string, *time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return "", nil, false
	}
	var exp *time.Time
	if s.expiresAt != nil {
		e := *s.expiresAt
		exp = &e
	}
	return *s.token, exp, true
}
