package httpx

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/licensing/pkg/slogx"
)

const (
	// HeaderSignature carries "sha256=<hex hmac of the body>".
	HeaderSignature = "X-Signature"

	signaturePrefix = "sha256="

	// MaxWebhookBody bounds the size of a signed request body.
	MaxWebhookBody = 1 << 20
)

// Sign returns the X-Signature value for body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether header is a valid signature of body.
func VerifySignature(secret, body []byte, header string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// SignatureMiddleware rejects requests whose body is not signed with secret.
// The body is buffered and restored for the next handler. An empty secret
// disables verification.
func SignatureMiddleware(secret []byte) Middleware {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			body, err := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBody+1))
			_ = r.Body.Close()
			if err != nil {
				WriteError(w, http.StatusBadRequest, "INVALID_FORMAT", "unable to read request body")
				return
			}
			if len(body) > MaxWebhookBody {
				WriteError(w, http.StatusRequestEntityTooLarge, "INVALID_FORMAT", "request body too large")
				return
			}

			if !VerifySignature(secret, body, r.Header.Get(HeaderSignature)) {
				log.Warn("webhook signature rejected")
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
