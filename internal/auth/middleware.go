package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// HeaderName is the request header that carries the raw credential. It is a
// bare token, not an "Authorization: Bearer ..." value.
const HeaderName = "x-auth-token"

// Rejection reasons sent to the client. Every invalid-credential cause shares one
// message so a caller cannot probe which check failed.
const (
	ReasonMissing = "no credential, authorization denied"
	ReasonInvalid = "credential is not valid"
)

// Verifier is what RequireAuth needs from a TokenService.
type Verifier interface {
	Verify(raw string) (string, error)
}

// contextKey is unexported so only this package can read or write identity
// values in a request context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the credential from the x-auth-token header, verifies it, and stores
// the identity in the request context. A missing or invalid credential ends the
// request with 401 before any handler runs.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... before ...
//	        next.ServeHTTP(w, r)
//	    })
//	}
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := v.Verify(r.Header.Get(HeaderName))
			if err != nil {
				writeUnauthorized(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying the authenticated identity.
// Exported for handler tests that bypass the middleware.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from the context.
//
// Returns ("", false) when the request did not pass through RequireAuth.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(string)
	return id, ok && id != ""
}

type rejection struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	reason := ReasonInvalid
	if errors.Is(err, ErrMissingCredential) {
		reason = ReasonMissing
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(rejection{Error: "unauthorized", Message: reason})
}
