// Package auth resolves the caller identity for a request.
// The identity is an opaque owner id; token issuance is out of scope.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/promptops/pkg/handlers"
)

// ErrUnauthenticated indicates the request carried no valid identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier extracts a caller identity from a request.
type Verifier interface {
	Identify(r *http.Request) (string, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// Identity returns the caller identity stored in ctx.
func Identity(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// Middleware rejects requests without a verifiable identity with 401
// and stores the identity in the request context otherwise.
func Middleware(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id, err := v.Identify(r)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// New builds the Verifier selected by cfg.Mode.
// OIDC mode performs provider discovery using ctx.
func New(ctx context.Context, cfg *Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeHMAC:
		return NewHMAC(cfg.Secret, cfg.Issuer), nil
	case ModeOIDC:
		return NewOIDC(ctx, cfg.Issuer, cfg.ClientID)
	case ModeHeader:
		return NewHeader(cfg.Header), nil
	}
	return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: authorization header is required", ErrUnauthenticated)
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: bearer token not found", ErrUnauthenticated)
	}
	return strings.TrimSpace(token), nil
}
