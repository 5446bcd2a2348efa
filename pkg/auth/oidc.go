package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDC discovers the issuer's provider metadata and returns a Verifier
// for ID tokens issued to clientID.
func NewOIDC(ctx context.Context, issuer, clientID string) (Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", issuer, err)
	}
	return OIDC(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

// OIDC wraps an existing ID token verifier.
func OIDC(v *oidc.IDTokenVerifier) Verifier {
	return &oidcVerifier{verifier: v}
}

func (o *oidcVerifier) Identify(r *http.Request) (string, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return "", err
	}

	token, err := o.verifier.Verify(r.Context(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if token.Subject == "" {
		return "", fmt.Errorf("%w: token subject is empty", ErrUnauthenticated)
	}
	return token.Subject, nil
}
