package auth

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

type hmacVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewHMAC returns a Verifier for HS256 bearer tokens signed with secret.
// The token subject is the identity. A non-empty issuer is enforced.
func NewHMAC(secret, issuer string) Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &hmacVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

func (h *hmacVerifier) Identify(r *http.Request) (string, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return "", err
	}

	var claims jwt.RegisteredClaims
	_, err = h.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token subject is empty", ErrUnauthenticated)
	}
	return claims.Subject, nil
}
