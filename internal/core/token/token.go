// Package token signs and verifies the compact claims tokens used for both
// access and refresh credentials. The two roles share one format and differ
// only in TTL and in how the service layer stores them.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authhub/identity-service/internal/core/domain"
)

const defaultAlgorithm = "HS256"

// Codec issues and verifies JWTs with a symmetric secret. Rotating the
// secret invalidates every outstanding token at once.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec builds a Codec for the given secret and algorithm identifier
// (e.g. "HS256"). An empty algorithm falls back to HS256.
func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: secret must not be empty")
	}
	if algorithm == "" {
		algorithm = defaultAlgorithm
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown signing algorithm %q", algorithm)
	}
	return &Codec{secret: []byte(secret), method: method}, nil
}

// Issue signs a token carrying the given claims plus an "exp" of now+ttl.
// The caller's claims map is not mutated.
func (c *Codec) Issue(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	payload := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		payload[k] = v
	}
	payload["exp"] = jwt.NewNumericDate(time.Now().Add(ttl))

	signed, err := jwt.NewWithClaims(c.method, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and, when checkExpiry is true, the "exp"
// claim. checkExpiry=false exists for exactly one caller: the refresh path
// reads the subject out of an already-expired access token; the signature
// is still mandatory there.
//
// Returns domain.ErrTokenExpired for a well-signed but stale token and
// domain.ErrTokenInvalid for anything else that fails.
func (c *Codec) Verify(tokenString string, checkExpiry bool) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{c.method.Alg()})}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case err != nil:
		return nil, domain.ErrTokenInvalid
	case !parsed.Valid:
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// Subject extracts the "sub" claim from a verified claims map. An empty
// string means the claim is missing or not a string.
func Subject(claims jwt.MapClaims) string {
	sub, _ := claims["sub"].(string)
	return sub
}
