// Package auth turns bearer tokens into verified identities.
//
// Credential issuance lives with the identity provider; this package only
// checks HS256 signatures and extracts the (user id, display name) pair the
// core consumes. Token generation is exposed for tests and the drill tool.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okian/rampart/internal/domain/model"
)

// Claims carries the registered claims plus the user id and display name.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Name   string `json:"name"`
}

// Verifier validates bearer tokens against a shared HS256 secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates token and returns the identity it asserts.
func (v *Verifier) Verify(token string) (model.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return model.Identity{}, ErrInvalidToken
	}
	name := claims.Name
	if name == "" {
		name = "Anonymous"
	}
	return model.Identity{UserID: claims.UserID, Name: name}, nil
}

// VerifyHeader extracts the token from an Authorization header value
// ("Bearer <token>") and verifies it.
func (v *Verifier) VerifyHeader(header string) (model.Identity, error) {
	if header == "" {
		return model.Identity{}, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return model.Identity{}, ErrMissingToken
	}
	return v.Verify(parts[1])
}

// GenerateToken signs a token asserting id, valid for ttl.
func GenerateToken(id model.Identity, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: id.UserID,
		Name:   id.Name,
	})
	return token.SignedString(secret)
}
