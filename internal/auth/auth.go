// Package auth resolves the identity of an HTTP request.
//
// The service does not implement authentication itself: a Verifier is an
// external collaborator that yields a stable user identifier for an
// authenticated request, and the rest of the system trusts that identifier
// blindly. The JWT implementation here validates bearer tokens issued by
// whatever identity provider signed them.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier yields the user identifier for a request, or an error when no
// identity can be resolved.
type Verifier interface {
	Verify(r *http.Request) (string, error)
}

// JWTVerifier validates HS256 bearer tokens and extracts the subject claim
// as the user identifier.
type JWTVerifier struct {
	secretKey []byte
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTVerifier(secretKey string) *JWTVerifier {
	return &JWTVerifier{secretKey: []byte(secretKey)}
}

// Verify extracts and validates the bearer token from the Authorization
// header and returns the token's subject (falling back to the user_id claim).
func (v *JWTVerifier) Verify(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidToken
	}

	claims, err := v.validate(parts[1])
	if err != nil {
		return "", err
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (v *JWTVerifier) validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Generate creates a signed token for the given user. Used by tests and
// local tooling; production tokens come from the identity provider.
func (v *JWTVerifier) Generate(userID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(v.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
