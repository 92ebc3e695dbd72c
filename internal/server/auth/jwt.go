// Package auth verifies bearer JWTs and carries the caller's user id through
// request contexts. Tokens are issued elsewhere; GenerateToken exists for
// tooling and tests.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the subject's user id and, when the
// issuer knows it, the subscription tier a new credit account opens on.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Tier   string `json:"tier,omitempty"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return GenerateTierToken(userID, "", secretKey, validityDuration)
}

// GenerateTierToken is GenerateToken with a tier claim.
func GenerateTierToken(userID, tier string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Tier:   tier,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates an HS256 token and returns its user id.
// Failures match common.ErrorUnauthorized; expiry is common.ErrTokenExpired.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

type (
	ctxKey  struct{}
	tierKey struct{}
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// WithClaims stores the user id and tier claim of a verified token.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = WithUserID(ctx, c.UserID)
	if c.Tier != "" {
		ctx = context.WithValue(ctx, tierKey{}, c.Tier)
	}
	return ctx
}

// TierFromContext returns the tier claim of the caller's token, if any.
func TierFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tierKey{}).(string)
	return t, ok && t != ""
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
