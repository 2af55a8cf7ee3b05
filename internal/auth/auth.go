package auth

import (
	"context"
	"time"

	"github.com/campussync/complaint-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal placed into the request context
// by the auth middleware. Role gates and ownership checks read from it.
type Identity = internal.Identity

// IdentityFromContext reads the principal stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	return internal.IdentityFromContext(ctx)
}

// ContextWithIdentity stores the authenticated principal on the context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return internal.ContextWithIdentity(ctx, identity)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, email, role string) (token string, err error)
	GenerateRefreshToken(userID, email, role string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
