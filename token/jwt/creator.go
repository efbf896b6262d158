package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-bank-client/internal/config"
	"github.com/jrsteele09/go-bank-client/token"
	"github.com/jrsteele09/go-bank-client/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenTypeAccess marks access tokens so other JWTs signed with the same secret are rejected.
const TokenTypeAccess = "access"

// Creator handles access token creation
type Creator struct {
	config config.SandboxConfig
	signer token.Signer
}

func NewCreator(cfg config.SandboxConfig, signer token.Signer) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
	}
}

// CreateAccessToken returns a signed access token for user and its expiry.
func (c *Creator) CreateAccessToken(user *users.User) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(c.config.GetAccessTokenExpiry())
	claims := jwtlib.MapClaims{
		"sub":        user.ID,
		"email":      user.Email,
		"role":       string(user.Role),
		"token_type": TokenTypeAccess,
		"iat":        now.Unix(),
		"exp":        exp.Unix(),
		"jti":        uuid.New().String(), // Unique token ID for revocation
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, exp, nil
}
