package jwt

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/token"
)

// TokenIntrospection is what the backend knows about an access token.
// If Active is false the other fields may not be populated.
type TokenIntrospection struct {
	Active bool      `json:"active"`
	Sub    string    `json:"sub,omitempty"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	JTI    string    `json:"jti,omitempty"`
	Exp    time.Time `json:"exp,omitempty"`
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector handles access token validation
type Inspector struct {
	signer         token.Signer
	revokedChecker RevokedChecker
}

func NewInspector(signer token.Signer, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		revokedChecker: revokedChecker,
	}
}

// Introspect verifies rawToken. An expired, revoked or malformed token is reported as
// inactive together with the reason.
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, apperrors.ErrNotAuthenticated
	}

	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey)
	if err != nil {
		if apperrors.Is(err, jwtlib.ErrTokenExpired) {
			return &TokenIntrospection{Active: false}, apperrors.ErrTokenExpired
		}
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: error extracting claims", apperrors.ErrInvalidToken)
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != TokenTypeAccess {
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: not an access token", apperrors.ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: missing exp", apperrors.ErrInvalidToken)
	}

	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		return &TokenIntrospection{Active: false}, apperrors.ErrInvalidToken
	}

	return &TokenIntrospection{
		Active: true,
		Sub:    sub,
		Email:  email,
		Role:   role,
		JTI:    jti,
		Exp:    exp.Time,
	}, nil
}
