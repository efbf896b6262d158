package sandbox

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *users.User
const ContextKeyUser ContextKey = "user"

// accessToken finds the access token in the Authorization header or the access cookie.
func (s *Server) accessToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, value, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(value)
		}
	}
	if c, err := r.Cookie(s.config.GetAccessCookieName()); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid access token with 401.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := s.inspector.Introspect(s.accessToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.repos.Users.GetByID(info.Sub)
		if err != nil || !user.Active {
			writeError(w, r, apperrors.ErrInvalidToken)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
	}
}

// RequireRole allows only users with one of roles. It must run after RequireAuth.
func (s *Server) RequireRole(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !currentUser(r).HasRole(roles...) {
				writeError(w, r, apperrors.ErrForbidden)
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) authenticated(h http.HandlerFunc, roles ...users.RoleType) http.HandlerFunc {
	if len(roles) == 0 {
		return ChainMiddleware(h, s.RequireAuth)
	}
	return ChainMiddleware(h, s.RequireAuth, s.RequireRole(roles...))
}

func currentUser(r *http.Request) *users.User {
	u, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return u
}
