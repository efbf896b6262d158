package sandbox

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-bank-client/token"
)

func (s *Server) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.GetCookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})
}

// SetSessionCookies hands the token pair to a browser as HttpOnly cookies.
func (s *Server) SetSessionCookies(w http.ResponseWriter, pair *token.Pair) {
	s.setCookie(w, s.config.GetAccessCookieName(), pair.Access, pair.AccessExpiry)
	s.setCookie(w, s.config.GetRefreshCookieName(), pair.Refresh, pair.RefreshExpiry)
}

func (s *Server) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{s.config.GetAccessCookieName(), s.config.GetRefreshCookieName()} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.config.GetCookieSecure(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}
