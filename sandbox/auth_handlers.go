package sandbox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/ledger"
	"github.com/jrsteele09/go-bank-client/sessions"
	"github.com/jrsteele09/go-bank-client/token"
	"github.com/jrsteele09/go-bank-client/users"
	"github.com/rs/zerolog/log"
)

// userView is the public representation of a user.
func userView(u *users.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"full_name":  u.FullName(),
		"id_no":      u.IDNo,
		"role":       string(u.Role),
		"is_active":  u.Active,
	}
}

// LoginHandler checks the password and emails a login OTP. No session exists until
// the OTP is verified.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		errs := fieldErrors{}
		errs.require(body, "email", "password")
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		user, err := s.repos.Users.GetByEmail(body.Get("email").String())
		if err != nil || !user.CheckPassword(body.Get("password").String()) {
			writeError(w, r, apperrors.ErrInvalidCredentials)
			return
		}
		if !user.Active {
			writeError(w, r, apperrors.ErrUserInactive)
			return
		}

		session, err := s.otp.Issue(user.ID, sessions.PurposeLogin)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.mailer.Send(user.Email, "Your login OTP", fmt.Sprintf("Your OTP is %s", session.OTP))
		writeMessage(w, http.StatusOK, "OTP sent to your email", nil)
	}
}

// VerifyOTPHandler completes a login, setting the session cookies and echoing the
// tokens in the body for clients that cannot use cookies.
func (s *Server) VerifyOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		session, err := s.otp.Redeem(strings.TrimSpace(body.Get("otp").String()), sessions.PurposeLogin)
		if err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.repos.Users.GetByID(session.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		pair, err := s.tokens.Issue(user)
		if err != nil {
			writeError(w, r, err)
			return
		}
		_ = s.repos.Users.SetLastLogin(user.Email, time.Now())
		s.SetSessionCookies(w, pair)
		log.Info().Str("user_id", user.ID).Msg("User logged in")
		writeMessage(w, http.StatusOK, "Login successful", map[string]any{
			"user":    userView(user),
			"access":  pair.Access,
			"refresh": pair.Refresh,
		})
	}
}

// RefreshHandler rotates the refresh token from the refresh cookie or the body.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		refreshToken := body.Get("refresh").String()
		if refreshToken == "" {
			if c, err := r.Cookie(s.config.GetRefreshCookieName()); err == nil {
				refreshToken = c.Value
			}
		}
		if refreshToken == "" {
			writeError(w, r, apperrors.ErrNotAuthenticated)
			return
		}

		pair, user, err := s.tokens.Refresh(refreshToken)
		if err != nil {
			s.ClearSessionCookies(w)
			writeError(w, r, err)
			return
		}
		s.SetSessionCookies(w, pair)
		log.Debug().Str("user_id", user.ID).Msg("Session refreshed")
		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler revokes whatever session the caller presents. It never fails.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var jti string
		var pair token.Pair
		if info, err := s.inspector.Introspect(s.accessToken(r)); err == nil {
			jti = info.JTI
			pair.AccessExpiry = info.Exp
		}
		if _, body, err := readJSON(w, r); err == nil {
			pair.Refresh = body.Get("refresh").String()
		}
		if pair.Refresh == "" {
			if c, err := r.Cookie(s.config.GetRefreshCookieName()); err == nil {
				pair.Refresh = c.Value
			}
		}
		s.tokens.Revoke(jti, pair.AccessExpiry, pair.Refresh)
		s.ClearSessionCookies(w)
		writeMessage(w, http.StatusOK, "Logged out successfully", nil)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userView(currentUser(r)))
	}
}

// RegisterHandler creates an inactive customer and emails the activation details.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		errs := fieldErrors{}
		errs.require(body, "email", "password", "re_password", "first_name", "last_name", "id_no", "security_question", "security_answer")
		email := strings.TrimSpace(body.Get("email").String())
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				errs.add("email", "Enter a valid email address.")
			} else if _, err := s.repos.Users.GetByEmail(email); err == nil {
				errs.add("email", "user with this email already exists.")
			}
		}
		password := body.Get("password").String()
		if password != "" {
			if err := users.ValidatePasswordStrength(password); err != nil {
				errs.add("password", err.Error())
			}
		}
		if password != body.Get("re_password").String() {
			errs.add("non_field_errors", "The two password fields didn't match.")
		}
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		activation, err := randomToken()
		if err != nil {
			writeError(w, r, err)
			return
		}
		user := &users.User{
			Email:            email,
			Username:         strings.SplitN(email, "@", 2)[0],
			FirstName:        body.Get("first_name").String(),
			LastName:         body.Get("last_name").String(),
			IDNo:             body.Get("id_no").String(),
			Role:             users.RoleCustomer,
			SecurityQuestion: body.Get("security_question").String(),
			DateJoined:       time.Now(),
			ActivationToken:  activation,
		}
		if err := user.SetPassword(password); err != nil {
			writeError(w, r, err)
			return
		}
		if err := user.SetSecurityAnswer(body.Get("security_answer").String()); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			if apperrors.Is(err, apperrors.ErrUserExists) {
				writeJSON(w, http.StatusBadRequest, fieldErrors{"email": {"user with this email already exists."}})
				return
			}
			writeError(w, r, err)
			return
		}

		s.mailer.Send(user.Email, "Activate your account", fmt.Sprintf("uid=%s token=%s", user.ID, activation))
		writeJSON(w, http.StatusCreated, userView(user))
	}
}

// ActivateHandler activates a registered user and opens their first account.
func (s *Server) ActivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.repos.Users.GetByActivationToken(body.Get("token").String())
		if err != nil || user.ID != body.Get("uid").String() {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid activation link"})
			return
		}
		if err := s.activate(user); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) activate(user *users.User) error {
	if err := s.repos.Users.SetActive(user.Email, true); err != nil {
		return err
	}
	if user.Role != users.RoleCustomer {
		return nil
	}
	if len(s.ledger.Accounts(user.ID)) == 0 {
		s.ledger.OpenAccount(user.ID, ledger.AccountTypeCurrent)
	}
	return s.ledger.CreateProfile(user.ID, ledger.ProfileFields{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
