package bank

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-bank-client/gateway"
	"github.com/rs/zerolog/log"
)

// API paths, relative to the gateway base URL.
const (
	PathLogin      = "/auth/login/"
	PathVerifyOTP  = "/auth/verify-otp/"
	PathLogout     = "/auth/logout/"
	PathMe         = "/auth/users/me/"
	PathUsers      = "/auth/users/"
	PathActivation = "/auth/users/activation/"
)

// Login starts a session. The backend emails a one-time password that completes it
// via VerifyOTP.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.message(ctx, gateway.Post(PathLogin, map[string]string{
		"email":    email,
		"password": password,
	}))
}

// VerifyOTP completes a login and returns the signed-in user.
func (c *Client) VerifyOTP(ctx context.Context, otp string) (*User, error) {
	resp, err := c.send(ctx, gateway.Post(PathVerifyOTP, map[string]string{"otp": otp}))
	if err != nil {
		return nil, err
	}
	user := &User{}
	if err := decode(unwrap(resp.JSON(), "user"), user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		return c.Me(ctx)
	}
	return user, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.send(ctx, gateway.Get(PathMe, nil))
	if err != nil {
		return nil, err
	}
	user := &User{}
	if err := resp.Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckAuth returns the signed-in user, or nil when there is no valid session.
func (c *Client) CheckAuth(ctx context.Context) (*User, error) {
	user, err := c.Me(ctx)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, gateway.ErrAuthExpired), isStatus(err, http.StatusUnauthorized):
		return nil, nil
	default:
		return nil, err
	}
}

// Logout ends the session. Local credentials are cleared even when the backend call
// fails.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.send(ctx, gateway.Post(PathLogout, nil)); err != nil {
		log.Warn().Err(err).Msg("Logout request failed, clearing local session")
	}
	return c.gateway.ClearCredentials()
}

type Registration struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	RePassword       string `json:"re_password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	IDNo             string `json:"id_no"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

// Register creates a user. The account stays inactive until Activate is called with
// the uid and token from the activation email.
func (c *Client) Register(ctx context.Context, r Registration) (*User, error) {
	if r.Password != r.RePassword {
		return nil, ErrPasswordMismatch
	}
	resp, err := c.send(ctx, gateway.Post(PathUsers, r))
	if err != nil {
		return nil, err
	}
	user := &User{}
	if err := resp.Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) Activate(ctx context.Context, uid, token string) error {
	_, err := c.send(ctx, gateway.Post(PathActivation, map[string]string{
		"uid":   uid,
		"token": token,
	}))
	return err
}
