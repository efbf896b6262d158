package sessions

import (
	"time"
)

// Purpose says what a one-time password unlocks.
type Purpose string

const (
	PurposeLogin    Purpose = "login"
	PurposeTransfer Purpose = "transfer"
)

// SessionData is a step-up challenge waiting for its one-time password. Sessions are
// short-lived and keyed by the OTP itself, which is all the client sends back.
type SessionData struct {
	OTP       string
	UserID    string
	Purpose   Purpose
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *SessionData) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type Repo interface {
	Upsert(session *SessionData) error
	Get(otp string) (*SessionData, error)
	Delete(otp string) error
	DeleteForUser(userID string, purpose Purpose) error
}
