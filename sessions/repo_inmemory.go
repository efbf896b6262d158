package sessions

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*SessionData // otp -> session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*SessionData),
	}
}

func (r *InMemoryRepo) Upsert(session *SessionData) error {
	if session.OTP == "" {
		return fmt.Errorf("otp is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.OTP] = &copied
	return nil
}

func (r *InMemoryRepo) Get(otp string) (*SessionData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[otp]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *InMemoryRepo) Delete(otp string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, otp)
	return nil
}

func (r *InMemoryRepo) DeleteForUser(userID string, purpose Purpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for otp, s := range r.sessions {
		if s.UserID == userID && s.Purpose == purpose {
			delete(r.sessions, otp)
		}
	}
	return nil
}
