package token

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-bank-client/users"
)

// Pair is what a successful login or refresh hands back to the client.
type Pair struct {
	Access        string    `json:"access"`
	Refresh       string    `json:"refresh"`
	AccessExpiry  time.Time `json:"-"`
	RefreshExpiry time.Time `json:"-"`
}

// AccessCreator signs access tokens.
type AccessCreator interface {
	CreateAccessToken(user *users.User) (string, time.Time, error)
}

// RefreshManager issues and rotates opaque refresh tokens.
type RefreshManager interface {
	Create(userID string) (string, error)
	Rotate(token string) (newToken, userID string, err error)
	Delete(token string) error
	Expiry() time.Time
}

// Manager issues token pairs and handles refresh and revocation.
type Manager struct {
	access   AccessCreator
	refresh  RefreshManager
	userRepo users.UserRepo
	revoked  RevokedAccess
}

func New(access AccessCreator, refresh RefreshManager, userRepo users.UserRepo, revoked RevokedAccess) *Manager {
	if revoked == nil {
		revoked = NewDenylist()
	}
	return &Manager{
		access:   access,
		refresh:  refresh,
		userRepo: userRepo,
		revoked:  revoked,
	}
}

// Issue creates a fresh pair for user, replacing any earlier refresh token.
func (m *Manager) Issue(user *users.User) (*Pair, error) {
	refreshToken, err := m.refresh.Create(user.ID)
	if err != nil {
		return nil, fmt.Errorf("[token.Issue] %w", err)
	}
	return m.pair(user, refreshToken)
}

// Refresh rotates refreshToken and returns a new pair for its owner.
func (m *Manager) Refresh(refreshToken string) (*Pair, *users.User, error) {
	newRefresh, userID, err := m.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	user, err := m.userRepo.GetByID(userID)
	if err != nil {
		_ = m.refresh.Delete(newRefresh)
		return nil, nil, fmt.Errorf("[token.Refresh] %w", err)
	}
	pair, err := m.pair(user, newRefresh)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Revoke ends a session. Either argument may be empty.
func (m *Manager) Revoke(jti string, accessExpiry time.Time, refreshToken string) {
	if jti != "" {
		m.revoked.Revoke(jti, accessExpiry)
	}
	if refreshToken != "" {
		_ = m.refresh.Delete(refreshToken)
	}
}

func (m *Manager) RevokedTokens() RevokedAccess {
	return m.revoked
}

func (m *Manager) pair(user *users.User, refreshToken string) (*Pair, error) {
	access, exp, err := m.access.CreateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("[token.pair] %w", err)
	}
	return &Pair{
		Access:        access,
		Refresh:       refreshToken,
		AccessExpiry:  exp,
		RefreshExpiry: m.refresh.Expiry(),
	}, nil
}
