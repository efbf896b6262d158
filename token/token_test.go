package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-bank-client/internal/config"
	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/token"
	"github.com/jrsteele09/go-bank-client/token/jwt"
	"github.com/jrsteele09/go-bank-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-bank-client/token/refresh/repofake"
	"github.com/jrsteele09/go-bank-client/users"
	fakeuserrepo "github.com/jrsteele09/go-bank-client/users/repofake"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager   *token.Manager
	inspector *jwt.Inspector
	user      *users.User
}

func newFixture(t *testing.T) fixture {
	cfg := config.Sandbox{}
	signer := token.NewHMACSigner("test-secret")
	userRepo := fakeuserrepo.NewFakeUserRepo()
	user := &users.User{Email: "ada@example.com", Role: users.RoleTeller, Active: true}
	require.NoError(t, userRepo.Upsert(user))

	revoked := token.NewDenylist()
	return fixture{
		manager:   token.New(jwt.NewCreator(cfg, signer), refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), cfg), userRepo, revoked),
		inspector: jwt.NewInspector(signer, revoked),
		user:      user,
	}
}

func TestIssueAndIntrospect(t *testing.T) {
	f := newFixture(t)

	pair, err := f.manager.Issue(f.user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	info, err := f.inspector.Introspect(pair.Access)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, f.user.ID, info.Sub)
	require.Equal(t, string(users.RoleTeller), info.Role)
	require.WithinDuration(t, pair.AccessExpiry, info.Exp, time.Second)

	other := jwt.NewInspector(token.NewHMACSigner("other-secret"), nil)
	info, err = other.Introspect(pair.Access)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	require.False(t, info.Active)

	_, err = f.inspector.Introspect("")
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestIntrospect_Expired(t *testing.T) {
	f := newFixture(t)
	issued := time.Now().Add(-time.Hour)
	jwt.NowTimeFunc = func() time.Time { return issued }
	pair, err := f.manager.Issue(f.user)
	jwt.NowTimeFunc = time.Now
	require.NoError(t, err)

	_, err = f.inspector.Introspect(pair.Access)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestRefreshRotates(t *testing.T) {
	f := newFixture(t)
	pair, err := f.manager.Issue(f.user)
	require.NoError(t, err)

	next, user, err := f.manager.Refresh(pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, user.ID)
	require.NotEqual(t, pair.Refresh, next.Refresh)

	_, _, err = f.manager.Refresh(pair.Refresh)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	pair, err := f.manager.Issue(f.user)
	require.NoError(t, err)
	info, err := f.inspector.Introspect(pair.Access)
	require.NoError(t, err)

	f.manager.Revoke(info.JTI, info.Exp, pair.Refresh)

	_, err = f.inspector.Introspect(pair.Access)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	_, _, err = f.manager.Refresh(pair.Refresh)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	require.True(t, f.manager.RevokedTokens().IsRevoked(info.JTI))
}

func TestDenylistDropsExpiredEntries(t *testing.T) {
	now := time.Now()
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	list := token.NewDenylist()
	list.Revoke("already-expired", now.Add(-time.Second))
	require.Zero(t, list.Len())

	list.Revoke("first", now.Add(time.Minute))
	list.Revoke("second", now.Add(time.Hour))
	require.Equal(t, 2, list.Len())
	require.True(t, list.IsRevoked("first"))

	now = now.Add(2 * time.Minute)
	require.False(t, list.IsRevoked("first"))
	require.True(t, list.IsRevoked("second"))

	// The next revocation sweeps entries whose tokens have expired.
	list.Revoke("third", now.Add(time.Minute))
	require.Equal(t, 2, list.Len())
	require.True(t, list.IsRevoked("third"))
}
