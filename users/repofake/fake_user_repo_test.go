package fakeuserrepo_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/users"
	fakeuserrepo "github.com/jrsteele09/go-bank-client/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	ada := &users.User{Email: "Ada@Example.com", ActivationToken: "tok"}
	require.NoError(t, repo.Upsert(ada))
	require.NotEmpty(t, ada.ID)

	require.ErrorIs(t, repo.Upsert(&users.User{Email: "ada@example.com"}), apperrors.ErrUserExists)

	got, err := repo.GetByEmail("ada@example.com")
	require.NoError(t, err)
	require.Equal(t, ada.ID, got.ID)

	got, err = repo.GetByActivationToken("tok")
	require.NoError(t, err)
	require.Equal(t, ada.ID, got.ID)

	require.NoError(t, repo.SetActive(ada.Email, true))
	require.True(t, ada.Active)
	require.Empty(t, ada.ActivationToken)

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastLogin(ada.Email, now))
	require.Equal(t, now, ada.LastLogin)

	require.NoError(t, repo.Upsert(&users.User{Email: "bob@example.com"}))
	list, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	list, err = repo.List(1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = repo.List(5, 10)
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, repo.Delete(ada.Email))
	_, err = repo.GetByID(ada.ID)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	require.ErrorIs(t, repo.Delete(ada.Email), apperrors.ErrUserNotFound)
}
