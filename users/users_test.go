package users_test

import (
	"testing"

	"github.com/jrsteele09/go-bank-client/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashCost(t *testing.T) {
	t.Cleanup(func() { users.HashCost = bcrypt.DefaultCost })
	users.HashCost = bcrypt.MinCost

	hash, err := users.HashPassword("Sandbox123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
	require.True(t, users.CheckPasswordHash("Sandbox123", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Sandbox123"))
	require.Error(t, users.ValidatePasswordStrength("Sh0rt"))
	require.Error(t, users.ValidatePasswordStrength("alllowercase1"))
	require.Error(t, users.ValidatePasswordStrength("ALLUPPERCASE1"))
	require.Error(t, users.ValidatePasswordStrength("NoNumbersHere"))
}

func TestUserCredentials(t *testing.T) {
	u := &users.User{FirstName: "Ada", LastName: "Lovelace", Role: users.RoleTeller}
	require.NoError(t, u.SetPassword("Sandbox123"))
	require.NoError(t, u.SetSecurityAnswer("  Blue  Whale "))

	require.True(t, u.CheckPassword("Sandbox123"))
	require.False(t, u.CheckPassword("sandbox123"))
	require.True(t, u.CheckSecurityAnswer("blue whale"))
	require.False(t, u.CheckSecurityAnswer("green"))

	require.Equal(t, "Ada Lovelace", u.FullName())
	require.True(t, u.IsStaff())
	require.False(t, (&users.User{Role: users.RoleCustomer}).IsStaff())
}
