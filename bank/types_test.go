package bank_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-bank-client/bank"
	"github.com/stretchr/testify/require"
)

func TestScalarDecoding(t *testing.T) {
	var v struct {
		ID     bank.ID     `json:"id"`
		Amount bank.Amount `json:"amount"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"amount":"100.00"}`), &v))
	require.Equal(t, bank.ID("42"), v.ID)
	require.Equal(t, bank.Amount("100.00"), v.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"b7c1","amount":99.5}`), &v))
	require.Equal(t, bank.ID("b7c1"), v.ID)
	require.Equal(t, bank.Amount("99.5"), v.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"id":null,"amount":null}`), &v))
	require.Empty(t, v.ID)
	require.Empty(t, v.Amount)

	require.Error(t, json.Unmarshal([]byte(`{"id":true}`), &v))
}

func TestUserRoles(t *testing.T) {
	var nobody *bank.User
	require.False(t, nobody.IsStaff())
	require.True(t, (&bank.User{Role: bank.RoleAccountExecutive}).IsStaff())
	require.False(t, (&bank.User{Role: bank.RoleCustomer}).IsStaff())
}
