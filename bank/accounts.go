package bank

import (
	"context"

	"github.com/jrsteele09/go-bank-client/gateway"
)

const (
	PathDeposit  = "/accounts/deposit/"
	PathWithdraw = "/accounts/initiate-withdrawal/"
)

// Deposit credits an account. Only tellers may deposit; accountNumber may be empty
// when depositing to the caller's own primary account.
func (c *Client) Deposit(ctx context.Context, amount Amount, accountNumber string) (string, error) {
	body := map[string]any{"amount": amount}
	if accountNumber != "" {
		body["account_number"] = accountNumber
	}
	return c.message(ctx, gateway.Post(PathDeposit, body))
}

func (c *Client) InitiateWithdrawal(ctx context.Context, amount Amount, pin string) (string, error) {
	return c.message(ctx, gateway.Post(PathWithdraw, map[string]any{
		"amount": amount,
		"pin":    pin,
	}))
}
