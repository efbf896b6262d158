package bank

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-bank-client/gateway"
)

const (
	PathPendingVerification = "/accounts/pending-verification/"
	PathVerifyAccount       = "/accounts/verify/"
)

// PendingVerification lists accounts awaiting KYC review. Account executives only.
func (c *Client) PendingVerification(ctx context.Context) ([]PendingAccount, error) {
	resp, err := c.send(ctx, gateway.Get(PathPendingVerification, nil))
	if err != nil {
		return nil, err
	}
	accounts := []PendingAccount{}
	if err := decode(listOf(resp.JSON()), &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) VerifyAccount(ctx context.Context, id ID, approve bool) (string, error) {
	return c.message(ctx, gateway.Patch(fmt.Sprintf("%s%s/", PathVerifyAccount, id), map[string]bool{
		"kyc_submitted": true,
		"kyc_verified":  approve,
	}))
}
