package bank

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-bank-client/gateway"
)

const (
	PathTransactions = "/accounts/transactions/"
	PathStatement    = "/accounts/transactions/pdf/"
)

// TransactionFilter narrows a transaction listing. Dates are YYYY-MM-DD; empty fields
// are ignored.
type TransactionFilter struct {
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

func (f TransactionFilter) query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"start_date":     f.StartDate,
		"end_date":       f.EndDate,
		"account_number": f.AccountNumber,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (c *Client) Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	resp, err := c.send(ctx, gateway.Get(PathTransactions, filter.query()))
	if err != nil {
		return nil, err
	}
	txs := []Transaction{}
	if err := decode(listOf(resp.JSON()), &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// RequestStatement asks the backend to email a PDF statement for the filtered range.
func (c *Client) RequestStatement(ctx context.Context, filter TransactionFilter) (string, error) {
	return c.message(ctx, gateway.Post(PathStatement, filter))
}
