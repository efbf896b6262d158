package bank

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type Dashboard struct {
	Profile      *Profile
	Cards        []VirtualCard
	Transactions []Transaction
}

// Dashboard loads the profile, cards and recent transactions concurrently. A missing
// profile is not an error; the dashboard is returned with Profile nil.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.Profile(ctx)
		if errors.Is(err, ErrProfileNotFound) {
			return nil
		}
		d.Profile = p
		return err
	})
	g.Go(func() error {
		cards, err := c.ListCards(ctx)
		d.Cards = cards
		return err
	})
	g.Go(func() error {
		txs, err := c.Transactions(ctx, TransactionFilter{})
		d.Transactions = txs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
