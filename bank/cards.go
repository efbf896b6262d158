package bank

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-bank-client/gateway"
)

const PathVirtualCards = "/cards/virtual-cards/"

func cardPath(id ID) string {
	return fmt.Sprintf("%s%s/", PathVirtualCards, id)
}

// ListCards returns the user's virtual cards. Users without any card get an empty list.
func (c *Client) ListCards(ctx context.Context) ([]VirtualCard, error) {
	resp, err := c.send(ctx, gateway.Get(PathVirtualCards, nil))
	if err != nil {
		if isNotFound(err) {
			return []VirtualCard{}, nil
		}
		return nil, err
	}
	cards := []VirtualCard{}
	if err := decode(listOf(unwrap(resp.JSON(), "visa_card")), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) CreateCard(ctx context.Context, bankAccountNumber string) (*VirtualCard, error) {
	resp, err := c.send(ctx, gateway.Post(PathVirtualCards, map[string]string{
		"bank_account_number": bankAccountNumber,
	}))
	if err != nil {
		return nil, err
	}
	card := &VirtualCard{}
	if err := decode(unwrap(resp.JSON(), "visa_card"), card); err != nil {
		return nil, err
	}
	return card, nil
}

func (c *Client) TopUpCard(ctx context.Context, id ID, amount Amount) (string, error) {
	return c.message(ctx, gateway.Put(cardPath(id)+"top-up/", map[string]any{"amount": amount}))
}

func (c *Client) DeleteCard(ctx context.Context, id ID) error {
	_, err := c.send(ctx, gateway.Delete(cardPath(id)))
	return err
}
