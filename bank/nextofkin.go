package bank

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-bank-client/gateway"
)

const PathNextOfKin = "/profiles/my-profile/next-of-kin/"

func nextOfKinPath(id ID) string {
	return fmt.Sprintf("%s%s/", PathNextOfKin, id)
}

func (c *Client) ListNextOfKin(ctx context.Context) ([]NextOfKin, error) {
	resp, err := c.send(ctx, gateway.Get(PathNextOfKin, nil))
	if err != nil {
		if isNotFound(err) {
			return []NextOfKin{}, nil
		}
		return nil, err
	}
	kin := []NextOfKin{}
	if err := decode(listOf(unwrap(resp.JSON(), "next_of_kin")), &kin); err != nil {
		return nil, err
	}
	return kin, nil
}

func (c *Client) CreateNextOfKin(ctx context.Context, kin NextOfKin) (*NextOfKin, error) {
	kin.ID = ""
	return c.saveNextOfKin(ctx, gateway.Post(PathNextOfKin, kin))
}

func (c *Client) UpdateNextOfKin(ctx context.Context, id ID, kin NextOfKin) (*NextOfKin, error) {
	kin.ID = ""
	return c.saveNextOfKin(ctx, gateway.Put(nextOfKinPath(id), kin))
}

func (c *Client) DeleteNextOfKin(ctx context.Context, id ID) error {
	_, err := c.send(ctx, gateway.Delete(nextOfKinPath(id)))
	return err
}

func (c *Client) saveNextOfKin(ctx context.Context, req *gateway.Request) (*NextOfKin, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	saved := &NextOfKin{}
	if err := decode(unwrap(resp.JSON(), "next_of_kin"), saved); err != nil {
		return nil, err
	}
	return saved, nil
}
