package bank

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-bank-client/gateway"
)

const (
	PathTransferInitiate         = "/accounts/transfer/initiate/"
	PathTransferSecurityQuestion = "/accounts/transfer/verify-security-question/"
	PathTransferOTP              = "/accounts/transfer/verify-otp/"
)

type TransferStep int

const (
	TransferStart TransferStep = iota
	TransferSecurityQuestion
	TransferOTP
	TransferDone
)

func (s TransferStep) String() string {
	switch s {
	case TransferStart:
		return "start"
	case TransferSecurityQuestion:
		return "security question"
	case TransferOTP:
		return "otp"
	case TransferDone:
		return "done"
	default:
		return fmt.Sprintf("TransferStep(%d)", int(s))
	}
}

// Transfer walks a transfer through initiation, the security question and the emailed
// OTP. Each step must succeed before the next is accepted.
type Transfer struct {
	client *Client

	lock sync.Mutex
	step TransferStep
}

func (c *Client) NewTransfer() *Transfer {
	return &Transfer{client: c}
}

func (t *Transfer) Step() TransferStep {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.step
}

func (t *Transfer) Initiate(ctx context.Context, recipientAccount string, amount Amount, description string) (string, error) {
	return t.advance(ctx, TransferStart, gateway.Post(PathTransferInitiate, map[string]any{
		"recipient_account_number": recipientAccount,
		"amount":                   amount,
		"description":              description,
	}))
}

func (t *Transfer) AnswerSecurityQuestion(ctx context.Context, answer string) (string, error) {
	return t.advance(ctx, TransferSecurityQuestion, gateway.Post(PathTransferSecurityQuestion, map[string]string{
		"security_answer": answer,
	}))
}

func (t *Transfer) ConfirmOTP(ctx context.Context, otp string) (string, error) {
	return t.advance(ctx, TransferOTP, gateway.Post(PathTransferOTP, map[string]string{
		"otp": otp,
	}))
}

func (t *Transfer) advance(ctx context.Context, want TransferStep, req *gateway.Request) (string, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.step != want {
		return "", fmt.Errorf("%w: at %s, not %s", ErrTransferStep, t.step, want)
	}
	msg, err := t.client.message(ctx, req)
	if err != nil {
		return "", err
	}
	t.step++
	return msg, nil
}
