package gateway

import "context"

// pendingRequest is a call parked behind an in-flight refresh. It is settled exactly
// once: nil resolves it (retry the call), an error rejects it.
type pendingRequest struct {
	done chan error
}

func newPendingRequest() *pendingRequest {
	return &pendingRequest{done: make(chan error, 1)}
}

func (p *pendingRequest) settle(err error) {
	p.done <- err
}

// wait blocks until the entry is settled or ctx ends, returning the refresh outcome or
// the context error. An abandoned entry is still settled later; the buffered channel
// keeps that from blocking.
func (p *pendingRequest) wait(ctx context.Context) (refreshErr error, err error) {
	select {
	case refreshErr = <-p.done:
		return refreshErr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// settleAll releases the queue in the order entries joined it.
func settleAll(queue []*pendingRequest, err error) {
	for _, p := range queue {
		p.settle(err)
	}
}
