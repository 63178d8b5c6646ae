package push

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetrySender wraps a Sender with exponential-backoff retries. Retry policy
// lives here rather than in the relay core so the relay stays a single
// best-effort call and the policy can be swapped or removed per deployment.
type RetrySender struct {
	next            Sender
	maxTries        uint
	initialInterval time.Duration
}

// NewRetrySender decorates next with up to maxTries attempts.
func NewRetrySender(next Sender, maxTries int, initialInterval time.Duration) *RetrySender {
	if maxTries < 1 {
		maxTries = 1
	}
	return &RetrySender{
		next:            next,
		maxTries:        uint(maxTries),
		initialInterval: initialInterval,
	}
}

// Send attempts delivery, backing off between failures. Context cancellation
// stops the retry loop.
func (r *RetrySender) Send(ctx context.Context, inv *Invitation) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, r.next.Send(ctx, inv)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(r.maxTries))
	return err
}

// Ensure RetrySender implements Sender
var _ Sender = (*RetrySender)(nil)
