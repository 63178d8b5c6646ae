package rtctoken

import (
	"context"
	"time"
)

// Role is the privilege level encoded in a join token.
type Role string

const (
	// RolePublisher may send and receive media.
	RolePublisher Role = "publisher"
	// RoleSubscriber may only receive media.
	RoleSubscriber Role = "subscriber"
)

// Signer mints signed join tokens for the media backend. A token binds one
// channel, one participant, one role, and an expiry; the backend verifies it
// offline with the shared application secret.
type Signer interface {
	JoinToken(ctx context.Context, channel string, participantID int64, role Role, ttl time.Duration) (string, error)
}
