package push

import "context"

// Invitation is a transport-ready incoming-call message. CallerID is always
// the verified identity of the requesting user; ID is a per-invitation nonce
// so receivers can drop replayed payloads.
type Invitation struct {
	ID            string
	DeviceToken   string
	CallerID      string
	CallerName    string
	ChannelID     string
	RTCToken      string
	ParticipantID int64
}

// Sender delivers a composed invitation. Delivery and retry state beyond a
// single attempt belongs to the implementation, not the caller.
type Sender interface {
	Send(ctx context.Context, inv *Invitation) error
}
