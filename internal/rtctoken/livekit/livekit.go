package livekit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/callgate/callgate-server/internal/rtctoken"
)

// Signer implements rtctoken.Signer using LiveKit access tokens.
type Signer struct {
	appID     string
	appSecret string
}

// New creates a LiveKit token signer.
func New(appID, appSecret string) *Signer {
	return &Signer{
		appID:     appID,
		appSecret: appSecret,
	}
}

// JoinToken creates a join token for the given channel and participant.
// Channels are implicit on the backend: the room named here is created when
// the first participant joins.
func (s *Signer) JoinToken(_ context.Context, channel string, participantID int64, role rtctoken.Role, ttl time.Duration) (string, error) {
	at := auth.NewAccessToken(s.appID, s.appSecret)

	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     channel,
	}
	grant.SetCanPublish(role == rtctoken.RolePublisher)
	grant.SetCanSubscribe(true)

	at.SetVideoGrant(grant).
		SetIdentity(strconv.FormatInt(participantID, 10)).
		SetValidFor(ttl)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("sign join token: %w", err)
	}
	return token, nil
}

// Ensure Signer implements rtctoken.Signer
var _ rtctoken.Signer = (*Signer)(nil)
