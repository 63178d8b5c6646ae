package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/rtctoken"
)

// Common errors for token issuance.
var (
	ErrUnauthenticated      = errors.New("caller is not authenticated")
	ErrChannelRequired      = errors.New("channel name is required")
	ErrInvalidParticipantID = errors.New("participant id must not be negative")
)

// Grant is the result of a successful token issuance.
type Grant struct {
	Token         string
	ChannelName   string
	ParticipantID int64
	AppID         string
	ExpiresAt     time.Time
}

// Service issues signed join tokens for the media backend. It keeps no state
// between calls: token validity is self-contained and verified downstream.
type Service struct {
	signer   rtctoken.Signer
	appID    string
	tokenTTL time.Duration
	log      *zerolog.Logger
}

// New creates a token issuance service.
func New(signer rtctoken.Signer, appID string, tokenTTL time.Duration, logger *zerolog.Logger) *Service {
	return &Service{
		signer:   signer,
		appID:    appID,
		tokenTTL: tokenTTL,
		log:      logger,
	}
}

// Issue validates the request and mints a publisher join token for the
// channel. The identity check comes before any other validation so
// unauthenticated callers learn nothing about argument handling.
func (s *Service) Issue(ctx context.Context, ident auth.Identity, channelName string, participantID int64) (*Grant, error) {
	if ident.IsZero() {
		return nil, ErrUnauthenticated
	}
	if channelName == "" {
		return nil, ErrChannelRequired
	}
	if participantID < 0 {
		return nil, ErrInvalidParticipantID
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(s.tokenTTL)

	token, err := s.signer.JoinToken(ctx, channelName, participantID, rtctoken.RolePublisher, s.tokenTTL)
	if err != nil {
		// The wrapped error stays internal; handlers surface a generic message.
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().
		Str("user_id", ident.UID()).
		Str("channel", channelName).
		Int64("participant_id", participantID).
		Time("issued_at", issuedAt).
		Time("expires_at", expiresAt).
		Msg("join token issued")

	return &Grant{
		Token:         token,
		ChannelName:   channelName,
		ParticipantID: participantID,
		AppID:         s.appID,
		ExpiresAt:     expiresAt,
	}, nil
}
