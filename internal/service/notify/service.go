package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/push"
	"github.com/callgate/callgate-server/internal/store"
)

// Common errors for call notification.
var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrTargetRequired  = errors.New("target user id is required")
	ErrChannelRequired = errors.New("channel id is required")
	ErrTokenRequired   = errors.New("rtc token is required")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoDeviceToken   = errors.New("user has no registered device")
	ErrPushDisabled    = errors.New("push delivery is not enabled")
)

// IncomingCall is a request to alert a callee about an incoming call. The
// channel id and token are opaque pass-through values from a prior issuance.
type IncomingCall struct {
	TargetUserID  string
	CallerName    string
	ChannelID     string
	RTCToken      string
	ParticipantID int64
}

// Service relays incoming-call invitations: directory lookup, compose,
// single best-effort dispatch. Retry policy belongs to the sender.
type Service struct {
	directory       store.Store
	sender          push.Sender
	lookupTimeout   time.Duration
	dispatchTimeout time.Duration
	log             *zerolog.Logger
}

// New creates a notification relay service.
// sender can be nil when push delivery is not configured.
func New(directory store.Store, sender push.Sender, lookupTimeout, dispatchTimeout time.Duration, logger *zerolog.Logger) *Service {
	return &Service{
		directory:       directory,
		sender:          sender,
		lookupTimeout:   lookupTimeout,
		dispatchTimeout: dispatchTimeout,
		log:             logger,
	}
}

// NotifyIncomingCall resolves the callee's delivery address and dispatches a
// call invitation embedding the caller's token. The identity check comes
// before the directory lookup so unauthenticated callers cannot probe for
// user existence. The caller_id written into the invitation is always the
// verified identity, never a payload field.
func (s *Service) NotifyIncomingCall(ctx context.Context, ident auth.Identity, req IncomingCall) error {
	if ident.IsZero() {
		return ErrUnauthenticated
	}
	if req.TargetUserID == "" {
		return ErrTargetRequired
	}
	if req.ChannelID == "" {
		return ErrChannelRequired
	}
	if req.RTCToken == "" {
		return ErrTokenRequired
	}
	if s.sender == nil {
		return ErrPushDisabled
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	user, err := s.directory.GetUserByID(lookupCtx, req.TargetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("resolve delivery address: %w", err)
	}
	if user.DeviceToken == nil || *user.DeviceToken == "" {
		// Externally the same not-found condition as a missing entry;
		// the log keeps them apart.
		s.log.Debug().
			Str("target_user_id", req.TargetUserID).
			Msg("directory entry exists but carries no device token")
		return ErrNoDeviceToken
	}

	inv := &push.Invitation{
		ID:            uuid.New().String(),
		DeviceToken:   *user.DeviceToken,
		CallerID:      ident.UID(),
		CallerName:    req.CallerName,
		ChannelID:     req.ChannelID,
		RTCToken:      req.RTCToken,
		ParticipantID: req.ParticipantID,
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	if err := s.sender.Send(dispatchCtx, inv); err != nil {
		s.log.Error().Err(err).
			Str("caller_id", ident.UID()).
			Str("target_user_id", req.TargetUserID).
			Str("invitation_id", inv.ID).
			Msg("invitation dispatch failed")
		return fmt.Errorf("dispatch invitation: %w", err)
	}

	s.log.Info().
		Str("caller_id", ident.UID()).
		Str("target_user_id", req.TargetUserID).
		Str("channel_id", req.ChannelID).
		Str("invitation_id", inv.ID).
		Msg("call invitation sent")

	return nil
}
