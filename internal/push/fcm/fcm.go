package fcm

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/callgate/callgate-server/internal/push"
)

// Sender implements push.Sender using Firebase Cloud Messaging.
type Sender struct {
	client *messaging.Client
}

// New creates an FCM sender from a service account credentials file.
func New(ctx context.Context, credentialsFile string) (*Sender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	return &Sender{client: client}, nil
}

// Send dispatches an incoming-call invitation as an FCM data message. The
// data payload carries everything the callee's client needs to ring and join;
// the notification block covers clients that can only show system banners.
func (s *Sender) Send(ctx context.Context, inv *push.Invitation) error {
	msg := &messaging.Message{
		Token: inv.DeviceToken,
		Data: map[string]string{
			"type":          "video_call",
			"invitation_id": inv.ID,
			"caller_name":   inv.CallerName,
			"caller_id":     inv.CallerID,
			"channel_id":    inv.ChannelID,
			"rtc_token":     inv.RTCToken,
			"uid":           strconv.FormatInt(inv.ParticipantID, 10),
		},
		Notification: &messaging.Notification{
			Title: "Incoming Video Call",
			Body:  fmt.Sprintf("%s is calling you", inv.CallerName),
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("send fcm message: %w", err)
	}
	return nil
}

// Ensure Sender implements push.Sender
var _ push.Sender = (*Sender)(nil)
