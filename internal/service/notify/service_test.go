package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/push"
	"github.com/callgate/callgate-server/internal/store"
)

// fakeDirectory serves a fixed set of users and counts lookups.
type fakeDirectory struct {
	users   map[string]*store.User
	lookups int
}

func (f *fakeDirectory) GetUserByID(_ context.Context, id string) (*store.User, error) {
	f.lookups++
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeDirectory) UpsertDeviceToken(context.Context, string, string, string) error {
	return nil
}

func (f *fakeDirectory) ClearDeviceToken(context.Context, string) error { return nil }

func (f *fakeDirectory) Close() error { return nil }

// fakeSender records the last dispatched invitation.
type fakeSender struct {
	sent []*push.Invitation
	err  error
}

func (f *fakeSender) Send(_ context.Context, inv *push.Invitation) error {
	f.sent = append(f.sent, inv)
	return f.err
}

func strPtr(s string) *string { return &s }

func testIdentity(t *testing.T, uid, name string) auth.Identity {
	t.Helper()

	cfg := &auth.JWTConfig{Secret: []byte("test-secret"), TTL: time.Hour}
	token, err := auth.GenerateToken(cfg, uid, name)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	ident, err := auth.NewVerifier(cfg).Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	return ident
}

func newTestService(dir *fakeDirectory, sender push.Sender) *Service {
	logger := zerolog.New(nil)
	return New(dir, sender, time.Second, time.Second, &logger)
}

func validRequest() IncomingCall {
	return IncomingCall{
		TargetUserID:  "user-b",
		CallerName:    "Alice",
		ChannelID:     "room42",
		RTCToken:      "token-t",
		ParticipantID: 7,
	}
}

func TestNotify_RejectsUnauthenticatedBeforeLookup(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{}}
	sender := &fakeSender{}
	svc := newTestService(dir, sender)

	err := svc.NotifyIncomingCall(context.Background(), auth.Identity{}, validRequest())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if dir.lookups != 0 {
		t.Errorf("expected no directory lookup for unauthenticated caller, got %d", dir.lookups)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no dispatch, got %d", len(sender.sent))
	}
}

func TestNotify_UnknownTargetIsNotFoundWithoutDispatch(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{}}
	sender := &fakeSender{}
	svc := newTestService(dir, sender)
	ident := testIdentity(t, "user-a", "Alice")

	err := svc.NotifyIncomingCall(context.Background(), ident, validRequest())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no dispatch for unknown target, got %d", len(sender.sent))
	}
}

func TestNotify_EntryWithoutDeviceTokenIsNotFound(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{
		"user-b": {ID: "user-b", DisplayName: "Bob"},
	}}
	sender := &fakeSender{}
	svc := newTestService(dir, sender)
	ident := testIdentity(t, "user-a", "Alice")

	err := svc.NotifyIncomingCall(context.Background(), ident, validRequest())
	if !errors.Is(err, ErrNoDeviceToken) {
		t.Fatalf("expected ErrNoDeviceToken, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no dispatch without device token, got %d", len(sender.sent))
	}
}

func TestNotify_CallerIDComesFromVerifiedIdentity(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{
		"user-b": {ID: "user-b", DisplayName: "Bob", DeviceToken: strPtr("fcm-b")},
	}}
	sender := &fakeSender{}
	svc := newTestService(dir, sender)
	ident := testIdentity(t, "user-a", "Alice")

	// The payload claims to be someone else; only the display name is
	// caller-supplied, the propagated identity is the verified one.
	req := validRequest()
	req.CallerName = "Definitely Mallory"

	if err := svc.NotifyIncomingCall(context.Background(), ident, req); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(sender.sent))
	}

	inv := sender.sent[0]
	if inv.CallerID != "user-a" {
		t.Errorf("expected caller_id 'user-a' from verified identity, got %q", inv.CallerID)
	}
	if inv.CallerName != "Definitely Mallory" {
		t.Errorf("expected caller-supplied display name to pass through, got %q", inv.CallerName)
	}
	if inv.DeviceToken != "fcm-b" {
		t.Errorf("expected resolved device token 'fcm-b', got %q", inv.DeviceToken)
	}
	if inv.ChannelID != "room42" || inv.RTCToken != "token-t" || inv.ParticipantID != 7 {
		t.Errorf("expected opaque pass-through of channel/token/uid, got %+v", inv)
	}
	if inv.ID == "" {
		t.Error("expected a non-empty invitation nonce")
	}
}

func TestNotify_InvitationNoncesAreUnique(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{
		"user-b": {ID: "user-b", DeviceToken: strPtr("fcm-b")},
	}}
	sender := &fakeSender{}
	svc := newTestService(dir, sender)
	ident := testIdentity(t, "user-a", "Alice")

	for i := 0; i < 2; i++ {
		if err := svc.NotifyIncomingCall(context.Background(), ident, validRequest()); err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two dispatches, got %d", len(sender.sent))
	}
	if sender.sent[0].ID == sender.sent[1].ID {
		t.Error("expected distinct invitation nonces across dispatches")
	}
}

func TestNotify_DispatchFailureIsInternal(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{
		"user-b": {ID: "user-b", DeviceToken: strPtr("fcm-b")},
	}}
	sender := &fakeSender{err: errors.New("transport down")}
	svc := newTestService(dir, sender)
	ident := testIdentity(t, "user-a", "Alice")

	err := svc.NotifyIncomingCall(context.Background(), ident, validRequest())
	if err == nil {
		t.Fatal("expected error from failing transport")
	}
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrNoDeviceToken) {
		t.Fatalf("transport failure must not map to not-found, got %v", err)
	}
}

func TestNotify_MissingFieldsRejectedBeforeLookup(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{}}
	sender := &fakeSender{}
	svc := newTestService(dir, sender)
	ident := testIdentity(t, "user-a", "Alice")

	cases := []struct {
		name string
		mut  func(*IncomingCall)
		want error
	}{
		{"empty target", func(r *IncomingCall) { r.TargetUserID = "" }, ErrTargetRequired},
		{"empty channel", func(r *IncomingCall) { r.ChannelID = "" }, ErrChannelRequired},
		{"empty token", func(r *IncomingCall) { r.RTCToken = "" }, ErrTokenRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mut(&req)
			if err := svc.NotifyIncomingCall(context.Background(), ident, req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if dir.lookups != 0 {
		t.Errorf("expected no directory lookups for invalid requests, got %d", dir.lookups)
	}
}

func TestNotify_NilSenderIsUnavailable(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*store.User{}}
	logger := zerolog.New(nil)
	svc := New(dir, nil, time.Second, time.Second, &logger)
	ident := testIdentity(t, "user-a", "Alice")

	if err := svc.NotifyIncomingCall(context.Background(), ident, validRequest()); !errors.Is(err, ErrPushDisabled) {
		t.Fatalf("expected ErrPushDisabled, got %v", err)
	}
}
