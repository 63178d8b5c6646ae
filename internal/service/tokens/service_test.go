package tokens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/rtctoken"
)

// fakeSigner records calls and returns a canned token.
type fakeSigner struct {
	calls       int
	lastChannel string
	lastID      int64
	lastRole    rtctoken.Role
	lastTTL     time.Duration
	err         error
}

func (f *fakeSigner) JoinToken(_ context.Context, channel string, participantID int64, role rtctoken.Role, ttl time.Duration) (string, error) {
	f.calls++
	f.lastChannel = channel
	f.lastID = participantID
	f.lastRole = role
	f.lastTTL = ttl
	if f.err != nil {
		return "", f.err
	}
	return "signed-token", nil
}

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

func newTestService(signer rtctoken.Signer) *Service {
	logger := zerolog.New(nil)
	return New(signer, "test-app-id", time.Hour, &logger)
}

func TestIssue_RejectsUnauthenticated(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(signer)

	_, err := svc.Issue(context.Background(), auth.Identity{}, "room1", 0)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if signer.calls != 0 {
		t.Errorf("expected no signing for unauthenticated caller, got %d calls", signer.calls)
	}
}

func TestIssue_RejectsEmptyChannel(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(signer)
	ident := testIdentity(t, "user-a", "Alice")

	_, err := svc.Issue(context.Background(), ident, "", 5)
	if !errors.Is(err, ErrChannelRequired) {
		t.Fatalf("expected ErrChannelRequired, got %v", err)
	}
	if signer.calls != 0 {
		t.Errorf("expected no signing for empty channel, got %d calls", signer.calls)
	}
}

func TestIssue_RejectsNegativeParticipantID(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(signer)
	ident := testIdentity(t, "user-a", "Alice")

	_, err := svc.Issue(context.Background(), ident, "room1", -1)
	if !errors.Is(err, ErrInvalidParticipantID) {
		t.Fatalf("expected ErrInvalidParticipantID, got %v", err)
	}
	if signer.calls != 0 {
		t.Errorf("expected no signing for negative id, got %d calls", signer.calls)
	}
}

func TestIssue_SignsPublisherToken(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(signer)
	ident := testIdentity(t, "user-a", "Alice")

	before := time.Now()
	grant, err := svc.Issue(context.Background(), ident, "room42", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	after := time.Now()

	if grant.Token != "signed-token" {
		t.Errorf("expected signer token in grant, got %q", grant.Token)
	}
	if grant.ChannelName != "room42" {
		t.Errorf("expected channel 'room42', got %q", grant.ChannelName)
	}
	if grant.ParticipantID != 7 {
		t.Errorf("expected participant id 7, got %d", grant.ParticipantID)
	}
	if grant.AppID != "test-app-id" {
		t.Errorf("expected app id 'test-app-id', got %q", grant.AppID)
	}

	if signer.lastChannel != "room42" || signer.lastID != 7 {
		t.Errorf("signer got (%q, %d), want (room42, 7)", signer.lastChannel, signer.lastID)
	}
	if signer.lastRole != rtctoken.RolePublisher {
		t.Errorf("expected publisher role, got %q", signer.lastRole)
	}
	if signer.lastTTL != time.Hour {
		t.Errorf("expected 1h ttl, got %v", signer.lastTTL)
	}

	// Expiry = issuance + ttl within rounding tolerance.
	lo := before.Add(time.Hour).Add(-time.Second)
	hi := after.Add(time.Hour).Add(time.Second)
	if grant.ExpiresAt.Before(lo) || grant.ExpiresAt.After(hi) {
		t.Errorf("expiry %v outside [%v, %v]", grant.ExpiresAt, lo, hi)
	}
}

func TestIssue_DefaultsAnonymousParticipant(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(signer)
	ident := testIdentity(t, "user-a", "Alice")

	grant, err := svc.Issue(context.Background(), ident, "room1", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if grant.ParticipantID != 0 {
		t.Errorf("expected server-assigned participant id 0, got %d", grant.ParticipantID)
	}
	if signer.lastID != 0 {
		t.Errorf("expected signer to receive id 0, got %d", signer.lastID)
	}
}

func TestIssue_WrapsSignerFailure(t *testing.T) {
	signer := &fakeSigner{err: errors.New("hsm on fire")}
	svc := newTestService(signer)
	ident := testIdentity(t, "user-a", "Alice")

	_, err := svc.Issue(context.Background(), ident, "room1", 0)
	if err == nil {
		t.Fatal("expected error from failing signer")
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrChannelRequired) {
		t.Fatalf("signer failure must not map to a validation error, got %v", err)
	}
}
