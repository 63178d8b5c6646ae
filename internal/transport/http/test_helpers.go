package http

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/push"
	"github.com/callgate/callgate-server/internal/store"
	"github.com/callgate/callgate-server/internal/store/sqlite"
)

const testJWTSecret = "test-secret-change-me"

// createTestStore creates an in-memory SQLite directory, optionally seeded.
func createTestStore(t *testing.T, seed func(*sql.DB) error) store.Store {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", seed)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testJWTConfig() *auth.JWTConfig {
	return &auth.JWTConfig{
		Secret:   []byte(testJWTSecret),
		Issuer:   "test",
		Audience: "test-clients",
		TTL:      time.Hour,
	}
}

func authVerifier() *auth.Verifier {
	return auth.NewVerifier(testJWTConfig())
}

// bearerToken mints a platform token for the given user, the way the
// external identity provider would.
func bearerToken(t *testing.T, uid, name string) string {
	t.Helper()

	token, err := auth.GenerateToken(testJWTConfig(), uid, name)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// capturingSender is a push.Sender that records invitations.
type capturingSender struct {
	mu   sync.Mutex
	sent []*push.Invitation
	err  error
}

func (s *capturingSender) Send(_ context.Context, inv *push.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, inv)
	return nil
}

func (s *capturingSender) invitations() []*push.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*push.Invitation, len(s.sent))
	copy(out, s.sent)
	return out
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}
