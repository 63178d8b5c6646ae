package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/config"
	"github.com/callgate/callgate-server/internal/push"
	"github.com/callgate/callgate-server/internal/push/fcm"
	"github.com/callgate/callgate-server/internal/rtctoken/livekit"
	"github.com/callgate/callgate-server/internal/service/notify"
	"github.com/callgate/callgate-server/internal/service/tokens"
	"github.com/callgate/callgate-server/internal/store"
	"github.com/callgate/callgate-server/internal/store/sqlite"
	transporthttp "github.com/callgate/callgate-server/internal/transport/http"
)

// App wires together services and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("directory store initialized")

	verifier := auth.NewVerifier(&auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})

	signer := livekit.New(cfg.RTCAppID, cfg.RTCAppSecret)
	tokensSvc := tokens.New(signer, cfg.RTCAppID, cfg.RTCTokenTTL, logger)

	// Push delivery is optional: without credentials the notify endpoint
	// answers 503 instead of dispatching.
	var sender push.Sender
	if cfg.FCMCredentialsFile != "" {
		fcmSender, fcmErr := fcm.New(ctx, cfg.FCMCredentialsFile)
		if fcmErr != nil {
			st.Close()
			return nil, fmt.Errorf("init fcm sender: %w", fcmErr)
		}
		sender = push.NewRetrySender(fcmSender, cfg.PushMaxTries, cfg.PushInitialInterval)
		logger.Info().Int("max_tries", cfg.PushMaxTries).Msg("push delivery enabled")
	} else {
		logger.Warn().Msg("fcm credentials not configured, call notifications disabled")
	}

	notifySvc := notify.New(st, sender, cfg.LookupTimeout, cfg.DispatchTimeout, logger)
	server := transporthttp.NewServer(tokensSvc, notifySvc, st, verifier, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the directory store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
