package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
	"github.com/callgate/callgate-server/internal/config"
	"github.com/callgate/callgate-server/internal/service/notify"
	"github.com/callgate/callgate-server/internal/service/tokens"
	"github.com/callgate/callgate-server/internal/store"
)

// NewServer builds the HTTP server with all routes wired.
func NewServer(tokensSvc *tokens.Service, notifySvc *notify.Service, st store.Store, verifier *auth.Verifier, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger), Metrics())

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(AuthMiddleware(verifier, logger), RateLimit(cfg.RateLimitPerMinute))

	tokenHandlers := NewTokenHandlers(tokensSvc, logger)
	api.POST("/rtc/token", tokenHandlers.IssueToken)

	notifyHandlers := NewNotifyHandlers(notifySvc, logger)
	api.POST("/calls/notify", notifyHandlers.NotifyIncomingCall)

	deviceHandlers := NewDeviceHandlers(st, logger)
	api.PUT("/devices", deviceHandlers.RegisterDevice)
	api.DELETE("/devices", deviceHandlers.UnregisterDevice)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
