package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/service/tokens"
)

// TokenHandlers provides HTTP handlers for join-token issuance.
type TokenHandlers struct {
	service *tokens.Service
	log     *zerolog.Logger
}

// NewTokenHandlers creates a new token handlers instance.
func NewTokenHandlers(svc *tokens.Service, logger *zerolog.Logger) *TokenHandlers {
	return &TokenHandlers{
		service: svc,
		log:     logger,
	}
}

// IssueTokenRequest represents the request body for token issuance.
// UID is the participant id within the channel; absent means server-assigned.
type IssueTokenRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
	UID         *int64 `json:"uid"`
}

// IssueTokenResponse represents a successful issuance.
type IssueTokenResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	ChannelName string `json:"channel_name"`
	UID         int64  `json:"uid"`
	AppID       string `json:"app_id"`
	ExpiresAt   string `json:"expires_at"`
}

// IssueToken handles join-token issuance.
// POST /api/rtc/token
func (h *TokenHandlers) IssueToken(c *gin.Context) {
	ident := identityFromContext(c)
	if ident.IsZero() {
		c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "unauthorized"))
		return
	}

	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid issue token request")
		c.JSON(http.StatusBadRequest, errResp(CodeInvalidArgument, "channel name is required"))
		return
	}

	uid := int64(0)
	if req.UID != nil {
		uid = *req.UID
	}

	grant, err := h.service.Issue(c.Request.Context(), ident, req.ChannelName, uid)
	if err != nil {
		switch {
		case errors.Is(err, tokens.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "unauthorized"))
		case errors.Is(err, tokens.ErrChannelRequired):
			c.JSON(http.StatusBadRequest, errResp(CodeInvalidArgument, "channel name is required"))
		case errors.Is(err, tokens.ErrInvalidParticipantID):
			c.JSON(http.StatusBadRequest, errResp(CodeInvalidArgument, "uid must not be negative"))
		default:
			h.log.Error().Err(err).Str("user_id", ident.UID()).Str("channel", req.ChannelName).Msg("failed to issue token")
			c.JSON(http.StatusInternalServerError, errResp(CodeInternal, "failed to create token"))
		}
		return
	}

	c.JSON(http.StatusOK, IssueTokenResponse{
		Success:     true,
		Token:       grant.Token,
		ChannelName: grant.ChannelName,
		UID:         grant.ParticipantID,
		AppID:       grant.AppID,
		ExpiresAt:   grant.ExpiresAt.Format(time.RFC3339),
	})
}
