package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/service/notify"
)

// NotifyHandlers provides HTTP handlers for call notification.
type NotifyHandlers struct {
	service *notify.Service
	log     *zerolog.Logger
}

// NewNotifyHandlers creates a new notify handlers instance.
func NewNotifyHandlers(svc *notify.Service, logger *zerolog.Logger) *NotifyHandlers {
	return &NotifyHandlers{
		service: svc,
		log:     logger,
	}
}

// NotifyCallRequest represents the request body for an incoming-call alert.
// ChannelID and RTCToken come from a prior token issuance and pass through
// unchanged. The caller's identity is taken from the auth context, never
// from this payload.
type NotifyCallRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	CallerName   string `json:"caller_name"`
	ChannelID    string `json:"channel_id" binding:"required"`
	RTCToken     string `json:"rtc_token" binding:"required"`
	UID          int64  `json:"uid"`
}

// NotifyCallResponse represents a successful dispatch.
type NotifyCallResponse struct {
	Success bool `json:"success"`
}

// NotifyIncomingCall handles relaying a call invitation to the callee.
// POST /api/calls/notify
func (h *NotifyHandlers) NotifyIncomingCall(c *gin.Context) {
	ident := identityFromContext(c)
	if ident.IsZero() {
		c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "unauthorized"))
		return
	}

	var req NotifyCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid notify request")
		c.JSON(http.StatusBadRequest, errResp(CodeInvalidArgument, "invalid request body"))
		return
	}

	err := h.service.NotifyIncomingCall(c.Request.Context(), ident, notify.IncomingCall{
		TargetUserID:  req.TargetUserID,
		CallerName:    req.CallerName,
		ChannelID:     req.ChannelID,
		RTCToken:      req.RTCToken,
		ParticipantID: req.UID,
	})
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "unauthorized"))
		case errors.Is(err, notify.ErrTargetRequired),
			errors.Is(err, notify.ErrChannelRequired),
			errors.Is(err, notify.ErrTokenRequired):
			c.JSON(http.StatusBadRequest, errResp(CodeInvalidArgument, err.Error()))
		case errors.Is(err, notify.ErrUserNotFound), errors.Is(err, notify.ErrNoDeviceToken):
			// Missing entry and missing device token are one condition
			// externally; the service log tells them apart.
			c.JSON(http.StatusNotFound, errResp(CodeNotFound, "user not found"))
		case errors.Is(err, notify.ErrPushDisabled):
			c.JSON(http.StatusServiceUnavailable, errResp(CodeUnavailable, "notifications are not available"))
		default:
			h.log.Error().Err(err).Str("caller_id", ident.UID()).Str("target_user_id", req.TargetUserID).Msg("failed to send notification")
			c.JSON(http.StatusInternalServerError, errResp(CodeInternal, "failed to send notification"))
		}
		return
	}

	c.JSON(http.StatusOK, NotifyCallResponse{Success: true})
}
