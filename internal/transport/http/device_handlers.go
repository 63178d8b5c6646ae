package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/store"
)

// DeviceHandlers provides HTTP handlers for device registration. A client
// registers its own push delivery address so other users can reach it.
type DeviceHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewDeviceHandlers creates a new device handlers instance.
func NewDeviceHandlers(st store.Store, logger *zerolog.Logger) *DeviceHandlers {
	return &DeviceHandlers{
		store: st,
		log:   logger,
	}
}

// RegisterDeviceRequest represents the request body for device registration.
type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token" binding:"required"`
}

// RegisterDevice stores the caller's delivery address in the directory.
// PUT /api/devices
func (h *DeviceHandlers) RegisterDevice(c *gin.Context) {
	ident := identityFromContext(c)
	if ident.IsZero() {
		c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "unauthorized"))
		return
	}

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register device request")
		c.JSON(http.StatusBadRequest, errResp(CodeInvalidArgument, "device token is required"))
		return
	}

	if err := h.store.UpsertDeviceToken(c.Request.Context(), ident.UID(), ident.DisplayName(), req.DeviceToken); err != nil {
		h.log.Error().Err(err).Str("user_id", ident.UID()).Msg("failed to register device")
		c.JSON(http.StatusInternalServerError, errResp(CodeInternal, "failed to register device"))
		return
	}

	h.log.Info().Str("user_id", ident.UID()).Msg("device registered")
	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}

// UnregisterDevice removes the caller's delivery address.
// DELETE /api/devices
func (h *DeviceHandlers) UnregisterDevice(c *gin.Context) {
	ident := identityFromContext(c)
	if ident.IsZero() {
		c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "unauthorized"))
		return
	}

	if err := h.store.ClearDeviceToken(c.Request.Context(), ident.UID()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errResp(CodeNotFound, "no device registered"))
			return
		}
		h.log.Error().Err(err).Str("user_id", ident.UID()).Msg("failed to unregister device")
		c.JSON(http.StatusInternalServerError, errResp(CodeInternal, "failed to unregister device"))
		return
	}

	h.log.Info().Str("user_id", ident.UID()).Msg("device unregistered")
	c.JSON(http.StatusOK, gin.H{"message": "device unregistered"})
}
