package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	registermodels "io.revoapps.revofit/internal/models/register_device"
	"io.revoapps.revofit/internal/push"
)

// RegisterDevice records the device's push token after the device-side
// permission flow. Permission denial (or a missing token on a device
// without push capability) is not an error: the response simply reports
// push as unavailable.
func (h *NotificationsHandler) RegisterDevice(c *gin.Context) {
	var req registermodels.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userUID := uid.(string)

	token, err := h.registry.RegisterDevice(c.Request.Context(), push.DeviceRegistration{
		UserID:            userUID,
		Token:             req.Token,
		Platform:          req.Platform,
		Timezone:          req.Timezone,
		PermissionGranted: req.PermissionGranted,
	})
	if err != nil {
		h.logError(c, err, "failed to register device")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	if token == nil {
		c.JSON(http.StatusOK, registermodels.RegisterDeviceResponse{PushEnabled: false})
		return
	}

	// Registration doubles as notification init: re-register the daily
	// reminder triggers, which is cancel-then-reschedule and cheap to repeat.
	if err := h.scheduler.ScheduleDailyReminders(userUID, token.Timezone); err != nil {
		h.logError(c, err, "failed to schedule daily reminders")
	}

	c.JSON(http.StatusOK, registermodels.RegisterDeviceResponse{
		PushEnabled: true,
		TokenID:     token.ID,
	})
}

// UnregisterDevice handles sign-out: tokens are deactivated (never
// deleted), the feed session is torn down, and the user's daily reminder
// triggers are cancelled.
func (h *NotificationsHandler) UnregisterDevice(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userUID := uid.(string)

	if err := h.registry.SignOut(c.Request.Context(), userUID); err != nil {
		h.logError(c, err, "failed to deactivate tokens on sign-out")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister device"})
		return
	}

	h.scheduler.CancelDailyReminders(userUID)
	h.feeds.Close(userUID)

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}
