package handlers

import (
	"ridelink/internal/models"
	"ridelink/internal/services"
	"ridelink/internal/utils"

	"github.com/gin-gonic/gin"
)

type PrefsHandler struct {
	prefsService services.PrefsService
}

func NewPrefsHandler(prefsService services.PrefsService) *PrefsHandler {
	return &PrefsHandler{
		prefsService: prefsService,
	}
}

type driverStatusRequest struct {
	Online bool `json:"online"`
}

func (h *PrefsHandler) GetNotificationSettings(c *gin.Context) {
	utils.SuccessResponse(c, "", h.prefsService.NotificationSettings(c.Request.Context()))
}

func (h *PrefsHandler) UpdateNotificationSettings(c *gin.Context) {
	var settings models.NotificationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.prefsService.SetNotificationSettings(c.Request.Context(), settings); err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	utils.SuccessResponse(c, "Notification settings updated", settings)
}

func (h *PrefsHandler) GetDriverStatus(c *gin.Context) {
	utils.SuccessResponse(c, "", gin.H{"online": h.prefsService.DriverOnline(c.Request.Context())})
}

func (h *PrefsHandler) UpdateDriverStatus(c *gin.Context) {
	var request driverStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.prefsService.SetDriverOnline(c.Request.Context(), request.Online); err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	utils.SuccessResponse(c, "Driver status updated", gin.H{"online": request.Online})
}
