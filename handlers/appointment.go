package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonbook/services/booking"
	"salonbook/utils"
)

// ListAppointmentTypes handles GET /appointment-types: the bookable services
// visible to the viewer, grouped by location.
func (h *BookingHandler) ListAppointmentTypes(c *gin.Context) {
	var filter booking.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	grouped, err := h.service.ListAppointmentTypes(c.Request.Context(), viewerFromRequest(c), filter)
	if err != nil {
		h.respondError(c, err, "failed to list appointment types")
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": grouped})
}
