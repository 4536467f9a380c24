package routes

import (
	"github.com/gin-gonic/gin"

	"salonbook/handlers"
)

// RegisterBookingRoutes registers all endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	api := r.Group("/api/booking")
	{
		api.GET("/appointment-types", h.ListAppointmentTypes)
		api.GET("/appointment-types/:id/slots", h.GetSlots)
		api.POST("/appointment-types/:id/form", h.GetBookingForm)
		api.POST("/appointment-types/:id/submit", h.SubmitBooking)
		api.POST("/reservations/:id/cancel", h.CancelReservation)
	}
}
