package routes

import (
	"github.com/gin-gonic/gin"

	"salonbook/handlers"
)

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, bookingHandler *handlers.BookingHandler) {
	RegisterBookingRoutes(r, bookingHandler)
}
