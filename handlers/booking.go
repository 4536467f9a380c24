package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/services/booking"
	"salonbook/utils"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	service booking.BookingService
	logger  *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

// viewerFromRequest extracts the identity/preference context the hosting
// platform forwards with each request.
func viewerFromRequest(c *gin.Context) booking.Viewer {
	locale := c.GetHeader("X-Locale")
	if locale == "" {
		locale = c.GetHeader("Accept-Language")
	}
	return booking.Viewer{
		CustomerID:  c.GetHeader("X-Customer-ID"),
		Locale:      locale,
		Timezone:    c.GetHeader("X-Timezone"),
		InviteToken: c.Query("invite_token"),
	}
}

// GetSlots handles GET /appointment-types/:id/slots.
func (h *BookingHandler) GetSlots(c *gin.Context) {
	var query struct {
		AskedCapacity int    `form:"capacity"`
		ReferenceDate string `form:"reference_date"`
		WithLinked    bool   `form:"with_linked_resources,default=true"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	result, err := h.service.GetSlots(c.Request.Context(), viewerFromRequest(c), c.Param("id"), query.AskedCapacity, query.ReferenceDate, query.WithLinked)
	if err != nil {
		h.respondError(c, err, "failed to compute slots")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBookingForm handles POST /appointment-types/:id/form.
func (h *BookingHandler) GetBookingForm(c *gin.Context) {
	var input struct {
		Selection     booking.SlotSelection `json:"slotSelection" binding:"required"`
		AskedCapacity int                   `json:"askedCapacity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	form, err := h.service.GetBookingFormContext(c.Request.Context(), viewerFromRequest(c), c.Param("id"), input.Selection, input.AskedCapacity)
	if err != nil {
		h.respondError(c, err, "failed to build booking form")
		return
	}
	c.JSON(http.StatusOK, form)
}

// SubmitBooking handles POST /appointment-types/:id/submit.
func (h *BookingHandler) SubmitBooking(c *gin.Context) {
	var input struct {
		OfferID       string                `json:"offerId"`
		Selection     booking.SlotSelection `json:"slotSelection"`
		Customer      models.CustomerFields `json:"customer" binding:"required"`
		Answers       []models.IntakeAnswer `json:"answers"`
		Guests        []string              `json:"guests"`
		AskedCapacity int                   `json:"askedCapacity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.service.SubmitBooking(c.Request.Context(), viewerFromRequest(c), booking.SubmitRequest{
		TypeID:        c.Param("id"),
		OfferID:       input.OfferID,
		Selection:     input.Selection,
		Customer:      input.Customer,
		Answers:       input.Answers,
		Guests:        input.Guests,
		AskedCapacity: input.AskedCapacity,
	})
	if err != nil {
		h.respondError(c, err, "failed to submit booking")
		return
	}
	if result.Status == "rejected" {
		// Soft race between offer and commit: the client is redirected back
		// to slot selection with the machine-readable reason.
		c.JSON(http.StatusConflict, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelReservation handles POST /reservations/:id/cancel.
func (h *BookingHandler) CancelReservation(c *gin.Context) {
	if err := h.service.CancelReservation(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "failed to cancel reservation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// respondError maps domain errors to HTTP statuses.
func (h *BookingHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case booking.IsNotFound(err):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case isValidation(err):
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
	default:
		h.logger.Error(message, zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, message, "")
	}
}

func isValidation(err error) bool {
	var ve *booking.ValidationError
	return errors.As(err, &ve)
}
