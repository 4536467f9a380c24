package notification

import (
	"context"

	"go.uber.org/zap"

	"salonbook/models"
)

// NotificationService receives confirmation payloads for delivery. Actual
// email/SMS delivery belongs to the hosting platform; the default sink logs
// the payload so the platform's collector can pick it up.
type NotificationService interface {
	SendBookingConfirmation(ctx context.Context, payload models.ConfirmationPayload) error
}

// DefaultNotificationService implements NotificationService.
type DefaultNotificationService struct {
	Logger *zap.Logger
}

func (n *DefaultNotificationService) SendBookingConfirmation(ctx context.Context, payload models.ConfirmationPayload) error {
	n.Logger.Info("booking confirmation ready for delivery",
		zap.String("reservationId", payload.ReservationID),
		zap.String("service", payload.ServiceName),
		zap.String("customer", payload.CustomerName),
		zap.String("start", payload.Start),
		zap.String("timezone", payload.Timezone),
		zap.Int("attendees", payload.AttendeeCount))
	return nil
}
