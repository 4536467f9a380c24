package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"salonbook/models"
)

// StripeDepositHandler opens the deposit payment for a committed reservation
// as a Stripe PaymentIntent. The accounting side (invoices, point of sale)
// lives on the hosting platform; the engine only triggers the financial
// reservation and keeps the reference.
type StripeDepositHandler struct {
	logger *zap.Logger
}

// NewStripeDepositHandler constructs a StripeDepositHandler. The global
// stripe key is set at startup from configuration.
func NewStripeDepositHandler(logger *zap.Logger) *StripeDepositHandler {
	return &StripeDepositHandler{logger: logger}
}

func (h *StripeDepositHandler) OpenDeposit(ctx context.Context, at models.AppointmentType, r *models.Reservation, customer *models.Customer) (string, error) {
	if at.DepositAmount <= 0 {
		return "", nil
	}
	currency := at.DepositCurrency
	if currency == "" {
		currency = "eur"
	}

	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(at.DepositAmount),
		Currency:     stripe.String(strings.ToLower(currency)),
		Description:  stripe.String(fmt.Sprintf("Deposit for %s", r.Name)),
		ReceiptEmail: stripe.String(customer.Email),
	}
	params.Context = ctx
	params.AddMetadata("reservationId", r.ID)
	params.AddMetadata("appointmentTypeId", at.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create deposit payment intent: %w", err)
	}

	h.logger.Info("deposit payment intent created",
		zap.String("reservationId", r.ID),
		zap.String("paymentIntent", pi.ID),
		zap.Int64("amount", at.DepositAmount))
	return pi.ID, nil
}
