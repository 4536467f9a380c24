package appointmentRepo

import (
	"context"

	"salonbook/models"
)

// Filter narrows the appointment type listing. InviteTypeIDs widens the
// visible set with invite-only types unlocked by a verified invite token.
type Filter struct {
	Location      string
	NameLike      string
	InviteTypeIDs []string
}

// AppointmentTypeRepository reads bookable service definitions. The booking
// engine never writes them; administration happens on the hosting platform.
type AppointmentTypeRepository interface {
	GetByID(ctx context.Context, id string) (*models.AppointmentType, error)
	List(ctx context.Context, f Filter) ([]models.AppointmentType, error)
}
