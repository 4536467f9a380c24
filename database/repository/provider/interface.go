package providerRepo

import (
	"context"
	"time"

	"salonbook/models"
)

// ProviderRepository reads the two provider variants an appointment type can
// book against. MarkStaffBooked feeds the least-recently-booked assignment
// policy and is the only write.
type ProviderRepository interface {
	GetStaff(ctx context.Context, ids []string) ([]models.StaffMember, error)
	GetResources(ctx context.Context, ids []string) ([]models.Resource, error)
	MarkStaffBooked(ctx context.Context, id string, at time.Time) error
}
