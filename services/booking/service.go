package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"salonbook/config"
	appointmentRepo "salonbook/database/repository/appointment"
	customerRepo "salonbook/database/repository/customer"
	providerRepo "salonbook/database/repository/provider"
	reservationRepo "salonbook/database/repository/reservation"
	"salonbook/models"
	"salonbook/services/schedule"
	"salonbook/utils"
)

// parseInvite is swappable in tests.
var parseInvite = utils.ParseInviteToken

// Viewer is the identity and preference context the hosting platform
// supplies with every request. It is threaded explicitly; the engine keeps
// no session state of its own.
type Viewer struct {
	CustomerID  string
	Locale      string
	Timezone    string
	InviteToken string
}

// ListFilter narrows the appointment type listing.
type ListFilter struct {
	Location string `form:"location"`
	NameLike string `form:"q"`
}

// SlotSelection identifies the slot a client picked from a prior listing.
// Start is an ISO timestamp interpreted in Timezone; the selection is purely
// advisory until the commit pipeline revalidates it.
type SlotSelection struct {
	Start       string   `json:"start" binding:"required"`
	Timezone    string   `json:"timezone"`
	StaffID     string   `json:"staffId,omitempty"`
	ResourceIDs []string `json:"resourceIds,omitempty"`
	WithLinked  bool     `json:"withLinkedResources,omitempty"`
}

// SlotListingResult wraps the generated grid with the display timezone.
type SlotListingResult struct {
	Listing  schedule.Listing `json:"listing"`
	Timezone string           `json:"timezone"`
}

// FormContext is the intake-form prefill data for a selected slot.
type FormContext struct {
	OfferID         string                  `json:"offerId"`
	TypeID          string                  `json:"typeId"`
	TypeName        string                  `json:"typeName"`
	Location        string                  `json:"location"`
	Questions       []models.IntakeQuestion `json:"questions"`
	Customer        *models.Customer        `json:"customer,omitempty"`
	LocalizedDate   string                  `json:"localizedDate"`
	StartLocal      string                  `json:"start"`
	EndLocal        string                  `json:"end"`
	Timezone        string                  `json:"timezone"`
	AskedCapacity   int                     `json:"askedCapacity"`
	AllowGuests     bool                    `json:"allowGuests"`
	DepositAmount   int64                   `json:"depositAmount,omitempty"`
	DepositCurrency string                  `json:"depositCurrency,omitempty"`
	PriceAmount     int64                   `json:"priceAmount,omitempty"`
}

// SubmitRequest is one booking submission.
type SubmitRequest struct {
	TypeID        string
	OfferID       string
	Selection     SlotSelection
	Customer      models.CustomerFields
	Answers       []models.IntakeAnswer
	Guests        []string
	AskedCapacity int
}

// SubmitResult is the commit pipeline outcome. Status is "committed" or
// "rejected"; Reason is machine-readable on rejection.
type SubmitResult struct {
	Status  string                      `json:"status"`
	Reason  string                      `json:"reason,omitempty"`
	Summary *models.ConfirmationPayload `json:"reservationSummary,omitempty"`
}

// DepositHandler opens the follow-on deposit payment for a committed
// reservation and returns the payment reference.
type DepositHandler interface {
	OpenDeposit(ctx context.Context, at models.AppointmentType, r *models.Reservation, customer *models.Customer) (string, error)
}

// ConfirmationDispatcher hands the confirmation payload to the background
// delivery queue.
type ConfirmationDispatcher interface {
	Dispatch(ctx context.Context, payload models.ConfirmationPayload) error
}

// BookingService is the outward surface of the booking engine.
type BookingService interface {
	ListAppointmentTypes(ctx context.Context, viewer Viewer, f ListFilter) (map[string][]models.AppointmentTypeSummary, error)
	GetSlots(ctx context.Context, viewer Viewer, typeID string, askedCapacity int, referenceDate string, withLinked bool) (*SlotListingResult, error)
	GetBookingFormContext(ctx context.Context, viewer Viewer, typeID string, sel SlotSelection, askedCapacity int) (*FormContext, error)
	SubmitBooking(ctx context.Context, viewer Viewer, req SubmitRequest) (*SubmitResult, error)
	CancelReservation(ctx context.Context, reservationID string) error
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	TypeRepo        appointmentRepo.AppointmentTypeRepository
	ProviderRepo    providerRepo.ProviderRepository
	CustomerRepo    customerRepo.CustomerRepository
	ReservationRepo reservationRepo.ReservationRepository
	CacheClient     *redis.Client
	Deposits        DepositHandler
	Confirmations   ConfirmationDispatcher
	OfferTTL        time.Duration
}

// loadType fetches an appointment type and enforces the invite scope:
// invite-only types outside the token's scope are indistinguishable from
// missing ones.
func (s *DefaultBookingService) loadType(ctx context.Context, viewer Viewer, typeID string) (*models.AppointmentType, error) {
	at, err := s.TypeRepo.GetByID(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment type: %w", err)
	}
	if at == nil {
		return nil, ErrNotFound
	}
	if at.Access == models.AccessInviteOnly {
		scope, _ := inviteScope(viewer)
		allowed := false
		for _, id := range scope {
			if id == typeID {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, ErrNotFound
		}
	}
	return at, nil
}

// viewerLocation resolves the display timezone: viewer preference first,
// then the appointment type's own zone.
func viewerLocation(viewer Viewer, at *models.AppointmentType) *time.Location {
	if viewer.Timezone != "" {
		if loc, err := time.LoadLocation(viewer.Timezone); err == nil {
			return loc
		}
	}
	if at != nil && at.Timezone != "" {
		if loc, err := time.LoadLocation(at.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// staffSchedules assembles resolver inputs for staff members, reading busy
// time through the given reader so the commit path can reuse it inside its
// transaction.
func staffSchedules(ctx context.Context, reader reservationRepo.AvailabilityReader, staff []models.StaffMember, window schedule.Interval) ([]schedule.ProviderSchedule, error) {
	out := make([]schedule.ProviderSchedule, 0, len(staff))
	for _, st := range staff {
		reservations, err := reader.StaffReservations(ctx, st.ID, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("failed to load reservations for staff %s: %w", st.ID, err)
		}
		leaves, err := reader.Leaves(ctx, []string{st.ID}, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("failed to load leaves for staff %s: %w", st.ID, err)
		}
		out = append(out, schedule.ProviderSchedule{
			ProviderID:   st.ID,
			Timezone:     st.Timezone,
			WorkingHours: st.WorkingHours,
			Busy:         schedule.BusyFromReservations(reservations).Union(schedule.BusyFromLeaves(leaves)),
		})
	}
	return out, nil
}

// resourceStates assembles allocator inputs for resources in the given
// stable order.
func resourceStates(ctx context.Context, reader reservationRepo.AvailabilityReader, resources []models.Resource, tz string, window schedule.Interval) ([]schedule.ResourceState, error) {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	lines, err := reader.ResourceAllocations(ctx, ids, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	usage := make(map[string][]schedule.Usage)
	for _, l := range lines {
		usage[l.ResourceID] = append(usage[l.ResourceID], schedule.Usage{
			Interval: schedule.Interval{Start: l.Start, End: l.End},
			Units:    l.CapacityUsed,
		})
	}
	leaves, err := reader.Leaves(ctx, ids, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load resource leaves: %w", err)
	}
	leavesBy := make(map[string][]models.Leave)
	for _, l := range leaves {
		leavesBy[l.ProviderID] = append(leavesBy[l.ProviderID], l)
	}

	out := make([]schedule.ResourceState, 0, len(resources))
	for _, r := range resources {
		out = append(out, schedule.ResourceState{
			Resource: r,
			Timezone: tz,
			Usage:    usage[r.ID],
			Leaves:   schedule.BusyFromLeaves(leavesBy[r.ID]),
		})
	}
	return out, nil
}

func defaultLookaheadDays() int {
	if config.AppConfig.DefaultLookaheadDays > 0 {
		return config.AppConfig.DefaultLookaheadDays
	}
	return 60
}

func viewerLocale(viewer Viewer) string {
	if viewer.Locale != "" {
		return viewer.Locale
	}
	if config.AppConfig.DefaultLocale != "" {
		return config.AppConfig.DefaultLocale
	}
	return "en-GB"
}

// inviteScope parses the viewer's invite token into unlocked type ids.
func inviteScope(viewer Viewer) ([]string, error) {
	if viewer.InviteToken == "" {
		return nil, nil
	}
	return parseInvite(viewer.InviteToken)
}
