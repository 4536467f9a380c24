package booking

import (
	"context"
	"fmt"
	"time"

	appointmentRepo "salonbook/database/repository/appointment"
	"salonbook/models"
	"salonbook/services/schedule"
)

// ListAppointmentTypes returns the bookable service definitions visible to
// the viewer, grouped by location. Invite tokens widen the set with the
// invite-only types they unlock.
func (s *DefaultBookingService) ListAppointmentTypes(ctx context.Context, viewer Viewer, f ListFilter) (map[string][]models.AppointmentTypeSummary, error) {
	scope, err := inviteScope(viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to verify invite token: %w", err)
	}

	types, err := s.TypeRepo.List(ctx, appointmentRepo.Filter{
		Location:      f.Location,
		NameLike:      f.NameLike,
		InviteTypeIDs: scope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment types: %w", err)
	}

	caps, err := s.resourceCapacities(ctx, types)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.AppointmentTypeSummary)
	for _, at := range types {
		grouped[at.Location] = append(grouped[at.Location], models.AppointmentTypeSummary{
			ID:          at.ID,
			Name:        at.Name,
			MaxCapacity: at.MaxCapacity(caps),
		})
	}
	return grouped, nil
}

// resourceCapacities loads declared capacities for every resource referenced
// by the listed types, in one query.
func (s *DefaultBookingService) resourceCapacities(ctx context.Context, types []models.AppointmentType) (map[string]int, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, at := range types {
		for _, id := range at.ResourceIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	resources, err := s.ProviderRepo.GetResources(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load resource capacities: %w", err)
	}
	caps := make(map[string]int, len(resources))
	for _, r := range resources {
		caps[r.ID] = r.Capacity
	}
	return caps, nil
}

// GetSlots computes the bookable slot grid for one appointment type over its
// lookahead window. Availability is always recomputed from the persisted
// store; nothing here is cached. withLinked controls whether linked resources
// may pool their capacity into one slot.
func (s *DefaultBookingService) GetSlots(ctx context.Context, viewer Viewer, typeID string, askedCapacity int, referenceDate string, withLinked bool) (*SlotListingResult, error) {
	at, err := s.loadType(ctx, viewer, typeID)
	if err != nil {
		return nil, err
	}
	if askedCapacity < 0 {
		return nil, &ValidationError{Field: "askedCapacity", Reason: "must not be negative"}
	}
	if askedCapacity == 0 {
		askedCapacity = 1
	}

	loc := viewerLocation(viewer, at)
	now := time.Now()
	reference := now
	if referenceDate != "" {
		reference, err = time.ParseInLocation("2006-01-02", referenceDate, loc)
		if err != nil {
			return nil, &ValidationError{Field: "referenceDate", Reason: "expected YYYY-MM-DD"}
		}
	}

	lookahead := at.LookaheadDays
	if lookahead <= 0 {
		lookahead = defaultLookaheadDays()
	}
	window := schedule.Interval{Start: now, End: now.AddDate(0, 0, lookahead)}

	req := schedule.GridRequest{
		Type:          *at,
		AskedCapacity: askedCapacity,
		Reference:     reference,
		Now:           now,
		Locale:        viewerLocale(viewer),
		WithLinked:    withLinked,
	}
	req.Type.LookaheadDays = lookahead

	switch at.ScheduleBasis {
	case models.ScheduleResource:
		resources, err := s.ProviderRepo.GetResources(ctx, at.ResourceIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load resources: %w", err)
		}
		req.Resources, err = resourceStates(ctx, s.ReservationRepo, resources, at.Timezone, window)
		if err != nil {
			return nil, err
		}
	default:
		staff, err := s.ProviderRepo.GetStaff(ctx, at.StaffIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load staff: %w", err)
		}
		req.Staff, err = staffSchedules(ctx, s.ReservationRepo, staff, window)
		if err != nil {
			return nil, err
		}
	}

	listing := schedule.BuildListing(req)
	return &SlotListingResult{Listing: listing, Timezone: loc.String()}, nil
}
