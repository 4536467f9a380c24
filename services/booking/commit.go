package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationRepo "salonbook/database/repository/reservation"
	"salonbook/models"
	"salonbook/services/schedule"
	"salonbook/utils"
)

// SubmitBooking runs the commit pipeline for one booking attempt:
// Offered -> Revalidating -> Committed | Rejected. The offered slot carries
// no lock, so availability is re-checked against current data inside the
// same transaction that persists the reservation. A rejection is terminal
// for the attempt; the client must pick a new slot.
func (s *DefaultBookingService) SubmitBooking(ctx context.Context, viewer Viewer, req SubmitRequest) (*SubmitResult, error) {
	logger := utils.GetLogger()

	if req.Selection.Start == "" && req.OfferID != "" {
		offer, err := s.resolveOffer(ctx, req.OfferID)
		if err != nil {
			return nil, err
		}
		if req.TypeID == "" {
			req.TypeID = offer.TypeID
		}
		req.Selection = offer.Selection
		if req.AskedCapacity <= 0 {
			req.AskedCapacity = offer.AskedCapacity
		}
	}

	at, err := s.loadType(ctx, viewer, req.TypeID)
	if err != nil {
		return nil, err
	}
	if req.AskedCapacity < 0 {
		return nil, &ValidationError{Field: "askedCapacity", Reason: "must not be negative"}
	}
	if req.AskedCapacity == 0 {
		req.AskedCapacity = 1
	}
	if len(req.Guests) > 0 && !at.AllowGuests {
		return nil, &ValidationError{Field: "guests", Reason: "appointment type does not allow guests"}
	}
	if err := validateAnswers(at.Questions, req.Answers); err != nil {
		return nil, err
	}

	iv, loc, err := parseSelection(at, viewer, req.Selection)
	if err != nil {
		return nil, err
	}
	if iv.Start.Before(time.Now()) {
		return nil, &ValidationError{Field: "start", Reason: "slot is in the past"}
	}

	customer, newCustomer, err := s.resolveCustomer(ctx, req.Customer)
	if err != nil {
		return nil, err
	}

	attendees := req.AskedCapacity
	if at.ScheduleBasis == models.ScheduleStaff {
		attendees = 1 + len(req.Guests)
	}

	reservation := &models.Reservation{
		ID:                uuid.New().String(),
		AppointmentTypeID: at.ID,
		Name:              fmt.Sprintf("%s - %s Booking", customer.Name, at.Name),
		Start:             iv.Start,
		End:               iv.End,
		Timezone:          loc.String(),
		CustomerID:        customer.ID,
		GuestEmails:       req.Guests,
		Answers:           req.Answers,
		AttendeeCount:     attendees,
		Status:            models.ReservationBooked,
		CreatedAt:         time.Now(),
	}

	revalidate, err := s.buildRevalidation(at, req, iv, reservation)
	if err != nil {
		return nil, err
	}

	commitErr := s.ReservationRepo.Commit(ctx, reservationRepo.CommitRequest{
		Reservation: reservation,
		NewCustomer: newCustomer,
		Revalidate:  revalidate,
	})
	if commitErr != nil {
		if IsConflict(commitErr) {
			logger.Info("booking rejected at revalidation",
				zap.String("typeId", at.ID),
				zap.String("reason", ConflictReason(commitErr)))
			return &SubmitResult{Status: "rejected", Reason: ConflictReason(commitErr)}, nil
		}
		return nil, fmt.Errorf("booking commit failed: %w", commitErr)
	}

	s.afterCommit(ctx, at, reservation, customer)

	summary := buildSummary(at, reservation, customer, loc)
	logger.Info("booking committed",
		zap.String("reservationId", reservation.ID),
		zap.String("typeId", at.ID),
		zap.Time("start", reservation.Start))
	return &SubmitResult{Status: "committed", Summary: &summary}, nil
}

// resolveCustomer matches an existing identity by normalized email plus
// normalized phone. A mismatch on either field yields a fresh identity; the
// existing record is never mutated.
func (s *DefaultBookingService) resolveCustomer(ctx context.Context, fields models.CustomerFields) (*models.Customer, *models.Customer, error) {
	if fields.Name == "" || fields.Email == "" || fields.Phone == "" {
		return nil, nil, &ValidationError{Field: "customer", Reason: "name, email and phone are required"}
	}
	normEmail := utils.NormalizeEmail(fields.Email)
	normPhone := utils.NormalizePhone(fields.Phone)

	existing, err := s.CustomerRepo.FindByContact(ctx, normEmail, normPhone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to match customer: %w", err)
	}
	if existing != nil {
		return existing, nil, nil
	}

	fresh := &models.Customer{
		ID:              uuid.New().String(),
		Name:            fields.Name,
		Email:           fields.Email,
		NormalizedEmail: normEmail,
		Phone:           fields.Phone,
		NormalizedPhone: normPhone,
		CreatedAt:       time.Now(),
	}
	return fresh, fresh, nil
}

// buildRevalidation produces the in-transaction availability re-check for
// the requested provider set and interval.
func (s *DefaultBookingService) buildRevalidation(at *models.AppointmentType, req SubmitRequest, iv schedule.Interval, reservation *models.Reservation) (reservationRepo.RevalidateFunc, error) {
	if at.ScheduleBasis == models.ScheduleResource {
		return s.resourceRevalidation(at, req.Selection, iv, req.AskedCapacity, reservation), nil
	}
	return s.staffRevalidation(at, req.Selection.StaffID, iv, reservation), nil
}

// staffRevalidation fails with the staff conflict when the chosen member no
// longer has free time covering the full interval. Without an explicit
// choice the least-recently-booked free member is assigned.
func (s *DefaultBookingService) staffRevalidation(at *models.AppointmentType, staffID string, iv schedule.Interval, reservation *models.Reservation) reservationRepo.RevalidateFunc {
	return func(ctx context.Context, reader reservationRepo.AvailabilityReader) ([]models.CapacityAllocation, error) {
		candidateIDs := at.StaffIDs
		if staffID != "" {
			if !contains(at.StaffIDs, staffID) {
				return nil, ErrNotFound
			}
			candidateIDs = []string{staffID}
		}
		staff, err := s.ProviderRepo.GetStaff(ctx, candidateIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load staff: %w", err)
		}
		schedules, err := staffSchedules(ctx, reader, staff, iv)
		if err != nil {
			return nil, err
		}

		var pick *models.StaffMember
		for i, ps := range schedules {
			if !schedule.FreeIntervals(ps, iv).Covers(iv) {
				continue
			}
			st := staff[i]
			if pick == nil || st.LastBookedAt.Before(pick.LastBookedAt) {
				pick = &staff[i]
			}
		}
		if pick == nil {
			return nil, NewStaffConflict(staffID)
		}
		reservation.StaffID = pick.ID
		return nil, nil
	}
}

// resourceRevalidation re-runs the capacity allocation over the
// previously-offered resource set, in its stable order. An explicit resource
// selection with WithLinked set is widened to the resources linked to it, so
// a picked room can still pool capacity with its declared partners.
func (s *DefaultBookingService) resourceRevalidation(at *models.AppointmentType, sel SlotSelection, iv schedule.Interval, asked int, reservation *models.Reservation) reservationRepo.RevalidateFunc {
	return func(ctx context.Context, reader reservationRepo.AvailabilityReader) ([]models.CapacityAllocation, error) {
		candidates := sel.ResourceIDs
		explicit := len(candidates) > 0
		if !explicit {
			candidates = at.ResourceIDs
		}
		for _, id := range candidates {
			if !contains(at.ResourceIDs, id) {
				return nil, ErrNotFound
			}
		}
		resources, err := s.ProviderRepo.GetResources(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("failed to load resources: %w", err)
		}
		if explicit && sel.WithLinked {
			resources, err = s.widenWithLinked(ctx, at, candidates, resources)
			if err != nil {
				return nil, err
			}
			candidates = make([]string, len(resources))
			for i, r := range resources {
				candidates[i] = r.ID
			}
		}
		// Preserve the caller-supplied order; the fetch does not guarantee it.
		byID := make(map[string]models.Resource, len(resources))
		for _, r := range resources {
			byID[r.ID] = r
		}
		ordered := make([]models.Resource, 0, len(candidates))
		for _, id := range candidates {
			if r, ok := byID[id]; ok {
				ordered = append(ordered, r)
			}
		}

		states, err := resourceStates(ctx, reader, ordered, at.Timezone, iv)
		if err != nil {
			return nil, err
		}
		// Only resources whose free time covers the whole interval can
		// absorb capacity.
		var covering []schedule.ResourceState
		for _, rs := range states {
			ps := schedule.ProviderSchedule{
				ProviderID:   rs.Resource.ID,
				Timezone:     rs.Timezone,
				WorkingHours: rs.Resource.WorkingHours,
				Busy:         rs.Leaves,
			}
			if schedule.FreeIntervals(ps, iv).Covers(iv) {
				covering = append(covering, rs)
			}
		}

		lines, ok := schedule.Allocate(covering, iv, asked, at.ManageCapacity)
		if !ok {
			return nil, NewCapacityConflict(asked)
		}
		for i := range lines {
			lines[i].ID = uuid.New().String()
			lines[i].ReservationID = reservation.ID
		}
		return lines, nil
	}
}

// widenWithLinked appends the resources linked to the selected ones, keeping
// selection order first and skipping links that point outside the appointment
// type's resource set.
func (s *DefaultBookingService) widenWithLinked(ctx context.Context, at *models.AppointmentType, selected []string, resources []models.Resource) ([]models.Resource, error) {
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		seen[id] = true
	}
	var extra []string
	for _, r := range resources {
		for _, linked := range r.LinkedResourceIDs {
			if !seen[linked] && contains(at.ResourceIDs, linked) {
				seen[linked] = true
				extra = append(extra, linked)
			}
		}
	}
	if len(extra) == 0 {
		return resources, nil
	}
	more, err := s.ProviderRepo.GetResources(ctx, extra)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked resources: %w", err)
	}
	byID := make(map[string]models.Resource, len(more))
	for _, r := range more {
		byID[r.ID] = r
	}
	for _, id := range extra {
		if r, ok := byID[id]; ok {
			resources = append(resources, r)
		}
	}
	return resources, nil
}

// afterCommit runs the follow-on flows. They never undo the reservation:
// deposit and confirmation failures are logged and retriable externally.
func (s *DefaultBookingService) afterCommit(ctx context.Context, at *models.AppointmentType, reservation *models.Reservation, customer *models.Customer) {
	logger := utils.GetLogger()

	if reservation.StaffID != "" {
		if err := s.ProviderRepo.MarkStaffBooked(ctx, reservation.StaffID, reservation.CreatedAt); err != nil {
			logger.Warn("failed to update staff booking recency",
				zap.String("staffId", reservation.StaffID), zap.Error(err))
		}
	}

	if s.Deposits != nil && at.DepositAmount > 0 {
		ref, err := s.Deposits.OpenDeposit(ctx, *at, reservation, customer)
		if err != nil {
			logger.Error("failed to open deposit payment",
				zap.String("reservationId", reservation.ID), zap.Error(err))
		} else {
			reservation.DepositRef = ref
			if err := s.ReservationRepo.SetDepositRef(ctx, reservation.ID, ref); err != nil {
				logger.Error("failed to record deposit ref",
					zap.String("reservationId", reservation.ID), zap.Error(err))
			}
		}
	}

	if s.Confirmations != nil {
		loc, lerr := time.LoadLocation(reservation.Timezone)
		if lerr != nil {
			loc = time.UTC
		}
		payload := buildSummary(at, reservation, customer, loc)
		if err := s.Confirmations.Dispatch(ctx, payload); err != nil {
			logger.Error("failed to enqueue confirmation",
				zap.String("reservationId", reservation.ID), zap.Error(err))
		}
	}
}

// CancelReservation flips a reservation to cancelled. History is preserved:
// allocation lines stay as written and simply stop counting.
func (s *DefaultBookingService) CancelReservation(ctx context.Context, reservationID string) error {
	if err := s.ReservationRepo.Cancel(ctx, reservationID); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	return nil
}

// validateAnswers checks submitted intake answers against the declared
// question set: unknown questions are rejected, required ones enforced, and
// select answers restricted to declared options.
func validateAnswers(questions []models.IntakeQuestion, answers []models.IntakeAnswer) error {
	byID := make(map[string]models.IntakeQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return &ValidationError{Field: "answers", Reason: fmt.Sprintf("unknown question %s", a.QuestionID)}
		}
		if q.Type == "select" && a.Value != "" && !contains(q.Options, a.Value) {
			return &ValidationError{Field: "answers", Reason: fmt.Sprintf("answer to %s is not a declared option", q.ID)}
		}
		answered[a.QuestionID] = true
	}
	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			return &ValidationError{Field: "answers", Reason: fmt.Sprintf("question %s is required", q.ID)}
		}
	}
	return nil
}

// buildSummary assembles the confirmation payload in the client's timezone.
func buildSummary(at *models.AppointmentType, reservation *models.Reservation, customer *models.Customer, loc *time.Location) models.ConfirmationPayload {
	return models.ConfirmationPayload{
		ReservationID: reservation.ID,
		ServiceName:   at.Name,
		Location:      at.Location,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		LocalizedDate: reservation.Start.In(loc).Format("Monday, 2 January 2006"),
		Start:         reservation.Start.In(loc).Format("2006-01-02T15:04:05"),
		End:           reservation.End.In(loc).Format("2006-01-02T15:04:05"),
		Timezone:      loc.String(),
		AttendeeCount: reservation.AttendeeCount,
		DepositRef:    reservation.DepositRef,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
