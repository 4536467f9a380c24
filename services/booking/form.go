package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salonbook/models"
	"salonbook/services/schedule"
)

// cachedOffer is the advisory slot-offer context stored in redis between the
// listing and the submission. It never substitutes for revalidation.
type cachedOffer struct {
	TypeID        string        `json:"typeId"`
	Selection     SlotSelection `json:"selection"`
	AskedCapacity int           `json:"askedCapacity"`
}

func offerKey(id string) string { return "offer:" + id }

// GetBookingFormContext prepares the intake-form prefill data for a selected
// slot: declared questions, known customer identity, localized date strings
// and the applicable price/deposit amounts. The selection is cached under an
// offer id so the submission can be correlated with what was shown.
func (s *DefaultBookingService) GetBookingFormContext(ctx context.Context, viewer Viewer, typeID string, sel SlotSelection, askedCapacity int) (*FormContext, error) {
	at, err := s.loadType(ctx, viewer, typeID)
	if err != nil {
		return nil, err
	}
	if askedCapacity <= 0 {
		askedCapacity = 1
	}

	iv, loc, err := parseSelection(at, viewer, sel)
	if err != nil {
		return nil, err
	}

	form := &FormContext{
		TypeID:          at.ID,
		TypeName:        at.Name,
		Location:        at.Location,
		Questions:       at.Questions,
		LocalizedDate:   iv.Start.In(loc).Format("Monday, 2 January 2006"),
		StartLocal:      iv.Start.In(loc).Format("2006-01-02T15:04:05"),
		EndLocal:        iv.End.In(loc).Format("2006-01-02T15:04:05"),
		Timezone:        loc.String(),
		AskedCapacity:   askedCapacity,
		AllowGuests:     at.AllowGuests,
		DepositAmount:   at.DepositAmount,
		DepositCurrency: at.DepositCurrency,
		PriceAmount:     at.PriceAmount,
	}

	if viewer.CustomerID != "" {
		customer, err := s.CustomerRepo.GetByID(ctx, viewer.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
		form.Customer = customer
	}

	if s.CacheClient != nil {
		form.OfferID = uuid.New().String()
		data, err := json.Marshal(cachedOffer{TypeID: typeID, Selection: sel, AskedCapacity: askedCapacity})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal offer context: %w", err)
		}
		ttl := s.OfferTTL
		if ttl <= 0 {
			ttl = 15 * time.Minute
		}
		if err := s.CacheClient.Set(ctx, offerKey(form.OfferID), data, ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to cache offer context: %w", err)
		}
	}

	return form, nil
}

// resolveOffer recovers a cached selection when the submission carries only
// an offer id.
func (s *DefaultBookingService) resolveOffer(ctx context.Context, offerID string) (*cachedOffer, error) {
	if s.CacheClient == nil {
		return nil, ErrNotFound
	}
	data, err := s.CacheClient.Get(ctx, offerKey(offerID)).Result()
	if err != nil {
		return nil, ErrNotFound
	}
	var offer cachedOffer
	if err := json.Unmarshal([]byte(data), &offer); err != nil {
		return nil, fmt.Errorf("failed to parse offer context: %w", err)
	}
	return &offer, nil
}

// parseSelection turns a client slot selection into a validated half-open
// interval. Timestamps cross the boundary as ISO strings with the timezone
// carried separately.
func parseSelection(at *models.AppointmentType, viewer Viewer, sel SlotSelection) (schedule.Interval, *time.Location, error) {
	if at.DurationMinutes <= 0 {
		return schedule.Interval{}, nil, &ValidationError{Field: "duration", Reason: "must be positive"}
	}

	loc := viewerLocation(viewer, at)
	if sel.Timezone != "" {
		l, err := time.LoadLocation(sel.Timezone)
		if err != nil {
			return schedule.Interval{}, nil, &ValidationError{Field: "timezone", Reason: "unknown timezone"}
		}
		loc = l
	}

	start, err := time.ParseInLocation("2006-01-02T15:04:05", sel.Start, loc)
	if err != nil {
		start, err = time.Parse(time.RFC3339, sel.Start)
		if err != nil {
			return schedule.Interval{}, nil, &ValidationError{Field: "start", Reason: "expected ISO timestamp"}
		}
	}

	iv := schedule.Interval{
		Start: start.UTC(),
		End:   start.Add(time.Duration(at.DurationMinutes) * time.Minute).UTC(),
	}
	return iv, loc, nil
}
