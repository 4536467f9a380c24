package schedule

import (
	"testing"
	"time"

	"salonbook/models"
)

func haircutType() models.AppointmentType {
	return models.AppointmentType{
		ID:              "haircut",
		Name:            "Haircut",
		ScheduleBasis:   models.ScheduleStaff,
		DurationMinutes: 60,
		GranularityMin:  30,
		Timezone:        "UTC",
		LookaheadDays:   7,
	}
}

func monday(hour, min int) time.Time {
	// 2024-06-03 is a Monday.
	return time.Date(2024, 6, 3, hour, min, 0, 0, time.UTC)
}

func haircutRequest() GridRequest {
	return GridRequest{
		Type: haircutType(),
		Staff: []ProviderSchedule{
			{
				ProviderID: "alice",
				Timezone:   "UTC",
				WorkingHours: []models.WorkingPeriod{
					{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60},
				},
			},
			{
				ProviderID: "bob",
				Timezone:   "UTC",
				WorkingHours: []models.WorkingPeriod{
					{Weekday: time.Monday, StartMinute: 13 * 60, EndMinute: 15 * 60},
				},
			},
		},
		Now:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Reference: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Locale:    "en-GB",
	}
}

func daySlots(t *testing.T, l Listing, date time.Time) []Slot {
	t.Helper()
	key := date.Format("2006-01-02")
	for _, m := range l.Months {
		for _, w := range m.Weeks {
			for _, d := range w.Days {
				if d.InMonth && d.Date.Format("2006-01-02") == key {
					return d.Slots
				}
			}
		}
	}
	t.Fatalf("day %s not present in listing", key)
	return nil
}

func slotAt(slots []Slot, start time.Time) *Slot {
	for i := range slots {
		if slots[i].Start.Equal(start) {
			return &slots[i]
		}
	}
	return nil
}

func TestBuildListing_StaffScenario(t *testing.T) {
	l := BuildListing(haircutRequest())

	if l.FirstAvailableMonth != "2024-06" {
		t.Fatalf("expected first available month 2024-06, got %q", l.FirstAvailableMonth)
	}

	slots := daySlots(t, l, monday(0, 0))
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots on the Monday, got %d: %v", len(slots), slots)
	}

	first := slotAt(slots, monday(9, 0))
	if first == nil {
		t.Fatalf("expected a 09:00 slot")
	}
	if len(first.ProviderIDs) != 1 || first.ProviderIDs[0] != "alice" {
		t.Fatalf("expected only alice at 09:00, got %v", first.ProviderIDs)
	}
	if first.DurationMinutes != 60 {
		t.Fatalf("unexpected slot duration %d", first.DurationMinutes)
	}

	// 11:00 is the last start fitting inside Alice's morning block.
	if slotAt(slots, monday(11, 30)) != nil {
		t.Fatalf("unexpected slot at 11:30 overrunning working hours")
	}
	if slotAt(slots, monday(12, 30)) != nil {
		t.Fatalf("unexpected slot at 12:30 in the gap")
	}
	if s := slotAt(slots, monday(14, 0)); s == nil || s.ProviderIDs[0] != "bob" {
		t.Fatalf("expected bob's 14:00 slot, got %v", s)
	}
}

func TestBuildListing_BusyStaffExcluded(t *testing.T) {
	req := haircutRequest()
	// Alice booked 09:00-10:00: the 09:00 slot disappears and 09:30 cannot
	// start inside the remaining block either.
	req.Staff[0].Busy = NewSet(Interval{Start: monday(9, 0), End: monday(10, 0)})

	slots := daySlots(t, BuildListing(req), monday(0, 0))
	if slotAt(slots, monday(9, 0)) != nil {
		t.Fatalf("expected no 09:00 slot while alice is booked")
	}
	if s := slotAt(slots, monday(10, 0)); s == nil {
		t.Fatalf("expected alice free again at 10:00")
	}
}

func TestBuildListing_NoProviders(t *testing.T) {
	req := haircutRequest()
	req.Staff = nil

	l := BuildListing(req)
	if l.FirstAvailableMonth != NoAvailableMonth {
		t.Fatalf("expected %q, got %q", NoAvailableMonth, l.FirstAvailableMonth)
	}
	if len(l.Months) == 0 {
		t.Fatalf("expected the empty grid to still carry months")
	}
}

func TestBuildListing_SkipsPastSlots(t *testing.T) {
	req := haircutRequest()
	req.Now = monday(9, 45)
	req.Reference = req.Now

	slots := daySlots(t, BuildListing(req), monday(0, 0))
	if slotAt(slots, monday(9, 30)) != nil {
		t.Fatalf("expected past starts to be skipped")
	}
	if slotAt(slots, monday(10, 0)) == nil {
		t.Fatalf("expected the next future start to remain")
	}
}

func TestBuildListing_WeekdayOrderAndPadding(t *testing.T) {
	l := BuildListing(haircutRequest())
	if l.Weekdays[0] != "Mon" || l.Weekdays[6] != "Sun" {
		t.Fatalf("expected Monday-first order for en-GB, got %v", l.Weekdays)
	}

	// June 2024 starts on a Saturday: the first grid week is padded with
	// out-of-month days back to Monday May 27.
	firstDay := l.Months[0].Weeks[0].Days[0]
	if firstDay.InMonth {
		t.Fatalf("expected padded leading day, got in-month %v", firstDay.Date)
	}
	if firstDay.Date.Weekday() != time.Monday {
		t.Fatalf("expected grid to open on Monday, got %v", firstDay.Date.Weekday())
	}

	req := haircutRequest()
	req.Locale = "en-US"
	l = BuildListing(req)
	if l.Weekdays[0] != "Sun" {
		t.Fatalf("expected Sunday-first order for en-US, got %v", l.Weekdays)
	}
	if l.Months[0].Weeks[0].Days[0].Date.Weekday() != time.Sunday {
		t.Fatalf("expected en-US grid to open on Sunday")
	}
}

func roomType() models.AppointmentType {
	return models.AppointmentType{
		ID:              "treatment",
		Name:            "Treatment Room",
		ScheduleBasis:   models.ScheduleResource,
		DurationMinutes: 60,
		GranularityMin:  60,
		Timezone:        "UTC",
		LookaheadDays:   7,
		ManageCapacity:  true,
	}
}

func roomState(id string, capacity int) ResourceState {
	return ResourceState{
		Resource: models.Resource{
			ID:        id,
			Capacity:  capacity,
			Shareable: true,
			Active:    true,
			WorkingHours: []models.WorkingPeriod{
				{Weekday: time.Monday, StartMinute: 10 * 60, EndMinute: 12 * 60},
			},
		},
		Timezone: "UTC",
	}
}

func TestBuildListing_ResourceCapacity(t *testing.T) {
	req := GridRequest{
		Type:          roomType(),
		Resources:     []ResourceState{roomState("room", 3)},
		AskedCapacity: 2,
		Now:           time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Reference:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Locale:        "en-GB",
	}

	slots := daySlots(t, BuildListing(req), monday(0, 0))
	if len(slots) != 2 {
		t.Fatalf("expected 10:00 and 11:00 slots, got %v", slots)
	}
	if slots[0].RemainingCapacity != 3 {
		t.Fatalf("expected remaining capacity 3, got %d", slots[0].RemainingCapacity)
	}

	req.AskedCapacity = 4
	l := BuildListing(req)
	if l.FirstAvailableMonth != NoAvailableMonth {
		t.Fatalf("expected no slot for ask above capacity, got %q", l.FirstAvailableMonth)
	}
}

func TestBuildListing_ResourcesCombine(t *testing.T) {
	// Asked 4 is satisfiable only by pooling both rooms.
	req := GridRequest{
		Type:          roomType(),
		Resources:     []ResourceState{roomState("r1", 2), roomState("r2", 3)},
		AskedCapacity: 4,
		Now:           time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Reference:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Locale:        "en-GB",
	}

	slots := daySlots(t, BuildListing(req), monday(0, 0))
	if len(slots) != 2 {
		t.Fatalf("expected pooled slots, got %v", slots)
	}
	s := slots[0]
	if s.RemainingCapacity != 5 {
		t.Fatalf("expected pooled remaining 5, got %d", s.RemainingCapacity)
	}
	if len(s.ProviderIDs) != 2 {
		t.Fatalf("expected both rooms listed, got %v", s.ProviderIDs)
	}
}

func TestBuildListing_ResourceUsageShrinksSlot(t *testing.T) {
	state := roomState("room", 2)
	state.Usage = []Usage{{
		Interval: Interval{Start: monday(10, 0), End: monday(11, 0)},
		Units:    2,
	}}
	req := GridRequest{
		Type:          roomType(),
		Resources:     []ResourceState{state},
		AskedCapacity: 1,
		Now:           time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Reference:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Locale:        "en-GB",
	}

	slots := daySlots(t, BuildListing(req), monday(0, 0))
	if slotAt(slots, monday(10, 0)) != nil {
		t.Fatalf("expected fully-used hour to vanish")
	}
	if slotAt(slots, monday(11, 0)) == nil {
		t.Fatalf("expected the free hour to remain")
	}
}
