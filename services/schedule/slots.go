package schedule

import (
	"sort"
	"time"

	"salonbook/models"
)

// NoAvailableMonth is the sentinel listing id meaning no slot exists in the
// whole lookahead window.
const NoAvailableMonth = "none"

// Slot is a candidate bookable unit. Ephemeral: computed per request, never
// persisted until booked. ProviderIDs lists every staff member free over the
// slot, or the resources contributing remaining capacity.
type Slot struct {
	Start             time.Time `json:"start"`
	DurationMinutes   int       `json:"durationMinutes"`
	ProviderIDs       []string  `json:"providerIds"`
	RemainingCapacity int       `json:"remainingCapacity"`
}

// Day is a day bucket of the display grid.
type Day struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"inMonth"`
	Slots   []Slot    `json:"slots,omitempty"`
}

// Week is seven consecutive day buckets starting on the locale's first
// weekday.
type Week struct {
	Days []Day `json:"days"`
}

// Month is a month bucket identified as "YYYY-MM".
type Month struct {
	ID    string `json:"id"`
	Weeks []Week `json:"weeks"`
}

// Listing is the full slot grid for one request.
type Listing struct {
	Months              []Month   `json:"months"`
	FirstAvailableMonth string    `json:"firstAvailableMonth"`
	Weekdays            [7]string `json:"weekdays"`
}

// GridRequest carries everything the generator needs. Exactly one of Staff /
// Resources is populated, matching the appointment type's schedule basis.
type GridRequest struct {
	Type          models.AppointmentType
	Staff         []ProviderSchedule
	Resources     []ResourceState
	AskedCapacity int
	Reference     time.Time
	Now           time.Time
	Locale        string
	WithLinked    bool
}

// BuildListing assembles the month/week/day grid of bookable slots over the
// type's lookahead window. Zero eligible providers produce an empty grid, not
// an error.
func BuildListing(req GridRequest) Listing {
	loc := typeLocation(req.Type)
	now := req.Now.In(loc)

	ref := req.Reference
	if ref.IsZero() {
		ref = now
	}
	ref = ref.In(loc)

	firstMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	windowStart := now
	if firstMonth.After(windowStart) {
		windowStart = firstMonth
	}
	lookahead := req.Type.LookaheadDays
	if lookahead <= 0 {
		lookahead = 30
	}
	windowEnd := now.AddDate(0, 0, lookahead)

	// Expand availability from the day boundary so candidate starts stay on
	// the working-hours grid; candidateStarts drops anything before now.
	dayStart := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, loc)
	window := Interval{Start: dayStart, End: windowEnd}

	slots := generateSlots(req, window, loc)

	byDay := make(map[string][]Slot)
	for _, s := range slots {
		key := s.Start.In(loc).Format("2006-01-02")
		byDay[key] = append(byDay[key], s)
	}

	firstWeekday := FirstWeekday(req.Locale)
	listing := Listing{
		FirstAvailableMonth: NoAvailableMonth,
		Weekdays:            OrderedWeekdays(req.Locale),
	}
	for month := firstMonth; month.Before(windowEnd); month = month.AddDate(0, 1, 0) {
		m := buildMonth(month, firstWeekday, byDay, loc)
		if listing.FirstAvailableMonth == NoAvailableMonth && monthHasSlots(m) {
			listing.FirstAvailableMonth = m.ID
		}
		listing.Months = append(listing.Months, m)
	}
	return listing
}

// generateSlots produces the flat, time-ascending slot list for the window.
func generateSlots(req GridRequest, window Interval, loc *time.Location) []Slot {
	duration := time.Duration(req.Type.DurationMinutes) * time.Minute
	if duration <= 0 {
		return nil
	}
	step := time.Duration(req.Type.GranularityMin) * time.Minute
	if step <= 0 {
		step = duration
	}

	if req.Type.ScheduleBasis == models.ScheduleResource {
		return resourceSlots(req, window, duration, step, loc)
	}
	return staffSlots(req, window, duration, step, loc)
}

// staffSlots: a slot exists at T when at least one staff member is free over
// the whole [T, T+D); its provider list is every such member.
func staffSlots(req GridRequest, window Interval, duration, step time.Duration, loc *time.Location) []Slot {
	providersAt := make(map[time.Time][]string)
	for _, ps := range req.Staff {
		free := FreeIntervals(ps, window)
		for _, start := range candidateStarts(free, duration, step, req.Now) {
			providersAt[start] = append(providersAt[start], ps.ProviderID)
		}
	}
	starts := make([]time.Time, 0, len(providersAt))
	for t := range providersAt {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	slots := make([]Slot, 0, len(starts))
	for _, t := range starts {
		ids := providersAt[t]
		sort.Strings(ids)
		slots = append(slots, Slot{
			Start:             t.In(loc),
			DurationMinutes:   req.Type.DurationMinutes,
			ProviderIDs:       ids,
			RemainingCapacity: 1,
		})
	}
	return slots
}

// resourceSlots: a slot exists at T when the pooled spare capacity of the
// resources whose free time fully covers [T, T+D) reaches the asked
// capacity. Combining several resources to satisfy the ask is allowed.
func resourceSlots(req GridRequest, window Interval, duration, step time.Duration, loc *time.Location) []Slot {
	asked := req.AskedCapacity
	if asked <= 0 {
		asked = 1
	}

	free := make([]IntervalSet, len(req.Resources))
	startSet := make(map[time.Time]struct{})
	for i, rs := range req.Resources {
		ps := ProviderSchedule{
			ProviderID:   rs.Resource.ID,
			Timezone:     rs.Timezone,
			WorkingHours: rs.Resource.WorkingHours,
			Busy:         rs.Leaves,
		}
		free[i] = FreeIntervals(ps, window)
		for _, start := range candidateStarts(free[i], duration, step, req.Now) {
			startSet[start] = struct{}{}
		}
	}
	starts := make([]time.Time, 0, len(startSet))
	for t := range startSet {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	var slots []Slot
	for _, t := range starts {
		iv := Interval{Start: t, End: t.Add(duration)}
		var covering []ResourceState
		var ids []string
		for i, rs := range req.Resources {
			if free[i].Covers(iv) {
				covering = append(covering, rs)
				ids = append(ids, rs.Resource.ID)
			}
		}
		remaining := PoolRemaining(covering, iv, req.Type.ManageCapacity, req.WithLinked)
		if remaining < asked {
			continue
		}
		slots = append(slots, Slot{
			Start:             t.In(loc),
			DurationMinutes:   req.Type.DurationMinutes,
			ProviderIDs:       ids,
			RemainingCapacity: remaining,
		})
	}
	return slots
}

// candidateStarts steps through each free interval at the granularity,
// clipped to the interval boundaries, skipping starts already in the past.
func candidateStarts(free IntervalSet, duration, step time.Duration, now time.Time) []time.Time {
	var starts []time.Time
	for _, iv := range free {
		for t := iv.Start; !t.Add(duration).After(iv.End); t = t.Add(step) {
			if t.Before(now) {
				continue
			}
			starts = append(starts, t.UTC())
		}
	}
	return starts
}

// buildMonth lays one month out as weeks beginning on the locale's first
// weekday, padding the edges with out-of-month day buckets.
func buildMonth(month time.Time, firstWeekday time.Weekday, byDay map[string][]Slot, loc *time.Location) Month {
	m := Month{ID: month.Format("2006-01")}

	gridStart := month
	for gridStart.Weekday() != firstWeekday {
		gridStart = gridStart.AddDate(0, 0, -1)
	}
	monthEnd := month.AddDate(0, 1, 0)

	for ws := gridStart; ws.Before(monthEnd); ws = ws.AddDate(0, 0, 7) {
		week := Week{Days: make([]Day, 0, 7)}
		for i := 0; i < 7; i++ {
			d := ws.AddDate(0, 0, i)
			day := Day{Date: d, InMonth: !d.Before(month) && d.Before(monthEnd)}
			if day.InMonth {
				day.Slots = byDay[d.In(loc).Format("2006-01-02")]
			}
			week.Days = append(week.Days, day)
		}
		m.Weeks = append(m.Weeks, week)
	}
	return m
}

func monthHasSlots(m Month) bool {
	for _, w := range m.Weeks {
		for _, d := range w.Days {
			if len(d.Slots) > 0 {
				return true
			}
		}
	}
	return false
}

func typeLocation(at models.AppointmentType) *time.Location {
	loc, err := time.LoadLocation(at.Timezone)
	if err != nil || at.Timezone == "" {
		return time.UTC
	}
	return loc
}
