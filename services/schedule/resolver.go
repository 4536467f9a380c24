package schedule

import (
	"time"

	"salonbook/models"
)

// ProviderSchedule is the availability input for one provider: declared
// recurring working hours plus the commitments already overlapping the
// window. Staff members use Busy (full exclusion); resources use Usage
// (capacity-aware, see capacity.go).
type ProviderSchedule struct {
	ProviderID   string
	Timezone     string
	WorkingHours []models.WorkingPeriod
	Busy         IntervalSet
}

// FreeIntervals computes the provider's free time within [window.Start,
// window.End): declared working hours expanded into the window, minus busy
// commitments. A provider with no working hours in the window yields an
// empty set, not an error.
func FreeIntervals(ps ProviderSchedule, window Interval) IntervalSet {
	working := ExpandWorkingHours(ps.WorkingHours, window, ps.Timezone)
	if len(working) == 0 {
		return nil
	}
	return working.Subtract(ps.Busy)
}

// ExpandWorkingHours materializes weekly recurring working periods into
// concrete intervals inside the window, interpreted in the provider's
// timezone and clipped to the window.
func ExpandWorkingHours(periods []models.WorkingPeriod, window Interval, tz string) IntervalSet {
	if len(periods) == 0 {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}

	byDay := make(map[time.Weekday][]models.WorkingPeriod)
	for _, p := range periods {
		if p.EndMinute > p.StartMinute {
			byDay[p.Weekday] = append(byDay[p.Weekday], p)
		}
	}

	var ivs []Interval
	start := window.Start.In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	for ; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		for _, p := range byDay[day.Weekday()] {
			// Wall-clock minutes, not offsets from midnight: adding an
			// absolute duration to local midnight drifts by the offset
			// change on DST transition days.
			iv := Interval{
				Start: time.Date(day.Year(), day.Month(), day.Day(), 0, p.StartMinute, 0, 0, loc),
				End:   time.Date(day.Year(), day.Month(), day.Day(), 0, p.EndMinute, 0, 0, loc),
			}
			if !iv.Overlaps(window) {
				continue
			}
			if iv.Start.Before(window.Start) {
				iv.Start = window.Start
			}
			if iv.End.After(window.End) {
				iv.End = window.End
			}
			ivs = append(ivs, iv)
		}
	}
	return NewSet(ivs...)
}

// BusyFromReservations turns active reservations into a busy set. Cancelled
// reservations do not consume availability.
func BusyFromReservations(reservations []models.Reservation) IntervalSet {
	var ivs []Interval
	for _, r := range reservations {
		if r.Active() {
			ivs = append(ivs, Interval{Start: r.Start, End: r.End})
		}
	}
	return NewSet(ivs...)
}

// BusyFromLeaves turns declared absences into a busy set.
func BusyFromLeaves(leaves []models.Leave) IntervalSet {
	var ivs []Interval
	for _, l := range leaves {
		ivs = append(ivs, Interval{Start: l.Start, End: l.End})
	}
	return NewSet(ivs...)
}
