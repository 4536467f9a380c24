package schedule

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End). Callers are expected to
// reject end <= start before handing intervals to the algebra.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Covers reports whether iv fully contains o.
func (iv Interval) Covers(o Interval) bool {
	return !iv.Start.After(o.Start) && !iv.End.Before(o.End)
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IntervalSet is a start-sorted, non-overlapping set of intervals. All
// operations preserve that invariant and are deterministic regardless of
// input ordering.
type IntervalSet []Interval

// NewSet builds a normalized set from arbitrary intervals: empty and
// inverted ones are dropped, the rest sorted and merged.
func NewSet(ivs ...Interval) IntervalSet {
	var s IntervalSet
	for _, iv := range ivs {
		if iv.End.After(iv.Start) {
			s = append(s, iv)
		}
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Start.Before(s[j].Start) })
	return s.merge()
}

// merge collapses touching or overlapping neighbours of a sorted set.
func (s IntervalSet) merge() IntervalSet {
	if len(s) < 2 {
		return s
	}
	out := IntervalSet{s[0]}
	for _, iv := range s[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Union returns the merged combination of both sets.
func (s IntervalSet) Union(o IntervalSet) IntervalSet {
	return NewSet(append(append(IntervalSet{}, s...), o...)...)
}

// Intersect returns the ranges present in both sets.
func (s IntervalSet) Intersect(o IntervalSet) IntervalSet {
	var out IntervalSet
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		start := s[i].Start
		if o[j].Start.After(start) {
			start = o[j].Start
		}
		end := s[i].End
		if o[j].End.Before(end) {
			end = o[j].End
		}
		if end.After(start) {
			out = append(out, Interval{Start: start, End: end})
		}
		if s[i].End.Before(o[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// Subtract returns s minus every range in o.
func (s IntervalSet) Subtract(o IntervalSet) IntervalSet {
	out := append(IntervalSet{}, s...)
	for _, cut := range o {
		var next IntervalSet
		for _, iv := range out {
			if !iv.Overlaps(cut) {
				next = append(next, iv)
				continue
			}
			if cut.Start.After(iv.Start) {
				next = append(next, Interval{Start: iv.Start, End: cut.Start})
			}
			if cut.End.Before(iv.End) {
				next = append(next, Interval{Start: cut.End, End: iv.End})
			}
		}
		out = next
	}
	return out
}

// Invert returns the gaps of s within bounds, turning "busy" into "free".
func (s IntervalSet) Invert(bounds Interval) IntervalSet {
	return IntervalSet{bounds}.Subtract(s)
}

// In converts every interval to the given location. Wall-clock only; the
// instants are unchanged, so set invariants hold.
func (s IntervalSet) In(loc *time.Location) IntervalSet {
	out := make(IntervalSet, len(s))
	for i, iv := range s {
		out[i] = Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
	}
	return out
}

// Covers reports whether iv lies entirely inside a single member of s.
// Members are merged, so a covered interval always sits in exactly one.
func (s IntervalSet) Covers(iv Interval) bool {
	for _, m := range s {
		if m.Covers(iv) {
			return true
		}
		if m.Start.After(iv.Start) {
			break
		}
	}
	return false
}

// TotalDuration sums the member lengths.
func (s IntervalSet) TotalDuration() time.Duration {
	var d time.Duration
	for _, iv := range s {
		d += iv.Duration()
	}
	return d
}
