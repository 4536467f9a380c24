package schedule

import (
	"testing"
	"time"
)

func at(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2030, 6, 3, hour, min, 0, 0, time.UTC)
}

func iv(t *testing.T, startHour, startMin, endHour, endMin int) Interval {
	t.Helper()
	return Interval{Start: at(t, startHour, startMin), End: at(t, endHour, endMin)}
}

func assertNormalized(t *testing.T, s IntervalSet) {
	t.Helper()
	for i := 1; i < len(s); i++ {
		// Touching intervals must have been merged, so each interval
		// starts strictly after the previous one ends.
		if !s[i].Start.After(s[i-1].End) {
			t.Fatalf("set not normalized at %d: %v then %v", i, s[i-1], s[i])
		}
		if s[i-1].Start.After(s[i].Start) {
			t.Fatalf("set not sorted at %d", i)
		}
	}
}

func TestNewSet_MergesAndSorts(t *testing.T) {
	s := NewSet(
		iv(t, 10, 0, 11, 0),
		iv(t, 9, 0, 10, 30),
		iv(t, 13, 0, 14, 0),
		iv(t, 14, 0, 15, 0), // touching, must merge
	)
	if len(s) != 2 {
		t.Fatalf("expected 2 merged intervals, got %d: %v", len(s), s)
	}
	if !s[0].Start.Equal(at(t, 9, 0)) || !s[0].End.Equal(at(t, 11, 0)) {
		t.Fatalf("unexpected first interval: %v", s[0])
	}
	if !s[1].Start.Equal(at(t, 13, 0)) || !s[1].End.Equal(at(t, 15, 0)) {
		t.Fatalf("unexpected second interval: %v", s[1])
	}
	assertNormalized(t, s)
}

func TestNewSet_DropsEmptyAndInverted(t *testing.T) {
	s := NewSet(
		Interval{Start: at(t, 9, 0), End: at(t, 9, 0)},
		Interval{Start: at(t, 11, 0), End: at(t, 10, 0)},
	)
	if len(s) != 0 {
		t.Fatalf("expected empty set, got %v", s)
	}
}

func TestSubtract(t *testing.T) {
	a := NewSet(iv(t, 9, 0, 17, 0))
	b := NewSet(iv(t, 10, 0, 11, 0), iv(t, 12, 0, 12, 30))

	got := a.Subtract(b)
	want := NewSet(iv(t, 9, 0, 10, 0), iv(t, 11, 0, 12, 0), iv(t, 12, 30, 17, 0))
	assertSetsEqual(t, got, want)
}

func TestIntersect(t *testing.T) {
	a := NewSet(iv(t, 9, 0, 12, 0), iv(t, 13, 0, 15, 0))
	b := NewSet(iv(t, 11, 0, 14, 0))

	got := a.Intersect(b)
	want := NewSet(iv(t, 11, 0, 12, 0), iv(t, 13, 0, 14, 0))
	assertSetsEqual(t, got, want)
}

// For all sets A and B: A = (A - B) ∪ (A ∩ B).
func TestAlgebraSoundness(t *testing.T) {
	cases := []struct {
		name string
		a, b IntervalSet
	}{
		{
			name: "overlapping",
			a:    NewSet(iv(t, 9, 0, 12, 0), iv(t, 13, 0, 15, 0)),
			b:    NewSet(iv(t, 11, 0, 13, 30)),
		},
		{
			name: "disjoint",
			a:    NewSet(iv(t, 9, 0, 10, 0)),
			b:    NewSet(iv(t, 11, 0, 12, 0)),
		},
		{
			name: "contained",
			a:    NewSet(iv(t, 9, 0, 17, 0)),
			b:    NewSet(iv(t, 10, 0, 11, 0), iv(t, 12, 0, 13, 0)),
		},
		{
			name: "empty b",
			a:    NewSet(iv(t, 9, 0, 17, 0)),
			b:    nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diff := tc.a.Subtract(tc.b)
			inter := tc.a.Intersect(tc.b)
			rebuilt := diff.Union(inter)
			assertSetsEqual(t, rebuilt, tc.a)
			assertNormalized(t, diff)
			assertNormalized(t, inter)
			assertNormalized(t, rebuilt)
		})
	}
}

func TestInvert(t *testing.T) {
	busy := NewSet(iv(t, 10, 0, 11, 0), iv(t, 12, 0, 13, 0))
	bounds := iv(t, 9, 0, 17, 0)

	free := busy.Invert(bounds)
	want := NewSet(iv(t, 9, 0, 10, 0), iv(t, 11, 0, 12, 0), iv(t, 13, 0, 17, 0))
	assertSetsEqual(t, free, want)

	// Inverting twice within the same bounds restores the original.
	assertSetsEqual(t, free.Invert(bounds), busy)
}

func TestCovers(t *testing.T) {
	s := NewSet(iv(t, 9, 0, 12, 0), iv(t, 13, 0, 15, 0))

	if !s.Covers(iv(t, 9, 30, 10, 30)) {
		t.Fatalf("expected 9:30-10:30 covered")
	}
	if s.Covers(iv(t, 11, 30, 13, 30)) {
		t.Fatalf("expected gap-spanning interval not covered")
	}
	if s.Covers(iv(t, 14, 30, 15, 30)) {
		t.Fatalf("expected interval past the end not covered")
	}
}

func assertSetsEqual(t *testing.T, got, want IntervalSet) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("set length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d mismatch: got %v, want %v", i, got[i], want[i])
		}
	}
}
