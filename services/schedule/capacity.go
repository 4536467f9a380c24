package schedule

import (
	"salonbook/models"
)

// Usage is one existing capacity consumption overlapping a resource, taken
// from persisted allocation lines of active reservations.
type Usage struct {
	Interval Interval
	Units    int
}

// ResourceState bundles a resource with its current consumption and its
// non-booking downtime inside the lookahead window.
type ResourceState struct {
	Resource models.Resource
	Timezone string
	Usage    []Usage
	Leaves   IntervalSet
}

// Remaining computes the spare capacity of one resource over iv.
//
// Shareable resource under capacity management: declared capacity minus the
// capacity used by overlapping reservations. Non-shareable resource:
// exclusive use, so full capacity with zero overlaps, else nothing. Leave
// downtime zeroes the resource either way.
func Remaining(rs ResourceState, iv Interval, managed bool) int {
	for _, l := range rs.Leaves {
		if l.Overlaps(iv) {
			return 0
		}
	}
	used := 0
	overlapping := 0
	for _, u := range rs.Usage {
		if u.Interval.Overlaps(iv) {
			used += u.Units
			overlapping++
		}
	}
	if !rs.Resource.Shareable || !managed {
		if overlapping > 0 {
			return 0
		}
		return rs.Resource.Capacity
	}
	rem := rs.Resource.Capacity - used
	if rem < 0 {
		rem = 0
	}
	return rem
}

// PoolRemaining sums spare capacity over candidate resources for iv. With
// withLinked set, resources joined by a linked-resource relationship count as
// a single pool: each linkage group contributes once, capped at the group's
// combined declared capacity.
func PoolRemaining(states []ResourceState, iv Interval, managed, withLinked bool) int {
	if !withLinked {
		total := 0
		for _, rs := range states {
			total += Remaining(rs, iv, managed)
		}
		return total
	}

	groups := linkGroups(states)
	total := 0
	for _, group := range groups {
		rem, declared := 0, 0
		for _, rs := range group {
			rem += Remaining(rs, iv, managed)
			declared += rs.Resource.Capacity
		}
		if rem > declared {
			rem = declared
		}
		total += rem
	}
	return total
}

// linkGroups partitions the candidate order into linkage groups, preserving
// caller order. A resource linking an earlier candidate joins its group.
func linkGroups(states []ResourceState) [][]ResourceState {
	index := make(map[string]int)
	var groups [][]ResourceState
	for _, rs := range states {
		joined := -1
		for _, linked := range rs.Resource.LinkedResourceIDs {
			if g, ok := index[linked]; ok {
				joined = g
				break
			}
		}
		if joined < 0 {
			joined = len(groups)
			groups = append(groups, nil)
		}
		groups[joined] = append(groups[joined], rs)
		index[rs.Resource.ID] = joined
	}
	return groups
}

// Allocate greedily consumes the asked capacity from resources in the
// caller-supplied stable order. Each line records the take as both reserved
// and used; for shareable managed resources the external policy may later
// lower used, never above reserved. Returns nil and false when the
// candidates cannot jointly satisfy the ask.
func Allocate(states []ResourceState, iv Interval, asked int, managed bool) ([]models.CapacityAllocation, bool) {
	if asked <= 0 {
		return nil, false
	}
	var lines []models.CapacityAllocation
	need := asked
	for _, rs := range states {
		if need == 0 {
			break
		}
		rem := Remaining(rs, iv, managed)
		take := rem
		if take > need {
			take = need
		}
		if take > rs.Resource.Capacity {
			take = rs.Resource.Capacity
		}
		if take <= 0 {
			continue
		}
		lines = append(lines, models.CapacityAllocation{
			ResourceID:       rs.Resource.ID,
			Start:            iv.Start,
			End:              iv.End,
			CapacityReserved: take,
			CapacityUsed:     take,
		})
		need -= take
	}
	if need > 0 {
		return nil, false
	}
	return lines, true
}
