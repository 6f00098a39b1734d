// internal/app/allocator/allocator.go

// Package allocator contains the pure placement decision for assigning a
// newly granted user to one of a product's cohort groups.
//
// The decision is a function of a point-in-time snapshot only. It never
// touches the database, never retries, and is deterministic: the same
// snapshot always yields the same group. Concurrency control and the
// membership write belong to the assignment coordinator, not here.
package allocator

import (
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrExhausted means every group in the snapshot is at capacity.
	// This is an expected outcome, handled by operator follow-up; the
	// user's access grant stays valid.
	ErrExhausted = errors.New("all groups are at capacity")

	// ErrNoGroups means the snapshot contained no groups at all. The
	// product is misconfigured; nothing can be placed automatically.
	ErrNoGroups = errors.New("product has no groups")
)

// GroupLoad is one group's current occupancy inside a snapshot.
type GroupLoad struct {
	ID        primitive.ObjectID
	Occupancy int
}

// Snapshot is a read-only view of one product's groups, captured
// immediately before a placement decision and discarded after. Capacity is
// the product's max_users and applies to every group uniformly.
type Snapshot struct {
	ProductID primitive.ObjectID
	Capacity  int
	Groups    []GroupLoad
}

// Decide selects the group the candidate user should join, or reports why
// no group can take them.
//
// The policy is greedy consolidation, not load equalization:
//
//  1. Find the minimum-occupancy group (ties broken by lowest group ID).
//     If even that group is full, every group is full: ErrExhausted.
//  2. Otherwise scan groups from busiest to least busy (occupancy
//     descending, group ID descending on ties) and pick the first group
//     with a free seat. New users concentrate in partially filled groups
//     instead of spreading out.
//
// The step-2 scan order is the exact reverse of step 1's ordering, so when
// all groups are empty the scan picks the highest group ID.
func Decide(snap Snapshot) (primitive.ObjectID, error) {
	if len(snap.Groups) == 0 {
		return primitive.NilObjectID, ErrNoGroups
	}

	ordered := make([]GroupLoad, len(snap.Groups))
	copy(ordered, snap.Groups)
	sortByLoadAscending(ordered)

	if ordered[0].Occupancy >= snap.Capacity {
		return primitive.NilObjectID, ErrExhausted
	}

	return busiestOpenGroup(ordered, snap.Capacity), nil
}

// sortByLoadAscending orders groups by occupancy ascending, ties by group
// ID ascending. Element 0 is the minimum-occupancy group with the lowest ID.
func sortByLoadAscending(groups []GroupLoad) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Occupancy != groups[j].Occupancy {
			return groups[i].Occupancy < groups[j].Occupancy
		}
		return groups[i].ID.Hex() < groups[j].ID.Hex()
	})
}

// busiestOpenGroup walks the ascending ordering in reverse (busiest first)
// and returns the first group under capacity. The caller has already
// verified at least one open seat exists.
func busiestOpenGroup(ascending []GroupLoad, capacity int) primitive.ObjectID {
	for i := len(ascending) - 1; i >= 0; i-- {
		if ascending[i].Occupancy < capacity {
			return ascending[i].ID
		}
	}
	// Unreachable: the minimum-occupancy group had a free seat.
	return ascending[0].ID
}
