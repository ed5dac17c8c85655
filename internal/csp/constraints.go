package csp

import (
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/timeslot"
)

// Candidate is a tentative value for one variable, checked against the
// search state before it is committed.
type Candidate struct {
	Slot     timeslot.Slot
	Lecturer string
	Room     string
}

// sessionHours is the wall-clock length, in hours, of one session
// block — every period in the grid is a fixed two-hour block per
// spec.md §3.
const sessionHours = 2

// feasible runs every hard constraint from spec.md §4.3 against a
// candidate value for v, given the rest of the search state.
func feasible(s *state, v *Variable, c Candidate) bool {
	// 1. Room not double-booked at this slot.
	if !s.roomFree(c.Room, c.Slot) {
		return false
	}
	// 2. Lecturer not double-booked at this slot.
	if !s.lecturerFree(c.Lecturer, c.Slot) {
		return false
	}
	// 3. Cohort (program) not double-booked at this slot.
	if !s.cohortFree(v.ProgramID, c.Slot) {
		return false
	}
	// 4. Lecturer has residual weekly hours for this session.
	if !s.lecturerHasHours(c.Lecturer, sessionHours) {
		return false
	}
	// 5. Lecturer under their per-day session cap.
	if !s.lecturerUnderDailyCap(c.Lecturer, c.Slot.Day) {
		return false
	}
	// 6. At most one morning and one afternoon session per lecturer per day.
	if !s.lecturerPeriodShapeOK(c.Lecturer, c.Slot.Day, c.Slot.Period.IsAfternoon) {
		return false
	}
	// 7. Cohort never takes the same canonical course twice in one day.
	if !s.cohortCanonicalDayFree(v.ProgramID, v.CanonicalID, c.Slot.Day) {
		return false
	}
	// 8-10. Room availability/type/capacity and lecturer
	// qualification/per-slot availability are enforced at
	// domain-construction time: candidates are only ever drawn from an
	// already-filtered domain, so no re-check is needed here.
	return true
}

// SearchState is the exported handle around the package-private search
// state, letting the GGA package validate candidate moves without
// re-deriving the CSP's constraint implementation, and without the GGA
// needing to import the ledger package itself.
type SearchState struct {
	inner *state
}

// NewSearchState creates an empty search state with no pre-booked
// occupancy.
func NewSearchState() *SearchState {
	return &SearchState{inner: newState()}
}

// MarkOccupied implements ledger.OccupancyConsumer, so a SearchState can
// be passed directly to Ledger.SnapshotInto.
func (s *SearchState) MarkOccupied(kind ledger.ResourceKind, resourceID string, day timeslot.Day, period int) {
	s.inner.MarkOccupied(kind, resourceID, day, period)
}

// Apply commits v's current assignment into the state, for callers
// (the GGA) building up a state from an existing chromosome.
func (s *SearchState) Apply(v *Variable) {
	s.inner.commit(v, sessionHours)
}

// Retract undoes a prior Apply.
func (s *SearchState) Retract(v *Variable) {
	s.inner.uncommit(v, sessionHours)
}

// Feasible reports whether candidate c is a legal value for v given
// everything already applied to s.
func Feasible(s *SearchState, v *Variable, c Candidate) bool {
	return feasible(s.inner, v, c)
}
