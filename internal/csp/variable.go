// Package csp builds the constraint-satisfaction problem for one
// planning run and searches it for a feasible baseline schedule, per
// spec.md §4.3. It is grounded on the teacher's internal/graph conflict
// modeling and internal/solver/room_assignment.go's capacity-first room
// assignment, generalized from a fixed 35-block grid and graph-coloring
// search to the spec's configurable grid and explicit MRV/backtracking
// search.
package csp

import (
	"fmt"

	"timetable-planner/internal/entity"
	"timetable-planner/internal/timeslot"
)

// Domain holds the three pruned domains for one variable, plus the
// per-lecturer time-slot subset spec.md §4.3 requires for part-time
// availability.
type Domain struct {
	Slots           []timeslot.Slot
	Lecturers       []string
	Rooms           []string
	RoomCapacity    map[string]int // room id -> capacity, for capacity-ascending LCV ordering
	LecturerSlots   map[string][]timeslot.Slot // lecturer id -> allowed slots
}

// Variable is one CSP unknown: a single required session of a course
// for a cohort, per spec.md §4.3.
type Variable struct {
	ID            string
	ProgramID     string
	CourseID      string
	CourseCode    string
	CanonicalID   string // "" if the course has no canonical class
	CohortSize    int
	RoomType      entity.RoomType
	SessionNumber int
	SessionsTotal int
	Domain        Domain

	// Assignment, set once the search commits a value to this variable.
	Assigned  bool
	Slot      timeslot.Slot
	Lecturer  string
	Room      string
}

// VariableID formats the canonical id for a (program, course, session)
// triple, matching the teacher's "-W%d" style session-numbering idiom.
func VariableID(programID, courseID string, sessionNumber int) string {
	return fmt.Sprintf("%s:%s:S%d", programID, courseID, sessionNumber)
}

// EmptyDomain reports whether any of the three required domains is
// empty — a feasibility error per spec.md §7.
func (v *Variable) EmptyDomain() bool {
	return len(v.Domain.Slots) == 0 || len(v.Domain.Lecturers) == 0 || len(v.Domain.Rooms) == 0
}

// MRVScore is the "smallest product" Minimum-Remaining-Values measure
// from spec.md §4.3, corrected for the per-lecturer slot intersection:
// rather than the raw |slots|*|lecturers| product, it sums each
// candidate lecturer's own available-slot count.
func (v *Variable) MRVScore() int {
	lecturerSlotPairs := 0
	for _, lecturerID := range v.Domain.Lecturers {
		slots := v.Domain.LecturerSlots[lecturerID]
		if len(slots) == 0 {
			lecturerSlotPairs += len(v.Domain.Slots)
		} else {
			lecturerSlotPairs += len(slots)
		}
	}
	return lecturerSlotPairs * len(v.Domain.Rooms)
}

// ToAssignment materializes this variable's committed value as an
// Assignment. Callers must check Assigned first.
func (v *Variable) ToAssignment(term int) entity.Assignment {
	return entity.Assignment{
		VariableID:    v.ID,
		CourseID:      v.CourseID,
		ProgramID:     v.ProgramID,
		LecturerID:    v.Lecturer,
		RoomNumber:    v.Room,
		Slot:          v.Slot,
		Term:          term,
		SessionNumber: v.SessionNumber,
	}
}
