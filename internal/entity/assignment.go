package entity

import "timetable-planner/internal/timeslot"

// Assignment is a concrete, immutable binding of one session to a
// lecturer, a room, and a time slot (spec.md §3).
type Assignment struct {
	VariableID   string
	CourseID     string
	ProgramID    string
	LecturerID   string
	RoomNumber   string
	Slot         timeslot.Slot
	Term         int
	SessionNumber int
}

// SameSlot reports whether two assignments occupy the same (day, period).
func (a Assignment) SameSlot(b Assignment) bool {
	return a.Slot.Key() == b.Slot.Key()
}
