package csp

import (
	"sort"

	"timetable-planner/internal/canonical"
	"timetable-planner/internal/entity"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/timeslot"
)

// RequiredSession is one (program, course) session slot to schedule,
// the unit term.Planner's output is lowered into before the CSP runs.
type RequiredSession struct {
	Program       entity.Program
	Course        entity.Course
	SessionNumber int
	SessionsTotal int
}

// Problem bundles everything BuildVariables needs to construct and
// prune every variable's domain, per spec.md §4.3.
type Problem struct {
	Sessions    []RequiredSession
	Lecturers   []entity.Lecturer
	Rooms       []entity.Room
	Grid        *timeslot.Grid
	Resolver    *canonical.Resolver
	Mode        canonical.Mode
	Ledger      ledger.Ledger
	Faculty     string
}

// BuildVariables constructs one Variable per required session and
// prunes its three domains against qualification, availability,
// capacity/type, and any other faculty's already-committed bookings.
// It returns the search-ready state (pre-seeded from the ledger) and
// lecturer daily caps alongside the variables.
func BuildVariables(p Problem) ([]*Variable, *SearchState) {
	st := NewSearchState()
	if p.Ledger != nil {
		p.Ledger.SnapshotInto(st, p.Faculty)
	}
	for _, l := range p.Lecturers {
		st.inner.initLecturer(l)
	}

	allSlots := p.Grid.Slots()

	variables := make([]*Variable, 0, len(p.Sessions))
	for _, rs := range p.Sessions {
		canonicalID := p.Resolver.CanonicalOf(rs.Course.Code)
		matchKey := rs.Course.Code
		if rs.Course.CanonicalID != "" {
			matchKey = rs.Course.CanonicalID
		}

		v := &Variable{
			ID:            VariableID(rs.Program.ID, rs.Course.ID, rs.SessionNumber),
			ProgramID:     rs.Program.ID,
			CourseID:      rs.Course.ID,
			CourseCode:    rs.Course.Code,
			CanonicalID:   canonicalID,
			CohortSize:    rs.Program.CohortSize,
			RoomType:      rs.Course.PreferredRoomType,
			SessionNumber: rs.SessionNumber,
			SessionsTotal: rs.SessionsTotal,
		}

		v.Domain.Rooms, v.Domain.RoomCapacity = pruneRooms(p.Rooms, v.RoomType, v.CohortSize)
		v.Domain.Lecturers, v.Domain.LecturerSlots = pruneLecturers(p.Lecturers, matchKey, p.Resolver, p.Mode, allSlots, st.inner)
		v.Domain.Slots = pruneSlots(allSlots, v.Domain.LecturerSlots)

		variables = append(variables, v)
	}

	sort.Slice(variables, func(i, j int) bool { return variables[i].ID < variables[j].ID })
	return variables, st
}

// pruneRooms keeps rooms available, of the right type, and with
// capacity at least the cohort size (spec.md §4.3 constraints 8-9).
// preferred_room_type is mandatory (validated fatal before the CSP
// starts), so an exact type match is always required here — no
// "empty means any type" fallback.
func pruneRooms(rooms []entity.Room, roomType entity.RoomType, cohortSize int) ([]string, map[string]int) {
	var out []string
	capacity := map[string]int{}
	for _, r := range rooms {
		if !r.Available {
			continue
		}
		if r.Type != roomType {
			continue
		}
		if r.Capacity < cohortSize {
			continue
		}
		out = append(out, r.RoomNumber)
		capacity[r.RoomNumber] = r.Capacity
	}
	sort.Slice(out, func(i, j int) bool {
		if capacity[out[i]] != capacity[out[j]] {
			return capacity[out[i]] < capacity[out[j]]
		}
		return out[i] < out[j]
	})
	return out, capacity
}

// pruneLecturers keeps lecturers qualified for matchKey and returns,
// for each, the subset of slots their availability map allows and that
// aren't already pre-booked in the ledger snapshot (spec.md §4.3
// constraint 10 and the pre-booked-resource pass).
func pruneLecturers(lecturers []entity.Lecturer, matchKey string, resolver *canonical.Resolver, mode canonical.Mode, allSlots []timeslot.Slot, st *state) ([]string, map[string][]timeslot.Slot) {
	var ids []string
	perLecturer := map[string][]timeslot.Slot{}

	for _, l := range lecturers {
		if !resolver.Qualified(matchKey, l.Specializations, mode) {
			continue
		}
		if st.lecturerResidualHours[l.ID] < sessionHours {
			continue
		}

		var free []timeslot.Slot
		for _, slot := range allSlots {
			if !l.AvailableAt(slot) {
				continue
			}
			if !st.lecturerFree(l.ID, slot) {
				continue
			}
			free = append(free, slot)
		}
		if len(free) == 0 {
			continue
		}
		ids = append(ids, l.ID)
		perLecturer[l.ID] = free
	}
	sort.Strings(ids)
	return ids, perLecturer
}

// pruneSlots keeps only slots reachable by at least one lecturer in
// the domain, so the slot axis never offers a value no lecturer can
// actually take.
func pruneSlots(allSlots []timeslot.Slot, perLecturer map[string][]timeslot.Slot) []timeslot.Slot {
	reachable := map[timeslot.SlotKey]bool{}
	for _, slots := range perLecturer {
		for _, s := range slots {
			reachable[s.Key()] = true
		}
	}
	var out []timeslot.Slot
	for _, s := range allSlots {
		if reachable[s.Key()] {
			out = append(out, s)
		}
	}
	return out
}
