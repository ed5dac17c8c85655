package csp

import (
	"timetable-planner/internal/entity"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/timeslot"
)

// state is the mutable search state threaded through the backtracking
// search: everything needed to test the ten hard constraints from
// spec.md §4.3 against a tentative (slot, lecturer, room) value. It
// starts pre-seeded from the booking ledger's snapshot (other
// faculties' commitments) and accumulates this run's own assignments
// as the search proceeds.
type state struct {
	roomOccupied     map[string]map[timeslot.SlotKey]bool
	lecturerOccupied map[string]map[timeslot.SlotKey]bool
	cohortOccupied   map[string]map[timeslot.SlotKey]bool // program id -> slot -> busy

	lecturerResidualHours map[string]int
	lecturerDailyCap      map[string]int
	lecturerDailyCount    map[string]map[timeslot.Day]int
	lecturerDailyPeriod   map[string]map[timeslot.Day]map[bool]bool // lecturer -> day -> isAfternoon -> used

	// cohortCanonicalDay enforces constraint 10: a cohort never takes two
	// sessions of the same canonical course on the same day.
	cohortCanonicalDay map[string]map[string]map[timeslot.Day]bool // program -> canonical -> day -> used
}

func newState() *state {
	return &state{
		roomOccupied:          map[string]map[timeslot.SlotKey]bool{},
		lecturerOccupied:      map[string]map[timeslot.SlotKey]bool{},
		cohortOccupied:        map[string]map[timeslot.SlotKey]bool{},
		lecturerResidualHours: map[string]int{},
		lecturerDailyCap:      map[string]int{},
		lecturerDailyCount:    map[string]map[timeslot.Day]int{},
		lecturerDailyPeriod:   map[string]map[timeslot.Day]map[bool]bool{},
		cohortCanonicalDay:    map[string]map[string]map[timeslot.Day]bool{},
	}
}

// MarkOccupied implements ledger.OccupancyConsumer, pre-marking a
// resource busy from another faculty's already-committed bookings.
func (s *state) MarkOccupied(kind ledger.ResourceKind, resourceID string, day timeslot.Day, period int) {
	key := timeslot.SlotKey{Day: day, PeriodIndex: period}
	switch kind {
	case ledger.KindRoom:
		if s.roomOccupied[resourceID] == nil {
			s.roomOccupied[resourceID] = map[timeslot.SlotKey]bool{}
		}
		s.roomOccupied[resourceID][key] = true
	case ledger.KindLecturer:
		if s.lecturerOccupied[resourceID] == nil {
			s.lecturerOccupied[resourceID] = map[timeslot.SlotKey]bool{}
		}
		s.lecturerOccupied[resourceID][key] = true
	}
}

func (s *state) initLecturer(l entity.Lecturer) {
	if _, ok := s.lecturerResidualHours[l.ID]; ok {
		return
	}
	s.lecturerResidualHours[l.ID] = l.MaxWeeklyHours()
	s.lecturerDailyCap[l.ID] = l.SessionsPerDay()
	s.lecturerDailyCount[l.ID] = map[timeslot.Day]int{}
	s.lecturerDailyPeriod[l.ID] = map[timeslot.Day]map[bool]bool{}
}

func (s *state) roomFree(roomID string, slot timeslot.Slot) bool {
	return !s.roomOccupied[roomID][slot.Key()]
}

func (s *state) lecturerFree(lecturerID string, slot timeslot.Slot) bool {
	return !s.lecturerOccupied[lecturerID][slot.Key()]
}

func (s *state) cohortFree(programID string, slot timeslot.Slot) bool {
	return !s.cohortOccupied[programID][slot.Key()]
}

func (s *state) lecturerHasHours(lecturerID string, sessionHours int) bool {
	return s.lecturerResidualHours[lecturerID] >= sessionHours
}

func (s *state) lecturerUnderDailyCap(lecturerID string, day timeslot.Day) bool {
	return s.lecturerDailyCount[lecturerID][day] < s.lecturerDailyCap[lecturerID]
}

func (s *state) lecturerPeriodShapeOK(lecturerID string, day timeslot.Day, isAfternoon bool) bool {
	// At most one morning and one afternoon session per lecturer per day.
	used := s.lecturerDailyPeriod[lecturerID][day]
	return !used[isAfternoon]
}

func (s *state) cohortCanonicalDayFree(programID, canonicalID string, day timeslot.Day) bool {
	if canonicalID == "" {
		return true
	}
	return !s.cohortCanonicalDay[programID][canonicalID][day]
}

// commit records a chosen value for v into the search state. The
// caller must have already validated it via feasible.
func (s *state) commit(v *Variable, sessionHours int) {
	key := v.Slot.Key()

	if s.roomOccupied[v.Room] == nil {
		s.roomOccupied[v.Room] = map[timeslot.SlotKey]bool{}
	}
	s.roomOccupied[v.Room][key] = true

	if s.lecturerOccupied[v.Lecturer] == nil {
		s.lecturerOccupied[v.Lecturer] = map[timeslot.SlotKey]bool{}
	}
	s.lecturerOccupied[v.Lecturer][key] = true

	if s.cohortOccupied[v.ProgramID] == nil {
		s.cohortOccupied[v.ProgramID] = map[timeslot.SlotKey]bool{}
	}
	s.cohortOccupied[v.ProgramID][key] = true

	s.lecturerResidualHours[v.Lecturer] -= sessionHours
	if s.lecturerDailyCount[v.Lecturer] == nil {
		s.lecturerDailyCount[v.Lecturer] = map[timeslot.Day]int{}
	}
	s.lecturerDailyCount[v.Lecturer][v.Slot.Day]++

	if s.lecturerDailyPeriod[v.Lecturer] == nil {
		s.lecturerDailyPeriod[v.Lecturer] = map[timeslot.Day]map[bool]bool{}
	}
	if s.lecturerDailyPeriod[v.Lecturer][v.Slot.Day] == nil {
		s.lecturerDailyPeriod[v.Lecturer][v.Slot.Day] = map[bool]bool{}
	}
	s.lecturerDailyPeriod[v.Lecturer][v.Slot.Day][v.Slot.Period.IsAfternoon] = true

	if v.CanonicalID != "" {
		if s.cohortCanonicalDay[v.ProgramID] == nil {
			s.cohortCanonicalDay[v.ProgramID] = map[string]map[timeslot.Day]bool{}
		}
		if s.cohortCanonicalDay[v.ProgramID][v.CanonicalID] == nil {
			s.cohortCanonicalDay[v.ProgramID][v.CanonicalID] = map[timeslot.Day]bool{}
		}
		s.cohortCanonicalDay[v.ProgramID][v.CanonicalID][v.Slot.Day] = true
	}
}

// uncommit reverses a commit, for backtracking.
func (s *state) uncommit(v *Variable, sessionHours int) {
	key := v.Slot.Key()
	delete(s.roomOccupied[v.Room], key)
	delete(s.lecturerOccupied[v.Lecturer], key)
	delete(s.cohortOccupied[v.ProgramID], key)
	s.lecturerResidualHours[v.Lecturer] += sessionHours
	s.lecturerDailyCount[v.Lecturer][v.Slot.Day]--
	// A lecturer holds at most one session per (day, shape), so the
	// retracted session's shape flag is always cleared.
	delete(s.lecturerDailyPeriod[v.Lecturer][v.Slot.Day], v.Slot.Period.IsAfternoon)
	if v.CanonicalID != "" {
		byDay := s.cohortCanonicalDay[v.ProgramID][v.CanonicalID]
		delete(byDay, v.Slot.Day)
	}
}
