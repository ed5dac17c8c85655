// Package entity holds the immutable value objects the planner reads
// at run start: Lecturer, Room, Course, Program, and the canonical
// course group registry they reference. Nothing under this package is
// mutated once a run begins; the CSP and GGA clone what they need.
package entity

import "timetable-planner/internal/timeslot"

// Role is a lecturer's employment category, which drives the default
// max_weekly_hours when no explicit override is set.
type Role string

const (
	RoleDean     Role = "dean"
	RoleFullTime Role = "full-time"
	RolePartTime Role = "part-time"
)

// defaultWeeklyHours maps a role to its spec.md §3 default cap.
var defaultWeeklyHours = map[Role]int{
	RoleDean:     15,
	RoleFullTime: 22,
	RolePartTime: 3,
}

// AvailabilityRange is one open interval during which a lecturer can
// teach on a given day, expressed as "HH:MM" wall-clock bounds.
type AvailabilityRange struct {
	Start string
	End   string
}

// Lecturer is an immutable teaching-staff record.
type Lecturer struct {
	ID                 string
	Name               string
	Role               Role
	Specializations    []string // canonical ids, canonical names, or raw course codes
	Availability       map[timeslot.Day][]AvailabilityRange
	SessionsPerDayCap  int // 0 means "use the default of 2"
	MaxWeeklyHoursSpec *int // nil means "use the role default"
}

// SessionsPerDay returns the effective per-day session cap.
func (l Lecturer) SessionsPerDay() int {
	if l.SessionsPerDayCap > 0 {
		return l.SessionsPerDayCap
	}
	return 2
}

// MaxWeeklyHours returns the effective weekly-hour cap: the explicit
// override if set, otherwise the role-derived default.
func (l Lecturer) MaxWeeklyHours() int {
	if l.MaxWeeklyHoursSpec != nil {
		return *l.MaxWeeklyHoursSpec
	}
	if h, ok := defaultWeeklyHours[l.Role]; ok {
		return h
	}
	return defaultWeeklyHours[RoleFullTime]
}

// HasAvailabilityMap reports whether this lecturer carries an explicit
// per-day availability restriction. Lecturers without one are assumed
// available on every slot (spec.md §4.3).
func (l Lecturer) HasAvailabilityMap() bool {
	return len(l.Availability) > 0
}

// AvailableAt reports whether the lecturer's availability map allows
// teaching during the given slot. Lecturers with no map are always
// available.
func (l Lecturer) AvailableAt(slot timeslot.Slot) bool {
	if !l.HasAvailabilityMap() {
		return true
	}
	ranges, ok := l.Availability[slot.Day]
	if !ok {
		return false
	}
	for _, r := range ranges {
		if slot.Overlaps(slot.Day, r.Start, r.End) {
			return true
		}
	}
	return false
}

// RoomType is the kind of physical space a room provides, which a
// course's PreferredRoomType must match exactly.
type RoomType string

const (
	RoomTheory RoomType = "theory"
	RoomLab    RoomType = "lab"
)

// Room is an immutable physical teaching space.
type Room struct {
	ID         string
	RoomNumber string // unique business key, distinct from ID
	Capacity   int
	Type       RoomType
	Available  bool
}

// Course is a subject / course-unit offered to one or more programs.
type Course struct {
	ID                string
	Code              string
	Name              string
	WeeklyHours       int
	Credits           int
	PreferredRoomType RoomType
	PreferredTerm     int // 1 or 2; 0 means unset
	CourseGroup       string
	CanonicalID       string
}

// SessionsRequired is ceil(WeeklyHours / 2): the number of 2-hour
// blocks to schedule per week, per spec.md §3.
func (c Course) SessionsRequired() int {
	if c.WeeklyHours <= 0 {
		return 0
	}
	return (c.WeeklyHours + 1) / 2
}

// HasPreferredTerm reports whether PreferredTerm was set to 1 or 2.
func (c Course) HasPreferredTerm() bool {
	return c.PreferredTerm == 1 || c.PreferredTerm == 2
}

// Program is a cohort of students sharing a curriculum in a given
// semester and term.
type Program struct {
	ID         string
	Batch      string
	Code       string // e.g. "BSCAIT"
	Semester   string // "S1".."S6"
	Term       int
	CohortSize int
	CourseIDs  []string
	Faculty    string
}

// CanonicalCourseGroup ties cross-program equivalent course codes
// together under one canonical identifier.
type CanonicalCourseGroup struct {
	CanonicalID string
	Name        string
	CourseCodes []string
}
