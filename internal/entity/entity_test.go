package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"timetable-planner/internal/timeslot"
)

func TestLecturer_MaxWeeklyHours_RoleDefaults(t *testing.T) {
	cases := []struct {
		role     Role
		expected int
	}{
		{RoleDean, 15},
		{RoleFullTime, 22},
		{RolePartTime, 3},
	}
	for _, tc := range cases {
		l := Lecturer{Role: tc.role}
		assert.Equal(t, tc.expected, l.MaxWeeklyHours())
	}
}

func TestLecturer_MaxWeeklyHours_ExplicitOverride(t *testing.T) {
	override := 0
	l := Lecturer{Role: RoleFullTime, MaxWeeklyHoursSpec: &override}
	assert.Equal(t, 0, l.MaxWeeklyHours())
}

func TestLecturer_SessionsPerDay_Default(t *testing.T) {
	l := Lecturer{}
	assert.Equal(t, 2, l.SessionsPerDay())
	l.SessionsPerDayCap = 3
	assert.Equal(t, 3, l.SessionsPerDay())
}

func TestLecturer_AvailableAt_NoMapMeansAlwaysAvailable(t *testing.T) {
	l := Lecturer{}
	slot := timeslot.Slot{Day: timeslot.Monday, Period: timeslot.DefaultPeriods[0]}
	assert.True(t, l.AvailableAt(slot))
}

func TestLecturer_AvailableAt_RespectsAvailabilityMap(t *testing.T) {
	l := Lecturer{
		Availability: map[timeslot.Day][]AvailabilityRange{
			timeslot.Monday: {{Start: "09:00", End: "11:00"}},
		},
	}
	in := timeslot.Slot{Day: timeslot.Monday, Period: timeslot.DefaultPeriods[0]}
	out := timeslot.Slot{Day: timeslot.Monday, Period: timeslot.DefaultPeriods[1]}
	otherDay := timeslot.Slot{Day: timeslot.Tuesday, Period: timeslot.DefaultPeriods[0]}

	assert.True(t, l.AvailableAt(in))
	assert.False(t, l.AvailableAt(out))
	assert.False(t, l.AvailableAt(otherDay))
}

func TestCourse_SessionsRequired_CeilsOddHours(t *testing.T) {
	assert.Equal(t, 1, Course{WeeklyHours: 1}.SessionsRequired())
	assert.Equal(t, 2, Course{WeeklyHours: 3}.SessionsRequired())
	assert.Equal(t, 2, Course{WeeklyHours: 4}.SessionsRequired())
	assert.Equal(t, 0, Course{WeeklyHours: 0}.SessionsRequired())
}

func TestCourse_HasPreferredTerm(t *testing.T) {
	assert.True(t, Course{PreferredTerm: 1}.HasPreferredTerm())
	assert.True(t, Course{PreferredTerm: 2}.HasPreferredTerm())
	assert.False(t, Course{PreferredTerm: 0}.HasPreferredTerm())
}
