package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-planner/internal/canonical"
	"timetable-planner/internal/entity"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/timeslot"
)

func testGrid(t *testing.T) *timeslot.Grid {
	t.Helper()
	g, err := timeslot.NewGrid(timeslot.Days, timeslot.DefaultPeriods)
	require.NoError(t, err)
	return g
}

func TestBuildVariables_PrunesByQualificationAndCapacity(t *testing.T) {
	resolver := canonical.NewResolver(nil)
	lecturers := []entity.Lecturer{
		{ID: "L1", Role: entity.RoleFullTime, Specializations: []string{"PROG_C"}},
		{ID: "L2", Role: entity.RoleFullTime, Specializations: []string{"COMP_OFFICE_APP"}},
	}
	rooms := []entity.Room{
		{ID: "R1", RoomNumber: "R1", Capacity: 40, Type: entity.RoomTheory, Available: true},
		{ID: "R2", RoomNumber: "R2", Capacity: 10, Type: entity.RoomTheory, Available: true},
	}
	program := entity.Program{ID: "P1", Code: "BIT", CohortSize: 30}
	course := entity.Course{ID: "C1", Code: "BIT1103", WeeklyHours: 4, PreferredRoomType: entity.RoomTheory}

	problem := Problem{
		Sessions:  []RequiredSession{{Program: program, Course: course, SessionNumber: 1, SessionsTotal: 2}},
		Lecturers: lecturers,
		Rooms:     rooms,
		Grid:      testGrid(t),
		Resolver:  resolver,
		Mode:      canonical.Fuzzy,
	}

	vars, _ := BuildVariables(problem)
	require.Len(t, vars, 1)
	v := vars[0]

	assert.Equal(t, []string{"L1"}, v.Domain.Lecturers, "only the PROG_C-qualified lecturer should remain")
	assert.Equal(t, []string{"R1"}, v.Domain.Rooms, "R2's capacity is below the cohort size")
}

func TestSearch_FindsCompleteAssignmentForSimpleProblem(t *testing.T) {
	resolver := canonical.NewResolver(nil)
	lecturers := []entity.Lecturer{
		{ID: "L1", Role: entity.RoleFullTime, Specializations: []string{"PROG_C"}},
		{ID: "L2", Role: entity.RoleFullTime, Specializations: []string{"COMP_OFFICE_APP"}},
	}
	rooms := []entity.Room{
		{ID: "R1", RoomNumber: "R1", Capacity: 40, Type: entity.RoomTheory, Available: true},
	}
	program := entity.Program{ID: "P1", Code: "BIT", CohortSize: 30}
	courses := []entity.Course{
		{ID: "C1", Code: "BIT1103", WeeklyHours: 2, PreferredRoomType: entity.RoomTheory},
		{ID: "C2", Code: "BIT1101", WeeklyHours: 2, PreferredRoomType: entity.RoomTheory},
	}

	var sessions []RequiredSession
	for _, c := range courses {
		sessions = append(sessions, RequiredSession{Program: program, Course: c, SessionNumber: 1, SessionsTotal: 1})
	}

	problem := Problem{
		Sessions:  sessions,
		Lecturers: lecturers,
		Rooms:     rooms,
		Grid:      testGrid(t),
		Resolver:  resolver,
		Mode:      canonical.Fuzzy,
	}

	vars, st := BuildVariables(problem)
	result := Search(vars, st, Budget{})
	require.True(t, result.Complete)
	require.Len(t, result.Assigned, 2)

	// Both sessions belong to cohort P1, so they never share a slot;
	// check that no lecturer is booked twice in the same slot.
	seen := map[string]bool{}
	for _, v := range result.Assigned {
		key := v.Lecturer + "@" + v.Slot.String()
		assert.False(t, seen[key], "lecturer double-booked")
		seen[key] = true
	}
}

func TestSearch_SeedsFromLedgerSnapshot(t *testing.T) {
	resolver := canonical.NewResolver(nil)
	mem := ledger.NewMemoryLedger(1, "2025-2026")
	// FAC_B already occupies L1 at Monday/period 0.
	require.NoError(t, mem.Reserve(entity.Assignment{
		RoomNumber: "R1", LecturerID: "L1",
		Slot: timeslot.Slot{Day: timeslot.Monday, Period: timeslot.DefaultPeriods[0]},
	}, "FAC_B", "gen0"))

	lecturers := []entity.Lecturer{
		{ID: "L1", Role: entity.RoleFullTime, Specializations: []string{"PROG_C"}},
	}
	rooms := []entity.Room{{ID: "R1", RoomNumber: "R1", Capacity: 40, Type: entity.RoomTheory, Available: true}}
	program := entity.Program{ID: "P1", Code: "BIT", CohortSize: 30}
	course := entity.Course{ID: "C1", Code: "BIT1103", WeeklyHours: 2, PreferredRoomType: entity.RoomTheory}

	problem := Problem{
		Sessions:  []RequiredSession{{Program: program, Course: course, SessionNumber: 1, SessionsTotal: 1}},
		Lecturers: lecturers,
		Rooms:     rooms,
		Grid:      testGrid(t),
		Resolver:  resolver,
		Mode:      canonical.Fuzzy,
		Ledger:    mem,
		Faculty:   "FAC_A",
	}

	vars, st := BuildVariables(problem)
	result := Search(vars, st, Budget{})
	require.True(t, result.Complete)
	assigned := result.Assigned[0]
	assert.False(t, assigned.Slot.Day == timeslot.Monday && assigned.Slot.Period.Index == 0,
		"the pre-booked Monday/period-0 slot must be avoided")
}

func TestBuildPairs_MatchesSameSessionAcrossCourseGroup(t *testing.T) {
	theory := &Variable{ID: "v1", ProgramID: "P1", CourseID: "THEORY", SessionNumber: 1}
	practical := &Variable{ID: "v2", ProgramID: "P1", CourseID: "PRACTICAL", SessionNumber: 1}
	other := &Variable{ID: "v3", ProgramID: "P1", CourseID: "OTHER", SessionNumber: 1}

	groupOf := map[string]string{"THEORY": "DB_GROUP", "PRACTICAL": "DB_GROUP"}
	pairs := BuildPairs([]*Variable{theory, practical, other}, groupOf)

	require.Len(t, pairs, 1)
	assert.ElementsMatch(t, []string{"v1", "v2"}, []string{pairs[0].TheoryVariableID, pairs[0].PracticalVariableID})
}

func TestCanonicalGroups_IndexesBySessionNumber(t *testing.T) {
	v1 := &Variable{ID: "v1", CanonicalID: "DB", SessionNumber: 1}
	v2 := &Variable{ID: "v2", CanonicalID: "DB", SessionNumber: 1}
	v3 := &Variable{ID: "v3", CanonicalID: "DB", SessionNumber: 2}

	groups := CanonicalGroups([]*Variable{v1, v2, v3})
	assert.ElementsMatch(t, []string{"v1", "v2"}, groups["DB"][1])
	assert.ElementsMatch(t, []string{"v3"}, groups["DB"][2])
}
