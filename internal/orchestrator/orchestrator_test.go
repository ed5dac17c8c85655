package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-planner/internal/config"
	"timetable-planner/internal/entity"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/progress"
)

// fakeEntitySource is an in-memory source.EntitySource for tests that
// don't need the JSON-fixture round trip source_test.go already covers.
type fakeEntitySource struct {
	programs  []entity.Program
	courses   []entity.Course
	lecturers []entity.Lecturer
	rooms     []entity.Room
	groups    []entity.CanonicalCourseGroup
}

func (f *fakeEntitySource) LoadCohorts(faculty string) ([]entity.Program, error) {
	var out []entity.Program
	for _, p := range f.programs {
		if p.Faculty == faculty {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakeEntitySource) LoadCourses() ([]entity.Course, error)     { return f.courses, nil }
func (f *fakeEntitySource) LoadLecturers() ([]entity.Lecturer, error) { return f.lecturers, nil }
func (f *fakeEntitySource) LoadRooms() ([]entity.Room, error)         { return f.rooms, nil }
func (f *fakeEntitySource) LoadCanonicalGroups() ([]entity.CanonicalCourseGroup, error) {
	return f.groups, nil
}

// scenarioOneFixture builds spec.md §8 scenario 1: a single cohort,
// five courses split 3:2 across terms, one lecturer qualified for
// all of them, three rooms.
func scenarioOneFixture() *fakeEntitySource {
	courses := []entity.Course{
		{ID: "c1", Code: "C1", WeeklyHours: 4, PreferredRoomType: entity.RoomTheory, PreferredTerm: 1},
		{ID: "c2", Code: "C2", WeeklyHours: 4, PreferredRoomType: entity.RoomTheory, PreferredTerm: 1},
		{ID: "c3", Code: "C3", WeeklyHours: 4, PreferredRoomType: entity.RoomTheory, PreferredTerm: 1},
		{ID: "c4", Code: "C4", WeeklyHours: 4, PreferredRoomType: entity.RoomTheory, PreferredTerm: 2},
		{ID: "c5", Code: "C5", WeeklyHours: 4, PreferredRoomType: entity.RoomTheory, PreferredTerm: 2},
	}
	program := entity.Program{
		ID: "p1", Code: "BIT", Semester: "S1", CohortSize: 25, Faculty: "FAC_A",
		CourseIDs: []string{"c1", "c2", "c3", "c4", "c5"},
	}
	lecturer := entity.Lecturer{ID: "l1", Name: "Jane", Role: entity.RoleFullTime, Specializations: []string{"C1", "C2", "C3", "C4", "C5"}}
	rooms := []entity.Room{
		{ID: "r1", RoomNumber: "R1", Capacity: 40, Type: entity.RoomTheory, Available: true},
		{ID: "r2", RoomNumber: "R2", Capacity: 40, Type: entity.RoomTheory, Available: true},
		{ID: "r3", RoomNumber: "R3", Capacity: 30, Type: entity.RoomLab, Available: true},
	}
	return &fakeEntitySource{programs: []entity.Program{program}, courses: courses, lecturers: []entity.Lecturer{lecturer}, rooms: rooms}
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.GGAMaxGenerations = 5
	cfg.GGAPopulationSize = 12
	cfg.GGAElitism = 2
	cfg.GGATournamentSize = 2
	return cfg
}

func TestRun_SchedulesSingleCohortTermOne(t *testing.T) {
	src := scenarioOneFixture()
	led := ledger.NewMemoryLedger(1, "2026")
	orch := New(src, nil, led, testConfig())
	orch.Seed = 42

	result := orch.Run(1, "FAC_A", "2026", false)

	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.Equal(t, 6, result.SessionsCount) // 3 term-1 courses x 2 sessions each
	assert.Greater(t, result.FinalFitness, 0.0)
}

func TestRun_NoQualifiedLecturerIsFeasibilityError(t *testing.T) {
	src := scenarioOneFixture()
	src.lecturers = nil
	led := ledger.NewMemoryLedger(1, "2026")
	orch := New(src, nil, led, testConfig())

	result := orch.Run(1, "FAC_A", "2026", false)

	assert.False(t, result.Success)
	require.Error(t, result.Err)
}

func TestRun_RegenerateDiscardsFacultyBeforeReplanning(t *testing.T) {
	src := scenarioOneFixture()
	led := ledger.NewMemoryLedger(1, "2026")
	orch := New(src, nil, led, testConfig())
	orch.Seed = 7

	first := orch.Run(1, "FAC_A", "2026", false)
	require.True(t, first.Success)
	firstCount := len(led.Entries())

	second := orch.Run(1, "FAC_A", "2026", true)
	require.True(t, second.Success)

	assert.Equal(t, firstCount, len(led.Entries()))
}

func TestRun_ProgressSinkReceivesStageSequence(t *testing.T) {
	src := scenarioOneFixture()
	led := ledger.NewMemoryLedger(1, "2026")
	orch := New(src, nil, led, testConfig())
	recorder := progress.NewRecorder()
	orch.Sink = recorder

	result := orch.Run(1, "FAC_A", "2026", false)
	require.True(t, result.Success)

	entries := recorder.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, 100, entries[len(entries)-1].Percent)
}
