package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"timetable-planner/internal/entity"
)

func TestSelectRatio_SemesterDefaults(t *testing.T) {
	assert.Equal(t, Ratio{3, 2}, SelectRatio("S1", 5))
	assert.Equal(t, Ratio{2, 3}, SelectRatio("S2", 5))
	assert.Equal(t, Ratio{2, 2}, SelectRatio("S6", 4))
}

func TestSelectRatio_CountOverride(t *testing.T) {
	// S1 expects 5 units (3:2); with 6 units present, fall through to
	// the count-based override table instead.
	assert.Equal(t, Ratio{3, 3}, SelectRatio("S1", 6))
	assert.Equal(t, Ratio{4, 4}, SelectRatio("S1", 8))
}

func TestSelectRatio_BalancedFallback(t *testing.T) {
	assert.Equal(t, Ratio{2, 1}, SelectRatio("S1", 3))
}

func TestShouldAlternate_OnlyAsymmetricFiveUnit(t *testing.T) {
	assert.True(t, ShouldAlternate(5, Ratio{3, 2}))
	assert.False(t, ShouldAlternate(4, Ratio{2, 2}))
	assert.False(t, ShouldAlternate(6, Ratio{3, 3}))
}

func TestAlternationSideFor(t *testing.T) {
	assert.Equal(t, SideBase, AlternationSideFor("BSCAIT"))
	assert.Equal(t, SideBase, AlternationSideFor("BIT-AI"))
	assert.Equal(t, SideFlipped, AlternationSideFor("BCS"))
}

type PlannerSuite struct {
	suite.Suite
}

func TestPlannerSuite(t *testing.T) {
	suite.Run(t, new(PlannerSuite))
}

func (s *PlannerSuite) TestSplit_SingleCohortFiveCourses() {
	// Scenario 1 from spec.md §8: C1-C5, preferred_term 1,1,1,2,2.
	courses := []entity.Course{
		{Code: "C1", PreferredTerm: 1, WeeklyHours: 4},
		{Code: "C2", PreferredTerm: 1, WeeklyHours: 4},
		{Code: "C3", PreferredTerm: 1, WeeklyHours: 4},
		{Code: "C4", PreferredTerm: 2, WeeklyHours: 4},
		{Code: "C5", PreferredTerm: 2, WeeklyHours: 4},
	}
	program := entity.Program{Code: "BSCAIT", Semester: "S1"}

	planner := NewPlanner(EmptyAlignment)
	plan, err := planner.Split(program, courses)
	s.Require().NoError(err)

	s.Len(plan.Term1, 3)
	s.Len(plan.Term2, 2)
	s.Equal(Ratio{3, 2}, plan.Ratio)
}

func (s *PlannerSuite) TestSplit_MissingPreferredTermFails() {
	courses := []entity.Course{{Code: "C1", PreferredTerm: 0}}
	program := entity.Program{Code: "BSCAIT", Semester: "S1"}

	planner := NewPlanner(EmptyAlignment)
	_, err := planner.Split(program, courses)
	s.Error(err)
	s.Contains(err.Error(), "C1")
}

func (s *PlannerSuite) TestSplit_CanonicalPinOverridesPreferredTerm() {
	courses := []entity.Course{
		{Code: "BCS1212", PreferredTerm: 2, CanonicalID: "DATABASE_MGMT_SYSTEM"},
	}
	program := entity.Program{Code: "BCS", Semester: "S1"}

	alignment := Alignment{pins: map[string]int{"DATABASE_MGMT_SYSTEM": 1}}
	planner := NewPlanner(alignment)
	plan, err := planner.Split(program, courses)
	s.Require().NoError(err)
	s.Len(plan.Term1, 1)
	s.Empty(plan.Term2)
}

func (s *PlannerSuite) TestSplit_GroupMembersStayTogether() {
	courses := []entity.Course{
		{Code: "BIT1212", PreferredTerm: 1, CourseGroup: "DB"},
		{Code: "BIT1214", PreferredTerm: 1, CourseGroup: "DB"},
		{Code: "OTHER", PreferredTerm: 2},
	}
	program := entity.Program{Code: "BSCAIT", Semester: "S1"}

	planner := NewPlanner(EmptyAlignment)
	plan, err := planner.Split(program, courses)
	s.Require().NoError(err)
	s.Len(plan.Term1, 2)
	s.Len(plan.Term2, 1)
}

func TestBuildAlignment_CanonicalPinningAcrossPrograms(t *testing.T) {
	// Scenario 2 from spec.md §8.
	cohorts := []ProgramCourses{
		{
			Code:     "BSCAIT",
			Semester: "S1",
			Courses: []AlignmentCourse{
				{Code: "BIT1212_THEORY", CanonicalID: "DB", PreferredTerm: 1, CourseGroup: "DB_GROUP"},
				{Code: "BIT1214_PRACTICAL", CanonicalID: "DB", PreferredTerm: 1, CourseGroup: "DB_GROUP"},
			},
		},
		{
			Code:     "BCS",
			Semester: "S1",
			Courses: []AlignmentCourse{
				{Code: "BCS1212_THEORY", CanonicalID: "DB", PreferredTerm: 2},
			},
		},
	}

	alignment, log := BuildAlignment(cohorts)
	term, ok := alignment.TermFor("DB")
	require.True(t, ok)
	assert.Equal(t, 1, term, "course-group trial placement wins over BCS's own preferred_term=2")

	require.Len(t, log.Decisions, 1)
	assert.Equal(t, "course-group-trial", log.Decisions[0].Reason)
}

func TestBuildAlignment_SingleCohortCanonicalIsNoOp(t *testing.T) {
	cohorts := []ProgramCourses{
		{
			Code:     "BSCAIT",
			Semester: "S1",
			Courses: []AlignmentCourse{
				{Code: "SOLO", CanonicalID: "SOLO_CANON", PreferredTerm: 1},
			},
		},
	}
	alignment, log := BuildAlignment(cohorts)
	_, ok := alignment.TermFor("SOLO_CANON")
	assert.False(t, ok, "a canonical id seen in only one cohort is never pinned")
	assert.Empty(t, log.Decisions)
}

func TestBuildAlignment_PluralityVoteWithTieGoesToTerm1(t *testing.T) {
	cohorts := []ProgramCourses{
		{Code: "A", Semester: "S1", Courses: []AlignmentCourse{{Code: "A1", CanonicalID: "X", PreferredTerm: 1}}},
		{Code: "B", Semester: "S1", Courses: []AlignmentCourse{{Code: "B1", CanonicalID: "X", PreferredTerm: 2}}},
	}
	alignment, log := BuildAlignment(cohorts)
	term, ok := alignment.TermFor("X")
	require.True(t, ok)
	assert.Equal(t, 1, term)
	assert.Equal(t, "vote-tie", log.Decisions[0].Reason)
}

func TestHoursAndCredits(t *testing.T) {
	hours, credits := HoursAndCredits([]entity.Course{
		{WeeklyHours: 4, Credits: 3},
		{WeeklyHours: 2, Credits: 2},
	})
	assert.Equal(t, 6, hours)
	assert.Equal(t, 5, credits)
}
