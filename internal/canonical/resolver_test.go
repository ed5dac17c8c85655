package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"timetable-planner/internal/entity"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
}

func (s *ResolverSuite) SetupTest() {
	s.resolver = NewResolver([]entity.CanonicalCourseGroup{
		{
			CanonicalID: "PROG_C",
			Name:        "Programming in C",
			CourseCodes: []string{"BIT1103", "BCS1103", "BIT1107"},
		},
		{
			CanonicalID: "COMP_HARDWARE_OS",
			Name:        "Computer Hardware and Operating Systems",
			CourseCodes: []string{"BIT1211", "BCS1211"},
		},
	})
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) TestCanonicalOf() {
	s.Equal("PROG_C", s.resolver.CanonicalOf("BIT1103"))
	s.Equal("", s.resolver.CanonicalOf("UNKNOWN"))
}

func (s *ResolverSuite) TestEquivalents_UnknownCodeReturnsItself() {
	s.Equal([]string{"UNKNOWN"}, s.resolver.Equivalents("UNKNOWN"))
}

func (s *ResolverSuite) TestEquivalents_KnownCodeReturnsGroup() {
	s.ElementsMatch([]string{"BIT1103", "BCS1103", "BIT1107"}, s.resolver.Equivalents("BIT1103"))
}

func (s *ResolverSuite) TestQualified_DirectCodeMatch() {
	s.True(s.resolver.Qualified("BIT1103", []string{"BIT1103"}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_CrossCodeEquivalence() {
	// A lecturer qualified via BCS1103 can teach the equivalent BIT1103 session.
	s.True(s.resolver.Qualified("BIT1103", []string{"BCS1103"}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_CanonicalIDDirect() {
	s.True(s.resolver.Qualified("BIT1103", []string{"PROG_C"}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_NormalizedVariant() {
	s.True(s.resolver.Qualified("BIT1103", []string{"prog c"}, Fuzzy))
	s.True(s.resolver.Qualified("BIT1103", []string{"Prog_C"}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_DisplayName() {
	s.True(s.resolver.Qualified("BIT1211", []string{"Computer Hardware and Operating Systems"}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_EmptySpecializationsNeverQualify() {
	s.False(s.resolver.Qualified("BIT1103", nil, Fuzzy))
	s.False(s.resolver.Qualified("BIT1103", []string{}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_NoMatchFails() {
	s.False(s.resolver.Qualified("BIT1103", []string{"SOFT_SKILLS"}, Fuzzy))
}

func (s *ResolverSuite) TestQualified_StrictModeRejectsFuzzyOnlyMatch() {
	// "Comp Hardware OS Practical" contains the normalized canonical id
	// and shares 3 tokens with it, but isn't an exact id/name/code match.
	fuzzyOK := s.resolver.Qualified("BIT1211", []string{"Comp Hardware OS Practical"}, Fuzzy)
	strictOK := s.resolver.Qualified("BIT1211", []string{"Comp Hardware OS Practical"}, Strict)
	s.True(fuzzyOK)
	s.False(strictOK)
}

func TestNewResolver_FallsBackWhenEmpty(t *testing.T) {
	r := NewResolver(nil)
	assert.NotEmpty(t, r.Groups())
	assert.Equal(t, "PROG_C", r.CanonicalOf("BIT1103"))
}
