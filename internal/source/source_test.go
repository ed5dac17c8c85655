package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-planner/internal/entity"
)

const sampleFixture = `{
  "programs": [{"id":"P1","code":"BIT","semester":"S1","cohort_size":30,"faculty":"FAC_A"}],
  "courses": [{"id":"C1","code":"BIT1103","weekly_hours":4,"preferred_room_type":"theory"}],
  "lecturers": [{"id":"L1","name":"Jane","role":"full-time","specializations":["PROG_C"],
    "availability":{"MON":[{"start":"09:00","end":"13:00"}]}}],
  "rooms": [{"id":"R1","room_number":"R1","capacity":40,"type":"theory","available":true}],
  "canonical_groups": [{"canonical_id":"PROG_C","name":"Programming in C","course_codes":["BIT1103"]}]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONEntitySource_LoadsEveryCollection(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	src, err := NewJSONEntitySource(path)
	require.NoError(t, err)
	assert.Empty(t, src.Issues)

	cohorts, err := src.LoadCohorts("FAC_A")
	require.NoError(t, err)
	require.Len(t, cohorts, 1)
	assert.Equal(t, 30, cohorts[0].CohortSize)

	none, err := src.LoadCohorts("FAC_B")
	require.NoError(t, err)
	assert.Empty(t, none)

	lecturers, err := src.LoadLecturers()
	require.NoError(t, err)
	require.Len(t, lecturers, 1)
	assert.True(t, lecturers[0].HasAvailabilityMap())

	groups, err := src.LoadCanonicalGroups()
	require.NoError(t, err)
	assert.Equal(t, "PROG_C", groups[0].CanonicalID)
}

func TestJSONEntitySource_CollectsIssuesWithoutAborting(t *testing.T) {
	broken := `{"programs":[{"id":"","code":"BIT","semester":"S1","cohort_size":0,"faculty":"FAC_A"}]}`
	path := writeFixture(t, broken)
	src, err := NewJSONEntitySource(path)
	require.NoError(t, err)
	assert.NotEmpty(t, src.Issues)
}

func TestMemoryPersistence_SaveAndLoadRoundTrip(t *testing.T) {
	p := NewMemoryPersistence()
	assignments := []entity.Assignment{{VariableID: "v1", RoomNumber: "R1"}}
	require.NoError(t, p.SaveAssignments("run1", assignments))

	loaded, err := p.LoadAssignments("run1")
	require.NoError(t, err)
	assert.Equal(t, assignments, loaded)

	_, err = p.LoadAssignments("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
