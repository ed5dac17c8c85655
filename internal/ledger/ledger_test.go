package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-planner/internal/entity"
	"timetable-planner/internal/timeslot"
)

func assignment(room, lecturer string, day timeslot.Day, period int, faculty string) entity.Assignment {
	return entity.Assignment{
		RoomNumber: room,
		LecturerID: lecturer,
		Slot:       timeslot.Slot{Day: day, Period: timeslot.Period{Index: period}},
	}
}

func TestMemoryLedger_ReserveAndIsAvailable(t *testing.T) {
	l := NewMemoryLedger(1, "2025-2026")
	a := assignment("R1", "L1", timeslot.Monday, 0, "FAC_A")

	assert.True(t, l.IsAvailable(KindRoom, "R1", timeslot.Monday, 0))
	require.NoError(t, l.Reserve(a, "FAC_A", "gen1"))
	assert.False(t, l.IsAvailable(KindRoom, "R1", timeslot.Monday, 0))
	assert.False(t, l.IsAvailable(KindLecturer, "L1", timeslot.Monday, 0))
	assert.True(t, l.IsAvailable(KindRoom, "R1", timeslot.Tuesday, 0))
}

func TestMemoryLedger_ReserveRejectsDuplicate(t *testing.T) {
	l := NewMemoryLedger(1, "2025-2026")
	a := assignment("R1", "L1", timeslot.Monday, 0, "FAC_A")
	require.NoError(t, l.Reserve(a, "FAC_A", "gen1"))

	dup := assignment("R1", "L2", timeslot.Monday, 0, "FAC_B")
	err := l.Reserve(dup, "FAC_B", "gen2")
	assert.True(t, errors.Is(err, ErrAlreadyBooked))
}

func TestMemoryLedger_CommitMany_AllOrNothing(t *testing.T) {
	l := NewMemoryLedger(1, "2025-2026")
	first := assignment("R1", "L1", timeslot.Monday, 0, "FAC_A")
	require.NoError(t, l.Reserve(first, "FAC_A", "gen1"))

	batch := []entity.Assignment{
		assignment("R2", "L2", timeslot.Tuesday, 0, "FAC_B"),
		assignment("R1", "L3", timeslot.Monday, 0, "FAC_B"), // collides with first
	}
	err := l.CommitMany(batch, "FAC_B", "gen2")
	assert.Error(t, err)

	// The non-colliding entry from the failed batch must not have landed.
	assert.True(t, l.IsAvailable(KindRoom, "R2", timeslot.Tuesday, 0))
}

func TestMemoryLedger_DiscardFaculty(t *testing.T) {
	l := NewMemoryLedger(1, "2025-2026")
	require.NoError(t, l.Reserve(assignment("R1", "L1", timeslot.Monday, 0, "FAC_A"), "FAC_A", "gen1"))
	require.NoError(t, l.Reserve(assignment("R2", "L2", timeslot.Tuesday, 0, "FAC_B"), "FAC_B", "gen2"))

	removed := l.DiscardFaculty("FAC_A")
	assert.Len(t, removed, 2) // room + lecturer entries
	assert.True(t, l.IsAvailable(KindRoom, "R1", timeslot.Monday, 0))
	assert.False(t, l.IsAvailable(KindRoom, "R2", timeslot.Tuesday, 0))
}

type recordingConsumer struct {
	marked []string
}

func (c *recordingConsumer) MarkOccupied(kind ResourceKind, resourceID string, day timeslot.Day, period int) {
	c.marked = append(c.marked, string(kind)+":"+resourceID)
}

func TestMemoryLedger_SnapshotInto_ExcludesRequestingFaculty(t *testing.T) {
	l := NewMemoryLedger(1, "2025-2026")
	require.NoError(t, l.Reserve(assignment("R1", "L1", timeslot.Monday, 0, "FAC_A"), "FAC_A", "gen1"))
	require.NoError(t, l.Reserve(assignment("R2", "L2", timeslot.Tuesday, 0, "FAC_B"), "FAC_B", "gen2"))

	consumer := &recordingConsumer{}
	l.SnapshotInto(consumer, "FAC_A")

	assert.Contains(t, consumer.marked, "room:R2")
	assert.Contains(t, consumer.marked, "lecturer:L2")
	assert.NotContains(t, consumer.marked, "room:R1")
}

func TestMemoryLedger_DiscardThenSnapshot_RestoresPriorView(t *testing.T) {
	l := NewMemoryLedger(1, "2025-2026")
	require.NoError(t, l.Reserve(assignment("R1", "L1", timeslot.Monday, 0, "FAC_A"), "FAC_A", "gen1"))
	require.NoError(t, l.Reserve(assignment("R2", "L2", timeslot.Tuesday, 0, "FAC_B"), "FAC_B", "gen2"))

	l.DiscardFaculty("FAC_A")

	consumer := &recordingConsumer{}
	l.SnapshotInto(consumer, "FAC_A")
	assert.Equal(t, []string{"lecturer:L2", "room:R2"}, sortedCopy(consumer.marked))
}

func sortedCopy(items []string) []string {
	out := append([]string{}, items...)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j] < out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}
