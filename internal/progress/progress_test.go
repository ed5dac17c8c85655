package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CollectsEntriesInOrder(t *testing.T) {
	r := NewRecorder()
	cancel := r.Report(1, 10, "csp", "starting search")
	require.False(t, cancel)
	r.Report(1, 85, "gga", "generation 40")

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "csp", entries[0].Stage)
	assert.Equal(t, 85, entries[1].Percent)
}

func TestNoop_NeverCancels(t *testing.T) {
	assert.False(t, Noop.Report(1, 100, "done", ""))
}
