package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTimesSortsMarks(t *testing.T) {
	marks, err := parseClockTimes([]string{"16:01", "00:01", "08:01"})
	require.NoError(t, err)
	require.Len(t, marks, 3)
	assert.Equal(t, clockTime{0, 1}, marks[0])
	assert.Equal(t, clockTime{8, 1}, marks[1])
	assert.Equal(t, clockTime{16, 1}, marks[2])
}

func TestParseClockTimesRejectsGarbage(t *testing.T) {
	for _, bad := range [][]string{nil, {}, {"25:00"}, {"8am"}, {"08:61"}} {
		_, err := parseClockTimes(bad)
		assert.Error(t, err, "%v should fail", bad)
	}
}

func TestNextRunPicksNextMarkToday(t *testing.T) {
	marks, err := parseClockTimes([]string{"00:01", "08:01", "16:01"})
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)
	next := nextRun(now, marks)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 1, 0, 0, time.UTC), next)
}

func TestNextRunRollsToTomorrow(t *testing.T) {
	marks, err := parseClockTimes([]string{"00:01", "08:01", "16:01"})
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	next := nextRun(now, marks)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC), next)
}

func TestNextRunSkipsTheCurrentMinute(t *testing.T) {
	marks, err := parseClockTimes([]string{"08:01"})
	require.NoError(t, err)

	// Exactly on the mark: the mark is not strictly after now, so the next
	// run is tomorrow. The scheduler fires the current slot itself.
	now := time.Date(2026, 3, 10, 8, 1, 0, 0, time.UTC)
	next := nextRun(now, marks)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 1, 0, 0, time.UTC), next)
}
