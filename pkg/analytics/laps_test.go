package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
)

func TestBestLap(t *testing.T) {
	assert.Nil(t, BestLap(nil))

	open := model.NewLap()
	assert.Nil(t, BestLap([]*model.Lap{open}), "unfinished laps never qualify")

	slow := finishedLap(1, 95000)
	fast := finishedLap(2, 91000)
	best := BestLap([]*model.Lap{open, slow, fast})
	require.NotNil(t, best)
	assert.Equal(t, 2, best.Number)
}

func TestLastReferenceMedian(t *testing.T) {
	last, reference, median := LastReferenceMedian(nil)
	assert.Nil(t, last)
	assert.Nil(t, reference)
	assert.Nil(t, median)

	// laps are kept most recent first
	third := finishedLap(3, 93000)
	second := finishedLap(2, 91000)
	first := finishedLap(1, 95000)
	last, reference, median = LastReferenceMedian([]*model.Lap{third, second, first})

	assert.Equal(t, 3, last.Number)
	assert.Equal(t, 2, reference.Number)
	require.NotNil(t, median)
	assert.InDelta(t, 93000.0, median.LapFinishTime, 1e-9)
}

func TestLastReferenceMedianNeedsEnoughLaps(t *testing.T) {
	// a single lap has nothing to compare against
	last, reference, median := LastReferenceMedian([]*model.Lap{
		finishedLap(1, 94000),
	})
	assert.Equal(t, 1, last.Number)
	assert.Nil(t, reference)
	assert.Nil(t, median)

	// two laps yield a reference but no median yet
	last, reference, median = LastReferenceMedian([]*model.Lap{
		finishedLap(2, 90000),
		finishedLap(1, 94000),
	})
	assert.Equal(t, 2, last.Number)
	assert.Equal(t, 2, reference.Number)
	assert.Nil(t, median)
}

func TestFastestWithinPercent(t *testing.T) {
	replay := finishedLap(5, 90500)
	replay.IsReplay = true
	laps := []*model.Lap{
		finishedLap(1, 95000),
		finishedLap(2, 90000),
		finishedLap(3, 91000),
		finishedLap(4, 120000),
		replay,
	}

	got := FastestWithinPercent(laps, 2, 3)
	require.Len(t, got, 2, "slow laps and the replay are excluded")
	assert.Equal(t, 2, got[0].Number)
	assert.Equal(t, 3, got[1].Number)
}

func TestFastestWithinPercentLimit(t *testing.T) {
	laps := []*model.Lap{
		finishedLap(1, 90000),
		finishedLap(2, 90100),
		finishedLap(3, 90200),
		finishedLap(4, 90300),
	}
	got := FastestWithinPercent(laps, 5, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, 2, got[1].Number)
}

func TestFilterByTime(t *testing.T) {
	laps := []*model.Lap{
		finishedLap(1, 90000),
		finishedLap(2, 110000),
		finishedLap(3, 130000),
	}
	got := FilterByTime(laps, 100000, 120000)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Number)
}

func TestFormatLapTable(t *testing.T) {
	fast := finishedLap(2, 90000)
	fast.FuelConsumed = 8
	slow := finishedLap(1, 92500)
	slow.FuelConsumed = 9

	table := FormatLapTable([]*model.Lap{fast, slow})
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[1], "*")
	assert.Contains(t, lines[1], "1:30.000")
	assert.Contains(t, lines[2], "1:32.500")
	assert.Contains(t, lines[2], "0:02.500")
	assert.NotContains(t, table, "\x1b[", "plain text, no ansi markers")
}
