package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
)

func TestSpeedVarianceIdenticalLaps(t *testing.T) {
	laps := []*model.Lap{
		constantSpeedLap(100, 200),
		constantSpeedLap(100, 200),
		constantSpeedLap(100, 200),
	}
	distances, deviation := SpeedVariance(laps)
	require.NotEmpty(t, distances)
	require.Len(t, deviation, len(distances))
	for _, sd := range deviation {
		assert.InDelta(t, 0.0, sd, 1e-9)
	}
}

func TestSpeedVarianceSpreadLaps(t *testing.T) {
	distances, deviation := SpeedVariance([]*model.Lap{
		constantSpeedLap(100, 200),
		constantSpeedLap(110, 200),
	})
	require.NotEmpty(t, distances)

	// sample standard deviation of {100, 110} everywhere both laps
	// have coverage
	mid := len(deviation) / 2
	assert.InDelta(t, 7.0710678, deviation[mid], 1e-3)
}

func TestSpeedVarianceNeedsTwoLaps(t *testing.T) {
	distances, deviation := SpeedVariance([]*model.Lap{
		constantSpeedLap(100, 200),
	})
	assert.Empty(t, distances)
	assert.Empty(t, deviation)

	distances, _ = SpeedVariance(nil)
	assert.Empty(t, distances)
}
