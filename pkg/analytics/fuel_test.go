package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
)

func TestCalculateRemainingFuel(t *testing.T) {
	tests := []struct {
		name               string
		start, end, t1     float64
		consumed, laps, ms float64
	}{
		{"normal consumption", 100, 80, 10000, 20, 4, 40000},
		{"no consumption", 100, 100, 10000, 0, -1, -1},
		{"nearly empty tank", 10, 2, 90000, 8, 0.25, 22500},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			consumed, laps, ms := CalculateRemainingFuel(test.start, test.end, test.t1)
			assert.InDelta(t, test.consumed, consumed, 1e-9)
			assert.InDelta(t, test.laps, laps, 1e-9)
			assert.InDelta(t, test.ms, ms, 1e-9)
		})
	}
}

func TestProjectFuelMaps(t *testing.T) {
	lap := model.NewLap()
	lap.LapFinishTime = 100000
	lap.FuelAtStart = 70
	lap.FuelAtEnd = 60

	maps := ProjectFuelMaps(lap)
	require.Len(t, maps, 11)

	base := maps[5]
	require.Equal(t, 0, base.MixtureSetting)
	assert.InDelta(t, 1.0, base.PowerPct, 1e-9)
	assert.InDelta(t, 10.0, base.FuelConsumedPerLap, 1e-9)
	assert.InDelta(t, 100000.0, base.LapTimeExpected, 1e-9)
	assert.InDelta(t, 0.0, base.LapTimeDiff, 1e-9)
	assert.InDelta(t, 6.0, base.LapsRemaining, 1e-9)
	assert.InDelta(t, 600000.0, base.TimeRemaining, 1e-9)

	leanest := maps[10]
	require.Equal(t, 5, leanest.MixtureSetting)
	assert.InDelta(t, 0.8, leanest.PowerPct, 1e-9)
	assert.InDelta(t, 0.6, leanest.ConsumptionPct, 1e-9)
	assert.InDelta(t, 6.0, leanest.FuelConsumedPerLap, 1e-9)
	// 20% less power costs 20% lap time but stretches the tank
	assert.InDelta(t, 120000.0, leanest.LapTimeExpected, 1e-9)
	assert.InDelta(t, 20000.0, leanest.LapTimeDiff, 1e-9)
	assert.InDelta(t, 8.4, leanest.LapsRemaining, 1e-9)
	assert.InDelta(t, 840000.0, leanest.TimeRemaining, 1e-9)

	richest := maps[0]
	require.Equal(t, -5, richest.MixtureSetting)
	assert.InDelta(t, 1.2, richest.PowerPct, 1e-9)
	assert.InDelta(t, 1.4, richest.ConsumptionPct, 1e-9)
	assert.InDelta(t, 14.0, richest.FuelConsumedPerLap, 1e-9)
	assert.InDelta(t, 80000.0, richest.LapTimeExpected, 1e-9)
	assert.InDelta(t, -20000.0, richest.LapTimeDiff, 1e-9)
	assert.InDelta(t, 3.6, richest.LapsRemaining, 1e-9)
}

func TestProjectFuelMapsWithoutConsumption(t *testing.T) {
	lap := model.NewLap()
	lap.LapFinishTime = 100000
	lap.FuelAtStart = 60
	lap.FuelAtEnd = 60

	maps := ProjectFuelMaps(lap)
	require.Len(t, maps, 11)
	for _, fm := range maps {
		assert.InDelta(t, -1.0, fm.LapsRemaining, 1e-9)
		assert.InDelta(t, -1.0, fm.TimeRemaining, 1e-9)
	}
}
