package analytics

import (
	"github.com/bluess57/gt7core/pkg/model"
)

const (
	// per mixture level relative to the recorded base setting
	consumptionPerLevel = 0.08
	powerPerLevel       = 0.04

	minMixtureSetting = -5
	maxMixtureSetting = 5
)

// CalculateRemainingFuel projects how far the remaining fuel reaches
// based on one lap's consumption. lapTime is in milliseconds. When no
// fuel was consumed, laps and time remaining are -1 to signal that no
// projection is possible.
func CalculateRemainingFuel(fuelStartLap, fuelEndLap, lapTime float64) (
	fuelConsumedPerLap, lapsRemaining, timeRemaining float64,
) {
	fuelConsumedPerLap = fuelStartLap - fuelEndLap
	if fuelConsumedPerLap <= 0 {
		return fuelConsumedPerLap, -1, -1
	}
	lapsRemaining = fuelEndLap / fuelConsumedPerLap
	timeRemaining = lapsRemaining * lapTime
	return fuelConsumedPerLap, lapsRemaining, timeRemaining
}

// ProjectFuelMaps derives the full mixture table for a recorded lap.
// Raising the setting leans the mixture: power drops 4% and consumption
// drops 8% per level, so the lap gets slower while laps and time
// remaining grow linearly with the saved fuel.
func ProjectFuelMaps(lap *model.Lap) []model.FuelMap {
	consumedPerLap, lapsRemaining, timeRemaining := CalculateRemainingFuel(
		lap.FuelAtStart, lap.FuelAtEnd, lap.LapFinishTime)

	maps := make([]model.FuelMap, 0, maxMixtureSetting-minMixtureSetting+1)
	for lvl := minMixtureSetting; lvl <= maxMixtureSetting; lvl++ {
		powerPct := 1 - float64(lvl)*powerPerLevel
		consumptionPct := 1 - float64(lvl)*consumptionPerLevel
		diff := lap.LapFinishTime * (1 - powerPct)

		fm := model.FuelMap{
			MixtureSetting:     lvl,
			PowerPct:           powerPct,
			ConsumptionPct:     consumptionPct,
			FuelConsumedPerLap: consumedPerLap * consumptionPct,
			LapTimeDiff:        diff,
			LapTimeExpected:    lap.LapFinishTime + diff,
			LapsRemaining:      -1,
			TimeRemaining:      -1,
		}
		if lapsRemaining >= 0 {
			fm.LapsRemaining = lapsRemaining +
				lapsRemaining*(1-consumptionPct)
			fm.TimeRemaining = timeRemaining +
				timeRemaining*(1-consumptionPct)
		}
		maps = append(maps, fm)
	}
	return maps
}
