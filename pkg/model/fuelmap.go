package model

import "fmt"

// FuelMap describes the projected effect of one fuel mixture setting
// relative to the setting the source lap was recorded with. Instances are
// derived on demand and never persisted.
type FuelMap struct {
	MixtureSetting     int     // relative setting, -5..+5
	PowerPct           float64 // available power relative to base (1.0 = 100%)
	ConsumptionPct     float64 // fuel consumption relative to base
	FuelConsumedPerLap float64
	LapsRemaining      float64
	TimeRemaining      float64 // ms
	LapTimeDiff        float64 // ms, penalty (positive) or gain (negative)
	LapTimeExpected    float64 // ms
}

func (f *FuelMap) String() string {
	return fmt.Sprintf("%d\t\t %d%%\t\t\t %d%%\t%d\t%.1f\t%s\t%s",
		f.MixtureSetting,
		int(f.PowerPct*100),
		int(f.ConsumptionPct*100),
		int(f.FuelConsumedPerLap),
		f.LapsRemaining,
		SecondsToLapTime(f.TimeRemaining/1000),
		SecondsToLapTime(f.LapTimeDiff/1000),
	)
}
