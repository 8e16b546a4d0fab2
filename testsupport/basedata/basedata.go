// Package basedata provides shared fixtures for tests that need
// realistic laps and telemetry samples without building them by hand.
package basedata

import (
	"math"
	"time"

	"github.com/bluess57/gt7core/pkg/model"
)

const TestCarID = 1448

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

// SampleSample returns one plausible in-race telemetry sample.
func SampleSample() *model.TelemetrySample {
	return &model.TelemetrySample{
		PackageID:    77,
		CurrentLap:   2,
		TotalLaps:    10,
		BestLap:      91500,
		LastLap:      92000,
		InRace:       true,
		CarSpeed:     182.4,
		Throttle:     100,
		RPM:          6450,
		CurrentGear:  4,
		Boost:        0.4,
		CurrentFuel:  73.2,
		FuelCapacity: 100,
		WheelSpeed: model.CornerSet{
			FrontLeft: 182.2, FrontRight: 182.6,
			RearLeft: 183.0, RearRight: 183.1,
		},
		TyreTemp: model.CornerSet{
			FrontLeft: 68, FrontRight: 71, RearLeft: 74, RearRight: 75,
		},
		PositionX:         120.5,
		PositionY:         4.2,
		PositionZ:         -88.1,
		RideHeight:        55,
		CarID:             TestCarID,
		EstimatedTopSpeed: 280,
	}
}

// SampleLap builds a finished lap with a synthetic but consistent speed
// trace: accelerate, hold, brake into a corner, accelerate again.
func SampleLap(number int, finishTime float64) *model.Lap {
	lap := model.NewLap()
	lap.Number = number
	lap.LapFinishTime = finishTime
	lap.Title = model.SecondsToLapTime(finishTime / 1000)
	lap.CarID = TestCarID
	lap.TotalLaps = 10
	lap.FuelAtStart = 80
	lap.FuelAtEnd = 72
	lap.FuelConsumed = 8
	lap.LapStart = TestTime()
	lap.LapEnd = TestTime().Add(time.Duration(finishTime) * time.Millisecond)

	ticks := 600
	for i := 0; i < ticks; i++ {
		phase := float64(i) / float64(ticks) * 2 * math.Pi
		speed := 150 - 60*math.Cos(phase)
		lap.DataSpeed = append(lap.DataSpeed, speed)
		lap.DataTime = append(lap.DataTime, float64(i)/60)
		lap.DataRPM = append(lap.DataRPM, 3000+20*speed)
		lap.DataGear = append(lap.DataGear, 3+int(speed)/60)
		lap.DataBoost = append(lap.DataBoost, 0.2)
		lap.DataYaw = append(lap.DataYaw, math.Sin(phase))
		lap.DataYawRate = append(lap.DataYawRate, 0)
		lap.DataTyres = append(lap.DataTyres, 4.0)

		throttle, brake := 100.0, 0.0
		if math.Cos(phase) > 0.5 {
			throttle, brake = 0, 80
		}
		lap.DataThrottle = append(lap.DataThrottle, throttle)
		lap.DataBraking = append(lap.DataBraking, brake)
		coasting := 0
		if throttle == 0 && brake == 0 {
			coasting = 1
		}
		lap.DataCoasting = append(lap.DataCoasting, coasting)

		lap.PositionX = append(lap.PositionX, 200*math.Cos(phase))
		lap.PositionY = append(lap.PositionY, 2)
		lap.PositionZ = append(lap.PositionZ, 200*math.Sin(phase))
	}
	lap.LapTicks = ticks
	lap.LapLiveTime = float64(ticks) / 60
	return lap
}

// SampleLaps returns laps most recent first, the way a session holds
// them.
func SampleLaps(count int) []*model.Lap {
	laps := make([]*model.Lap, 0, count)
	for i := count; i >= 1; i-- {
		laps = append(laps, SampleLap(i, 90000+float64(i%3)*1500))
	}
	return laps
}
