package telemetry

import (
	"math"
	"sync"
	"time"

	"github.com/bluess57/gt7core/log"
	"github.com/bluess57/gt7core/pkg/model"
)

var timeNow = time.Now

const (
	ticksPerSecond = 60
	// yaw rate is measured against the sample one second back
	yawRateInterval = 1 * ticksPerSecond

	overheatTemp  = 100.0 // celsius
	spinThreshold = 1.1   // wheel speed vs car speed ratio

	// plausibility gates applied before a sample is folded
	maxPlausibleSpeed    = 600.0
	maxPlausiblePosition = 1e6
)

// LapAccumulator folds accepted telemetry samples into the currently open
// lap and detects lap boundary crossings. All access to the in-flight lap
// happens under the internal lock; finalized laps are returned to the
// caller so listener fan-out happens outside the lock.
type LapAccumulator struct {
	mu sync.Mutex

	current     *model.Lap
	lastSample  *model.TelemetrySample
	previousLap int
	// cumulative drift between console lap time and tick derived time (ms)
	specialPacketTime float64
	alwaysRecord      bool

	l *log.Logger
}

type LapAccumulatorOption func(a *LapAccumulator)

// WithAlwaysRecord records samples even when the in-race flag is not set.
// Useful when capturing replays.
func WithAlwaysRecord(arg bool) LapAccumulatorOption {
	return func(a *LapAccumulator) {
		a.alwaysRecord = arg
	}
}

func NewLapAccumulator(opts ...LapAccumulatorOption) *LapAccumulator {
	a := &LapAccumulator{
		current:     model.NewLap(),
		previousLap: -1,
		l:           log.Default().Named("telemetry.lap"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessSample runs the boundary state machine and the per-tick fold for
// one accepted sample. When a lap boundary was crossed the finalized lap
// is returned; the caller owns it exclusively.
func (a *LapAccumulator) ProcessSample(sample *model.TelemetrySample) *model.Lap {
	if !plausible(sample) {
		a.l.Debug("sample rejected by plausibility gate",
			log.Int32("packageId", sample.PackageID),
			log.Float("speed", sample.CarSpeed))
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastSample = sample
	var finalized *model.Lap

	if sample.CurrentLap == 0 {
		a.specialPacketTime = 0
	}

	if sample.CurrentLap > 0 && (sample.InRace || a.alwaysRecord) {
		if sample.CurrentLap != a.previousLap {
			a.previousLap = sample.CurrentLap
			a.specialPacketTime += float64(sample.LastLap) -
				float64(a.current.LapTicks)*1000.0/ticksPerSecond
			finalized = a.finishLapLocked(sample, false)
		}
	} else {
		// pre-race or reset to lap zero: discard the open lap
		a.current = model.NewLap()
		a.current.FuelAtStart = sample.CurrentFuel
	}

	if (sample.InRace || a.alwaysRecord) && !sample.IsPaused {
		a.foldLocked(sample)
	}
	return finalized
}

// FinishManual finalizes the open lap on user request without a boundary
// crossing. Returns nil when no sample was seen yet or the lap is not
// worth keeping.
func (a *LapAccumulator) FinishManual() *model.Lap {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastSample == nil {
		return nil
	}
	return a.finishLapLocked(a.lastSample, true)
}

// Reset discards the open lap and all drift state.
// AlwaysRecord reports whether samples outside a race are folded.
func (a *LapAccumulator) AlwaysRecord() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alwaysRecord
}

func (a *LapAccumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = model.NewLap()
	a.lastSample = nil
	a.previousLap = -1
	a.specialPacketTime = 0
}

// CurrentLapTicks reports the tick count of the in-flight lap.
func (a *LapAccumulator) CurrentLapTicks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current.LapTicks
}

// LiveTime reports the drift corrected running time of the open lap.
func (a *LapAccumulator) LiveTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current.LapLiveTime
}

func plausible(sample *model.TelemetrySample) bool {
	if sample.CarSpeed < 0 || sample.CarSpeed >= maxPlausibleSpeed {
		return false
	}
	if sample.Throttle < 0 || sample.Throttle > 100 ||
		sample.Brake < 0 || sample.Brake > 100 {
		return false
	}
	if math.Abs(sample.PositionX) > maxPlausiblePosition ||
		math.Abs(sample.PositionY) > maxPlausiblePosition ||
		math.Abs(sample.PositionZ) > maxPlausiblePosition {
		return false
	}
	return true
}

//nolint:funlen // one tick fold, kept in one place on purpose
func (a *LapAccumulator) foldLocked(sample *model.TelemetrySample) {
	lap := a.current

	if sample.Throttle >= 100 {
		lap.FullThrottleTicks++
	}
	if sample.Brake >= 100 {
		lap.FullBrakeTicks++
	}
	if sample.Brake == 0 && sample.Throttle == 0 {
		lap.NoThrottleNoBrakeTicks++
		lap.DataCoasting = append(lap.DataCoasting, 1)
	} else {
		lap.DataCoasting = append(lap.DataCoasting, 0)
	}
	if sample.Brake > 0 && sample.Throttle > 0 {
		lap.ThrottleAndBrakeTicks++
	}
	lap.LapTicks++

	if sample.TyreTemp.Max() > overheatTemp {
		lap.TyresOverheatedTicks++
	}

	lap.DataBraking = append(lap.DataBraking, sample.Brake)
	lap.DataThrottle = append(lap.DataThrottle, sample.Throttle)
	lap.DataSpeed = append(lap.DataSpeed, sample.CarSpeed)

	divisor := sample.CarSpeed
	if divisor == 0 {
		divisor = 1
	}
	ratioFL := sample.WheelSpeed.FrontLeft / divisor
	ratioFR := sample.WheelSpeed.FrontRight / divisor
	ratioRL := sample.WheelSpeed.RearLeft / divisor
	ratioRR := sample.WheelSpeed.RearRight / divisor
	if ratioFL > spinThreshold || ratioFR > spinThreshold ||
		ratioRL > spinThreshold || ratioRR > spinThreshold {
		lap.TyresSpinningTicks++
	}
	lap.DataTyres = append(lap.DataTyres, ratioFL+ratioFR+ratioRL+ratioRR)

	lap.DataRPM = append(lap.DataRPM, sample.RPM)
	lap.DataGear = append(lap.DataGear, sample.CurrentGear)
	lap.DataBoost = append(lap.DataBoost, sample.Boost)

	lap.PositionX = append(lap.PositionX, sample.PositionX)
	lap.PositionY = append(lap.PositionY, sample.PositionY)
	lap.PositionZ = append(lap.PositionZ, sample.PositionZ)

	lap.DataYaw = append(lap.DataYaw, sample.RotationYaw)
	yawRate := 0.0
	if n := len(lap.DataYaw); n > yawRateInterval {
		yawRate = sample.RotationYaw - lap.DataYaw[n-yawRateInterval]
	}
	lap.DataYawRate = append(lap.DataYawRate, math.Abs(yawRate))

	// drift corrected running time: the tick count alone drifts away from
	// the console's internal timer over the course of a session
	lap.LapLiveTime = float64(lap.LapTicks)/ticksPerSecond -
		a.specialPacketTime/1000.0
	lap.DataTime = append(lap.DataTime, lap.LapLiveTime)

	lap.CarID = sample.CarID
}

// finishLapLocked closes the open lap and starts a new one. The finalized
// lap is returned only when it crossed the start line and carries data.
func (a *LapAccumulator) finishLapLocked(
	sample *model.TelemetrySample,
	manual bool,
) *model.Lap {
	lap := a.current

	if manual {
		// no boundary crossing happened; the live time is all we have
		lap.LapFinishTime = lap.LapLiveTime * 1000
	} else {
		lap.LapFinishTime = float64(sample.LastLap)
	}

	lap.IsReplay = a.alwaysRecord
	lap.IsManual = manual
	lap.FuelAtEnd = sample.CurrentFuel
	lap.FuelConsumed = lap.FuelAtStart - lap.FuelAtEnd
	lap.TotalLaps = sample.TotalLaps
	lap.Title = model.SecondsToLapTime(lap.LapFinishTime / 1000)
	lap.CarID = sample.CarID
	// the console counts the lap in progress
	lap.Number = sample.CurrentLap - 1
	lap.EstimatedTopSpeed = sample.EstimatedTopSpeed
	lap.LapEnd = timeNow()

	a.current = model.NewLap()
	a.current.FuelAtStart = sample.CurrentFuel

	if lap.LapFinishTime > 0 && len(lap.DataSpeed) > 0 {
		a.l.Debug("lap finalized",
			log.Int("number", lap.Number),
			log.String("title", lap.Title),
			log.Int("ticks", lap.LapTicks),
			log.Bool("manual", manual))
		return lap
	}
	// lap zero or an empty lap: not worth keeping
	return nil
}
