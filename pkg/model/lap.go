package model

import (
	"fmt"
	"math"
	"time"
)

// TickDuration is the native tick period of the wire protocol in
// milliseconds (60 Hz broadcast).
const TickDuration = 16.668

// RaceLineMode selects which portion of the race line is extracted by
// RaceLineCoordinates.
type RaceLineMode string

const (
	RaceLineBraking  RaceLineMode = "BRAKING"
	RaceLineThrottle RaceLineMode = "THROTTLE"
	RaceLineCoasting RaceLineMode = "COASTING"
)

// Lap is the time series record of one lap. During recording it is owned
// and mutated by the accumulator; once finalized it is owned immutably by
// the session. All per-tick slices have length LapTicks after finalization.
type Lap struct {
	Title         string  `json:"title"`
	Number        int     `json:"number"`
	LapTicks      int     `json:"lapTicks"`
	LapFinishTime float64 `json:"lapFinishTime"` // ms, 0 while the lap is open
	LapLiveTime   float64 `json:"lapLiveTime"`   // seconds, drift corrected
	TotalLaps     int     `json:"totalLaps"`

	FullThrottleTicks      int `json:"fullThrottleTicks"`
	FullBrakeTicks         int `json:"fullBrakeTicks"`
	ThrottleAndBrakeTicks  int `json:"throttleAndBrakeTicks"`
	NoThrottleNoBrakeTicks int `json:"noThrottleNoBrakeTicks"`
	TyresOverheatedTicks   int `json:"tyresOverheatedTicks"`
	TyresSpinningTicks     int `json:"tyresSpinningTicks"`

	DataThrottle []float64 `json:"dataThrottle"`
	DataBraking  []float64 `json:"dataBraking"`
	DataCoasting []int     `json:"dataCoasting"` // 1 when neither pedal is used
	DataSpeed    []float64 `json:"dataSpeed"`
	DataTime     []float64 `json:"dataTime"` // live time in seconds per tick
	DataRPM      []float64 `json:"dataRpm"`
	DataGear     []int     `json:"dataGear"`
	DataTyres    []float64 `json:"dataTyres"` // summed slip ratios per tick
	DataBoost    []float64 `json:"dataBoost"`
	DataYaw      []float64 `json:"dataYaw"`
	DataYawRate  []float64 `json:"dataYawRate"` // absolute yaw rate per second

	PositionX []float64 `json:"positionX"`
	PositionY []float64 `json:"positionY"`
	PositionZ []float64 `json:"positionZ"`

	FuelAtStart  float64 `json:"fuelAtStart"`
	FuelAtEnd    float64 `json:"fuelAtEnd"`
	FuelConsumed float64 `json:"fuelConsumed"`

	CarID             int  `json:"carId"`
	EstimatedTopSpeed int  `json:"estimatedTopSpeed"`
	IsReplay          bool `json:"isReplay"`
	IsManual          bool `json:"isManual"`

	LapStart time.Time `json:"lapStart"`
	LapEnd   time.Time `json:"lapEnd"`
}

// NewLap returns an empty lap with the start timestamp set.
func NewLap() *Lap {
	return &Lap{
		FuelAtEnd:    -1,
		FuelConsumed: -1,
		LapStart:     time.Now(),
	}
}

func (l *Lap) String() string {
	return fmt.Sprintf("Lap %2d, %s (%d Ticks)", l.Number, l.Title, len(l.DataSpeed))
}

// SecondsToLapTime formats seconds as "M:SS.mmm" with a sign prefix for
// negative durations.
func SecondsToLapTime(seconds float64) string {
	prefix := ""
	if seconds < 0 {
		prefix = "-"
		seconds *= -1
	}
	minutes := math.Floor(seconds / 60)
	remaining := math.Mod(seconds, 60)
	return fmt.Sprintf("%s%01.0f:%06.3f", prefix, minutes, remaining)
}

// DistanceAxis integrates speed over the fixed tick duration into a
// monotonic cumulative distance sequence (meters). A zero speed sample
// holds distance constant.
func (l *Lap) DistanceAxis() []float64 {
	if len(l.DataSpeed) == 0 {
		return []float64{}
	}
	axis := make([]float64, len(l.DataSpeed))
	for i := 1; i < len(l.DataSpeed); i++ {
		if l.DataSpeed[i] == 0 {
			axis[i] = axis[i-1]
			continue
		}
		increment := l.DataSpeed[i] / 3.6 / 1000 * TickDuration
		axis[i] = axis[i-1] + increment
	}
	return axis
}

// BrakePoints returns the x/z coordinates of the ticks where braking
// starts (previous tick without brake, current tick with brake).
func (l *Lap) BrakePoints() (x, z []float64) {
	x = []float64{}
	z = []float64{}
	if len(l.DataBraking) < 2 {
		return x, z
	}
	for i := 1; i < len(l.DataBraking); i++ {
		if l.DataBraking[i-1] == 0 && l.DataBraking[i] > 0 &&
			i < len(l.PositionX) && i < len(l.PositionZ) {
			x = append(x, l.PositionX[i])
			z = append(z, l.PositionZ[i])
		}
	}
	return x, z
}

// RaceLineCoordinates returns the positions of the ticks matching the
// given mode. Ticks outside the mode are reported as NaN so a consumer can
// draw interrupted line segments.
func (l *Lap) RaceLineCoordinates(mode RaceLineMode) (x, y, z []float64) {
	n := len(l.DataBraking)
	x = make([]float64, n)
	y = make([]float64, n)
	z = make([]float64, n)
	for i := 0; i < n; i++ {
		active := false
		switch mode {
		case RaceLineBraking:
			active = l.DataBraking[i] > l.DataThrottle[i]
		case RaceLineThrottle:
			active = l.DataBraking[i] < l.DataThrottle[i]
		case RaceLineCoasting:
			active = l.DataBraking[i] == 0 && l.DataThrottle[i] == 0
		}
		if active && i < len(l.PositionX) {
			x[i] = l.PositionX[i]
			y[i] = l.PositionY[i]
			z[i] = l.PositionZ[i]
		} else {
			x[i] = math.NaN()
			y[i] = math.NaN()
			z[i] = math.NaN()
		}
	}
	return x, y, z
}

// TotalDistance computes the traveled distance from the 3D positions.
func (l *Lap) TotalDistance() float64 {
	if len(l.PositionX) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(l.PositionX); i++ {
		dx := l.PositionX[i] - l.PositionX[i-1]
		dy := l.PositionY[i] - l.PositionY[i-1]
		dz := l.PositionZ[i] - l.PositionZ[i-1]
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// Copy returns a deep copy. Finalized laps are copied before they cross
// the listener boundary so consumers cannot corrupt accumulator state.
func (l *Lap) Copy() *Lap {
	ret := *l
	ret.DataThrottle = append([]float64{}, l.DataThrottle...)
	ret.DataBraking = append([]float64{}, l.DataBraking...)
	ret.DataCoasting = append([]int{}, l.DataCoasting...)
	ret.DataSpeed = append([]float64{}, l.DataSpeed...)
	ret.DataTime = append([]float64{}, l.DataTime...)
	ret.DataRPM = append([]float64{}, l.DataRPM...)
	ret.DataGear = append([]int{}, l.DataGear...)
	ret.DataTyres = append([]float64{}, l.DataTyres...)
	ret.DataBoost = append([]float64{}, l.DataBoost...)
	ret.DataYaw = append([]float64{}, l.DataYaw...)
	ret.DataYawRate = append([]float64{}, l.DataYawRate...)
	ret.PositionX = append([]float64{}, l.PositionX...)
	ret.PositionY = append([]float64{}, l.PositionY...)
	ret.PositionZ = append([]float64{}, l.PositionZ...)
	return &ret
}
