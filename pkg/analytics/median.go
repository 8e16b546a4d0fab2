package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/bluess57/gt7core/pkg/model"
)

// ErrNoLapData is returned when a median lap is requested but no lap
// survives the pit lap filter. That is a caller error, not an
// environmental condition.
var ErrNoLapData = errors.New("no lap data")

// medianWindow excludes pit and out laps: anything more than 10 s away
// from the fastest lap does not contribute to the median.
const medianWindow = 10_000.0

// MedianLap synthesizes a lap whose scalar fields are the median of the
// contributing laps and whose tick arrays are element-wise medians. A
// lap shorter than a given tick simply does not contribute at that tick.
func MedianLap(laps []*model.Lap) (*model.Lap, error) {
	best := BestLap(laps)
	if best == nil {
		return nil, fmt.Errorf("selecting fastest lap: %w", ErrNoLapData)
	}
	contributing := lo.Filter(laps, func(lap *model.Lap, _ int) bool {
		return lap.LapFinishTime > 0 &&
			math.Abs(lap.LapFinishTime-best.LapFinishTime) <= medianWindow
	})
	if len(contributing) == 0 {
		return nil, ErrNoLapData
	}

	median := model.NewLap()
	median.Title = fmt.Sprintf("Median (%d laps)", len(contributing))

	median.LapFinishTime = medianScalar(contributing, func(l *model.Lap) float64 { return l.LapFinishTime })
	median.LapLiveTime = medianScalar(contributing, func(l *model.Lap) float64 { return l.LapLiveTime })
	median.LapTicks = medianInt(contributing, func(l *model.Lap) int { return l.LapTicks })
	median.Number = medianInt(contributing, func(l *model.Lap) int { return l.Number })
	median.TotalLaps = medianInt(contributing, func(l *model.Lap) int { return l.TotalLaps })
	median.FullThrottleTicks = medianInt(contributing, func(l *model.Lap) int { return l.FullThrottleTicks })
	median.FullBrakeTicks = medianInt(contributing, func(l *model.Lap) int { return l.FullBrakeTicks })
	median.ThrottleAndBrakeTicks = medianInt(contributing, func(l *model.Lap) int { return l.ThrottleAndBrakeTicks })
	median.NoThrottleNoBrakeTicks = medianInt(contributing, func(l *model.Lap) int { return l.NoThrottleNoBrakeTicks })
	median.TyresOverheatedTicks = medianInt(contributing, func(l *model.Lap) int { return l.TyresOverheatedTicks })
	median.TyresSpinningTicks = medianInt(contributing, func(l *model.Lap) int { return l.TyresSpinningTicks })
	median.FuelAtStart = medianScalar(contributing, func(l *model.Lap) float64 { return l.FuelAtStart })
	median.FuelAtEnd = medianScalar(contributing, func(l *model.Lap) float64 { return l.FuelAtEnd })
	median.FuelConsumed = medianScalar(contributing, func(l *model.Lap) float64 { return l.FuelConsumed })
	median.EstimatedTopSpeed = medianInt(contributing, func(l *model.Lap) int { return l.EstimatedTopSpeed })
	median.CarID = contributing[0].CarID

	median.DataGear = medianIntArray(contributing, func(l *model.Lap) []int { return l.DataGear })
	median.DataCoasting = medianIntArray(contributing, func(l *model.Lap) []int { return l.DataCoasting })
	median.DataThrottle = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataThrottle })
	median.DataBraking = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataBraking })
	median.DataSpeed = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataSpeed })
	median.DataTime = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataTime })
	median.DataRPM = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataRPM })
	median.DataTyres = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataTyres })
	median.DataBoost = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataBoost })
	median.DataYaw = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataYaw })
	median.DataYawRate = medianArray(contributing, func(l *model.Lap) []float64 { return l.DataYawRate })
	median.PositionX = medianArray(contributing, func(l *model.Lap) []float64 { return l.PositionX })
	median.PositionY = medianArray(contributing, func(l *model.Lap) []float64 { return l.PositionY })
	median.PositionZ = medianArray(contributing, func(l *model.Lap) []float64 { return l.PositionZ })

	return median, nil
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianScalar(laps []*model.Lap, field func(*model.Lap) float64) float64 {
	values := make([]float64, len(laps))
	for i, lap := range laps {
		values[i] = field(lap)
	}
	return medianOf(values)
}

func medianInt(laps []*model.Lap, field func(*model.Lap) int) int {
	values := make([]float64, len(laps))
	for i, lap := range laps {
		values[i] = float64(field(lap))
	}
	return int(math.Round(medianOf(values)))
}

func medianIntArray(laps []*model.Lap, field func(*model.Lap) []int) []int {
	asFloats := medianArray(laps, func(l *model.Lap) []float64 {
		arr := field(l)
		out := make([]float64, len(arr))
		for i, v := range arr {
			out[i] = float64(v)
		}
		return out
	})
	out := make([]int, len(asFloats))
	for i, v := range asFloats {
		out[i] = int(math.Round(v))
	}
	return out
}

// medianArray computes the element-wise median of ragged arrays. At each
// index only the laps long enough contribute.
func medianArray(laps []*model.Lap, field func(*model.Lap) []float64) []float64 {
	longest := 0
	for _, lap := range laps {
		if n := len(field(lap)); n > longest {
			longest = n
		}
	}
	out := make([]float64, 0, longest)
	values := make([]float64, 0, len(laps))
	for k := 0; k < longest; k++ {
		values = values[:0]
		for _, lap := range laps {
			arr := field(lap)
			if k < len(arr) {
				values = append(values, arr[k])
			}
		}
		out = append(out, medianOf(values))
	}
	return out
}
