package analytics

import (
	"github.com/bluess57/gt7core/pkg/model"
)

// deltaGridStep is the resampling cadence of the time axis in seconds.
const deltaGridStep = 0.01

// TimeDelta compares two laps by track position instead of elapsed time.
// Each lap's tick series is resampled onto a 10 ms time grid to get a
// distance curve per lap, the curves are inverted into time-over-distance,
// outer joined on a common distance axis and subtracted. Positive values
// mean the comparison lap is slower at that point of the track. Laps
// without enough data yield empty results.
func TimeDelta(reference, comparison *model.Lap) (distances, deltas []float64) {
	refDist, refTime := resampleDistance(reference)
	compDist, compTime := resampleDistance(comparison)
	if len(refDist) == 0 || len(compDist) == 0 {
		return []float64{}, []float64{}
	}

	refCurve := fitCurve(refDist, refTime)
	compCurve := fitCurve(compDist, compTime)
	if !refCurve.ok || !compCurve.ok {
		return []float64{}, []float64{}
	}

	distances = unionAxis(refDist, compDist)
	deltas = make([]float64, len(distances))
	for i, d := range distances {
		deltas[i] = compCurve.at(d) - refCurve.at(d)
	}
	return distances, deltas
}

// resampleDistance inverts a lap's time series into distance over time on
// a fixed grid, then returns it as (distance, time) pairs with the
// distance ascending.
func resampleDistance(lap *model.Lap) (dist, t []float64) {
	axis := lap.DistanceAxis()
	if len(axis) < 2 || len(lap.DataTime) != len(axis) {
		return nil, nil
	}
	overTime := fitCurve(lap.DataTime, axis)
	if !overTime.ok {
		return nil, nil
	}

	end := lap.DataTime[len(lap.DataTime)-1]
	steps := int(end/deltaGridStep) + 1
	dist = make([]float64, 0, steps)
	t = make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		at := float64(i) * deltaGridStep
		d := overTime.at(at)
		// keep the axis strictly usable as a function of distance
		if len(dist) > 0 && d <= dist[len(dist)-1] {
			continue
		}
		dist = append(dist, d)
		t = append(t, at)
	}
	return dist, t
}
