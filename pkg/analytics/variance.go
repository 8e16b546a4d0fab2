package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/bluess57/gt7core/pkg/model"
)

// SpeedVariance builds a per-distance consistency curve over a set of
// laps: each lap's speed-over-distance curve is evaluated on the union
// distance axis and the sample standard deviation across laps is taken
// at every point. Fewer than two usable laps yield empty results.
func SpeedVariance(laps []*model.Lap) (distances, deviation []float64) {
	curves := make([]curve, 0, len(laps))
	axes := make([][]float64, 0, len(laps))
	for _, lap := range laps {
		axis := lap.DistanceAxis()
		if len(axis) < 2 || len(lap.DataSpeed) != len(axis) {
			continue
		}
		c := fitCurve(axis, lap.DataSpeed)
		if !c.ok {
			continue
		}
		curves = append(curves, c)
		axes = append(axes, axis)
	}
	if len(curves) < 2 {
		return []float64{}, []float64{}
	}

	distances = unionAxis(axes...)
	deviation = make([]float64, len(distances))
	speeds := make([]float64, len(curves))
	for i, d := range distances {
		for j, c := range curves {
			speeds[j] = c.at(d)
		}
		deviation[i] = stat.StdDev(speeds, nil)
	}
	return distances, deviation
}
