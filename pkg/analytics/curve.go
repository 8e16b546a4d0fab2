package analytics

import (
	"sort"

	"gonum.org/v1/gonum/interp"
)

// curve is a piecewise linear function fitted over possibly messy sample
// points. Distance axes stall while the car is stationary, so duplicate
// x values are compressed before fitting and queries outside the fitted
// range clamp to the end points.
type curve struct {
	pl       interp.PiecewiseLinear
	min, max float64
	minY     float64
	maxY     float64
	ok       bool
}

func fitCurve(xs, ys []float64) curve {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return curve{}
	}
	cx := make([]float64, 0, n)
	cy := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if len(cx) > 0 && xs[i] <= cx[len(cx)-1] {
			cy[len(cy)-1] = ys[i]
			continue
		}
		cx = append(cx, xs[i])
		cy = append(cy, ys[i])
	}
	if len(cx) < 2 {
		return curve{}
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(cx, cy); err != nil {
		return curve{}
	}
	return curve{
		pl:   pl,
		min:  cx[0],
		max:  cx[len(cx)-1],
		minY: cy[0],
		maxY: cy[len(cy)-1],
		ok:   true,
	}
}

func (c curve) at(x float64) float64 {
	if !c.ok {
		return 0
	}
	if x <= c.min {
		return c.minY
	}
	if x >= c.max {
		return c.maxY
	}
	return c.pl.Predict(x)
}

// unionAxis merges several ascending axes into one sorted, deduplicated
// axis for outer joins.
func unionAxis(axes ...[]float64) []float64 {
	size := 0
	for _, a := range axes {
		size += len(a)
	}
	merged := make([]float64, 0, size)
	for _, a := range axes {
		merged = append(merged, a...)
	}
	sort.Float64s(merged)
	out := merged[:0]
	for i, v := range merged {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
