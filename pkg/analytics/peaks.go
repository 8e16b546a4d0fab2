package analytics

import "sort"

// DefaultPeakWidth is the minimum peak width used for speed traces. At
// 60 Hz anything narrower is noise rather than a straight or a corner.
const DefaultPeakWidth = 100

// Extremum is one detected peak or valley of a speed trace.
type Extremum struct {
	Index int
	Value float64
	Peak  bool
}

// FindPeaks locates local maxima of values. A plateau of equal samples
// counts as one maximum at its middle index. Peaks whose width at half
// prominence is below minWidth are discarded. Returned indices are
// ascending.
func FindPeaks(values []float64, minWidth float64) (indices []int, heights []float64) {
	indices = []int{}
	heights = []float64{}
	candidates := localMaxima(values)
	for _, mid := range candidates {
		if peakWidth(values, mid) >= minWidth {
			indices = append(indices, mid)
			heights = append(heights, values[mid])
		}
	}
	return indices, heights
}

// FindValleys locates local minima of values by searching the negated
// sequence. Returned heights are the original (positive) values.
func FindValleys(values []float64, minWidth float64) (indices []int, heights []float64) {
	negated := make([]float64, len(values))
	for i, v := range values {
		negated[i] = -v
	}
	indices, _ = FindPeaks(negated, minWidth)
	heights = make([]float64, len(indices))
	for i, idx := range indices {
		heights[i] = values[idx]
	}
	return indices, heights
}

// PeaksAndValleys merges peak and valley detection into one index sorted
// list for annotation.
func PeaksAndValleys(values []float64, minWidth float64) []Extremum {
	out := []Extremum{}
	idx, heights := FindPeaks(values, minWidth)
	for i := range idx {
		out = append(out, Extremum{Index: idx[i], Value: heights[i], Peak: true})
	}
	idx, heights = FindValleys(values, minWidth)
	for i := range idx {
		out = append(out, Extremum{Index: idx[i], Value: heights[i]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// localMaxima returns the midpoints of all strict local maxima. Boundary
// samples never qualify since one of their neighbors is missing.
func localMaxima(values []float64) []int {
	maxima := []int{}
	i := 1
	for i < len(values)-1 {
		if values[i-1] >= values[i] {
			i++
			continue
		}
		// values[i] rose above its left neighbor; find the plateau end
		ahead := i + 1
		for ahead < len(values) && values[ahead] == values[i] {
			ahead++
		}
		if ahead < len(values) && values[ahead] < values[i] {
			maxima = append(maxima, (i+ahead-1)/2)
		}
		i = ahead
	}
	return maxima
}

// peakWidth measures the width of the peak at mid at half its prominence,
// with linear interpolation at the crossing points. This mirrors the
// conventional signal processing definition.
func peakWidth(values []float64, mid int) float64 {
	leftBase, rightBase := peakBases(values, mid)
	leftMin := minIn(values, leftBase, mid)
	rightMin := minIn(values, mid, rightBase)
	prominence := values[mid] - maxOf(leftMin, rightMin)
	height := values[mid] - prominence/2

	left := float64(leftBase)
	for i := mid; i > leftBase; i-- {
		if values[i-1] < height {
			left = float64(i) - (height-values[i])/(values[i-1]-values[i])
			break
		}
	}
	right := float64(rightBase)
	for i := mid; i < rightBase; i++ {
		if values[i+1] < height {
			right = float64(i) + (values[i]-height)/(values[i]-values[i+1])
			break
		}
	}
	return right - left
}

// peakBases finds the nearest higher samples (or the sequence bounds) on
// either side of the peak; the intervals to them bound the prominence
// search.
func peakBases(values []float64, mid int) (left, right int) {
	left = 0
	for i := mid - 1; i >= 0; i-- {
		if values[i] > values[mid] {
			left = i
			break
		}
	}
	right = len(values) - 1
	for i := mid + 1; i < len(values); i++ {
		if values[i] > values[mid] {
			right = i
			break
		}
	}
	return left, right
}

func minIn(values []float64, from, to int) float64 {
	m := values[from]
	for i := from + 1; i <= to; i++ {
		if values[i] < m {
			m = values[i]
		}
	}
	return m
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
