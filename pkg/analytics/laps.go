package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/bluess57/gt7core/pkg/model"
)

// BestLap returns the fastest finished lap, or nil when none qualifies.
func BestLap(laps []*model.Lap) *model.Lap {
	finished := lo.Filter(laps, func(lap *model.Lap, _ int) bool {
		return lap.LapFinishTime > 0
	})
	if len(finished) == 0 {
		return nil
	}
	return lo.MinBy(finished, func(a, b *model.Lap) bool {
		return a.LapFinishTime < b.LapFinishTime
	})
}

// LastReferenceMedian picks the three laps a comparison view is built
// from: the most recent lap, the fastest lap as reference and the
// synthesized median lap. A reference needs at least two laps and a
// median at least three; last is nil only for an empty input.
func LastReferenceMedian(laps []*model.Lap) (last, reference, median *model.Lap) {
	if len(laps) == 0 {
		return nil, nil, nil
	}
	last = laps[0]
	if len(laps) >= 2 {
		reference = BestLap(laps)
	}
	if len(laps) >= 3 {
		median, _ = MedianLap(laps)
	}
	return last, reference, median
}

// FilterByTime drops laps outside the given finish time bounds (ms).
func FilterByTime(laps []*model.Lap, minTime, maxTime float64) []*model.Lap {
	return lo.Filter(laps, func(lap *model.Lap, _ int) bool {
		return lap.LapFinishTime >= minTime && lap.LapFinishTime <= maxTime
	})
}

// FastestWithinPercent returns up to limit non-replay laps whose finish
// time is within percentThreshold of the fastest lap, fastest first.
func FastestWithinPercent(laps []*model.Lap, percentThreshold float64, limit int) []*model.Lap {
	best := BestLap(laps)
	if best == nil {
		return []*model.Lap{}
	}
	cutoff := best.LapFinishTime * (1 + percentThreshold/100)
	eligible := lo.Filter(laps, func(lap *model.Lap, _ int) bool {
		return !lap.IsReplay &&
			lap.LapFinishTime > 0 &&
			lap.LapFinishTime <= cutoff
	})
	sorted := sortByFinishTime(eligible)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func sortByFinishTime(laps []*model.Lap) []*model.Lap {
	out := append([]*model.Lap(nil), laps...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].LapFinishTime < out[j].LapFinishTime
	})
	return out
}

// FormatLapTable renders laps as a plain text table, newest first. The
// best finished lap is marked in the first column.
func FormatLapTable(laps []*model.Lap) string {
	best := BestLap(laps)
	var b strings.Builder
	fmt.Fprintf(&b, "%-2s %-4s %-10s %-10s %-8s\n",
		"", "#", "Time", "Diff", "Fuel")
	for _, lap := range laps {
		marker := ""
		if lap == best {
			marker = "*"
		}
		diff := ""
		if best != nil && lap != best && lap.LapFinishTime > 0 {
			diff = model.SecondsToLapTime(
				(lap.LapFinishTime - best.LapFinishTime) / 1000)
		}
		fuel := ""
		if lap.FuelConsumed >= 0 {
			fuel = fmt.Sprintf("%.0f", lap.FuelConsumed)
		}
		fmt.Fprintf(&b, "%-2s %-4d %-10s %-10s %-8s\n",
			marker, lap.Number, lap.Title, diff, fuel)
	}
	return b.String()
}
