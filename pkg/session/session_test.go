//nolint:thelper,funlen // ok for tests
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluess57/gt7core/pkg/model"
)

func lapWithNumber(number int, finishTime float64) *model.Lap {
	lap := model.NewLap()
	lap.Number = number
	lap.LapFinishTime = finishTime
	lap.DataSpeed = []float64{100}
	return lap
}

func TestAddLapPrepends(t *testing.T) {
	s := New()
	s.AddLap(lapWithNumber(1, 90000))
	s.AddLap(lapWithNumber(2, 91000))

	laps := s.Laps()
	assert.Len(t, laps, 2)
	assert.Equal(t, 2, laps[0].Number)
	assert.Equal(t, 1, laps[1].Number)
}

func TestAddLapNotifiesListenersOutsideLock(t *testing.T) {
	s := New()
	var seen []int
	s.OnLapAdded(func(lap *model.Lap) {
		// re-entering the session must not deadlock
		_ = s.Laps()
		seen = append(seen, lap.Number)
	})
	s.OnLapAdded(func(lap *model.Lap) {
		panic("listener failure must not stop the fan-out")
	})
	notifiedLast := false
	s.OnLapAdded(func(lap *model.Lap) {
		notifiedLast = true
	})

	s.AddLap(lapWithNumber(3, 90000))
	assert.Equal(t, []int{3}, seen)
	assert.True(t, notifiedLast)
}

func TestDeleteLapKeepsNumbers(t *testing.T) {
	s := New()
	s.AddLap(lapWithNumber(1, 90000))
	s.AddLap(lapWithNumber(2, 91000))
	s.AddLap(lapWithNumber(3, 92000))

	assert.True(t, s.DeleteLap(2))
	assert.False(t, s.DeleteLap(2))

	laps := s.Laps()
	assert.Len(t, laps, 2)
	assert.Equal(t, 3, laps[0].Number)
	assert.Equal(t, 1, laps[1].Number)
}

func TestLoadLaps(t *testing.T) {
	tests := []struct {
		name        string
		policy      PlacementPolicy
		wantNumbers []int
	}{
		{name: "replace", policy: PolicyReplace, wantNumbers: []int{7, 8}},
		{name: "merge", policy: PolicyMerge, wantNumbers: []int{1, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.AddLap(lapWithNumber(1, 90000))
			var loaded []*model.Lap
			s.OnLapsLoaded(func(laps []*model.Lap) { loaded = laps })

			s.LoadLaps([]*model.Lap{
				lapWithNumber(7, 93000),
				lapWithNumber(8, 94000),
			}, tt.policy)

			got := []int{}
			for _, lap := range s.Laps() {
				got = append(got, lap.Number)
			}
			assert.Equal(t, tt.wantNumbers, got)
			assert.Len(t, loaded, len(tt.wantNumbers))
		})
	}
}

func TestExtremaAndReset(t *testing.T) {
	s := New()
	s.ObserveSample(120, 95)
	s.ObserveSample(250, 60)
	s.ObserveSample(180, 80)
	s.SetBestLap(90500)

	assert.InDelta(t, 250.0, s.MaxSpeed(), 0.001)
	assert.InDelta(t, 60.0, s.MinBodyHeight(), 0.001)
	assert.Equal(t, int64(90500), s.BestLap())

	s.Reset()
	assert.Empty(t, s.Laps())
	assert.Equal(t, int64(-1), s.BestLap())
	assert.InDelta(t, 0.0, s.MaxSpeed(), 0.001)
}

func TestResetNotifiesListeners(t *testing.T) {
	s := New()
	s.AddLap(lapWithNumber(1, 90000))
	s.SetBestLap(90000)
	s.ObserveSample(140, 85)

	notified := false
	s.OnReset(func(struct{}) {
		// re-entering the session must not deadlock
		_ = s.Laps()
		notified = true
	})
	s.Reset()

	assert.True(t, notified)
	assert.Empty(t, s.Laps())
	assert.Equal(t, int64(-1), s.BestLap())
	assert.Zero(t, s.MaxSpeed())
}
