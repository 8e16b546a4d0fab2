package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
	"github.com/bluess57/gt7core/testsupport/basedata"
)

func TestSecondsToLapTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{90.321, "1:30.321"},
		{59.999, "0:59.999"},
		{60, "1:00.000"},
		{0, "0:00.000"},
		{125.5, "2:05.500"},
		{-2.5, "-0:02.500"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, model.SecondsToLapTime(test.seconds))
	}
}

func TestDistanceAxis(t *testing.T) {
	lap := model.NewLap()
	lap.DataSpeed = []float64{0, 36, 36, 0, 72}

	axis := lap.DistanceAxis()
	require.Len(t, axis, 5)

	assert.Zero(t, axis[0])
	// 36 km/h is 10 m/s, one tick covers 166.68 mm
	assert.InDelta(t, 0.16668, axis[1], 1e-9)
	assert.InDelta(t, 0.33336, axis[2], 1e-9)
	// a standing car holds its distance
	assert.InDelta(t, axis[2], axis[3], 1e-12)
	assert.InDelta(t, axis[3]+0.33336, axis[4], 1e-9)
}

func TestDistanceAxisEmpty(t *testing.T) {
	assert.Empty(t, model.NewLap().DistanceAxis())
}

func TestBrakePoints(t *testing.T) {
	lap := model.NewLap()
	lap.DataBraking = []float64{0, 0, 40, 80, 0, 0, 60, 0}
	lap.PositionX = []float64{10, 11, 12, 13, 14, 15, 16, 17}
	lap.PositionZ = []float64{20, 21, 22, 23, 24, 25, 26, 27}

	x, z := lap.BrakePoints()
	assert.Equal(t, []float64{12, 16}, x)
	assert.Equal(t, []float64{22, 26}, z)
}

func TestBrakePointsNoBraking(t *testing.T) {
	lap := model.NewLap()
	lap.DataBraking = []float64{0, 0, 0}
	x, z := lap.BrakePoints()
	assert.Empty(t, x)
	assert.Empty(t, z)
}

func TestRaceLineCoordinates(t *testing.T) {
	lap := model.NewLap()
	lap.DataThrottle = []float64{100, 0, 0}
	lap.DataBraking = []float64{0, 90, 0}
	lap.PositionX = []float64{1, 2, 3}
	lap.PositionY = []float64{4, 5, 6}
	lap.PositionZ = []float64{7, 8, 9}

	x, _, z := lap.RaceLineCoordinates(model.RaceLineBraking)
	require.Len(t, x, 3)
	assert.True(t, math.IsNaN(x[0]))
	assert.Equal(t, 2.0, x[1])
	assert.Equal(t, 8.0, z[1])
	assert.True(t, math.IsNaN(x[2]))

	x, _, _ = lap.RaceLineCoordinates(model.RaceLineThrottle)
	assert.Equal(t, 1.0, x[0])
	assert.True(t, math.IsNaN(x[1]))

	x, _, _ = lap.RaceLineCoordinates(model.RaceLineCoasting)
	assert.True(t, math.IsNaN(x[0]))
	assert.Equal(t, 3.0, x[2])
}

func TestTotalDistance(t *testing.T) {
	lap := model.NewLap()
	lap.PositionX = []float64{0, 3, 3}
	lap.PositionY = []float64{0, 4, 4}
	lap.PositionZ = []float64{0, 0, 12}
	assert.InDelta(t, 17.0, lap.TotalDistance(), 1e-9)

	assert.Zero(t, model.NewLap().TotalDistance())
}

func TestLapCopyIsDeep(t *testing.T) {
	lap := basedata.SampleLap(3, 91000)
	clone := lap.Copy()

	require.Equal(t, lap.LapFinishTime, clone.LapFinishTime)
	require.Equal(t, lap.DataSpeed, clone.DataSpeed)

	clone.DataSpeed[0] = -1
	clone.PositionX[0] = -1
	assert.NotEqual(t, lap.DataSpeed[0], clone.DataSpeed[0])
	assert.NotEqual(t, lap.PositionX[0], clone.PositionX[0])
}

func TestSampleLapIsConsistent(t *testing.T) {
	lap := basedata.SampleLap(1, 90000)
	assert.Equal(t, lap.LapTicks, len(lap.DataSpeed))
	assert.Equal(t, lap.LapTicks, len(lap.DataThrottle))
	assert.Equal(t, lap.LapTicks, len(lap.PositionZ))
	assert.Greater(t, lap.TotalDistance(), 0.0)
	assert.Equal(t, "1:30.000", lap.Title)
}
