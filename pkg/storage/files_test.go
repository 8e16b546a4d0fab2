package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
)

func sampleLap(number int, finishTime float64) *model.Lap {
	lap := model.NewLap()
	lap.Number = number
	lap.LapFinishTime = finishTime
	lap.Title = model.SecondsToLapTime(finishTime / 1000)
	lap.LapTicks = 3
	lap.DataSpeed = []float64{120.5, 130.25, 125}
	lap.DataThrottle = []float64{100, 80, 100}
	lap.DataBraking = []float64{0, 20, 0}
	lap.DataCoasting = []int{0, 0, 0}
	lap.DataTime = []float64{0, 1.0 / 60, 2.0 / 60}
	lap.PositionX = []float64{1, 2, 3}
	lap.PositionZ = []float64{-1, -2, -3}
	lap.FuelAtStart = 80
	lap.FuelAtEnd = 78
	lap.FuelConsumed = 2
	lap.CarID = 1448
	return lap
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	laps := []*model.Lap{sampleLap(1, 91000), sampleLap(2, 90500)}

	path, err := SaveLaps(dir, laps)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path) || filepath.Dir(path) == dir)

	loaded, err := LoadLaps(path)
	require.NoError(t, err)
	if diff := cmp.Diff(laps, loaded); diff != "" {
		t.Errorf("lap round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLapsEmpty(t *testing.T) {
	_, err := SaveLaps(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestLoadLapsMissingFile(t *testing.T) {
	_, err := LoadLaps(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestListLapFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "2025-01-01_10_00_00_CAR-ID-1.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "2025-02-01_10_00_00_CAR-ID-1.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	files, err := ListLapFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2, "only json files are lap files")
	assert.Contains(t, files[0].Name, "2025-02-01", "most recent first")
	assert.Equal(t, int64(2), files[0].Size)
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2 KB"},
		{5 * 1024 * 1024, "5 MB"},
	}
	for _, test := range tests {
		f := LapFile{Size: test.size}
		assert.Equal(t, test.want, f.HumanReadableSize(0))
	}
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "Mazda_RX-7_Spirit_R", safeFilename("Mazda RX-7 Spirit R"))
	assert.Equal(t, "weird", safeFilename("w/e*i?r\\d"))
}
