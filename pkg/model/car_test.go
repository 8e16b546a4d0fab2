package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
)

func TestCarNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	csv := "1448,Mazda RX-7 Spirit R\n2058,Suzuki Swift Sport\nbogus,ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	require.NoError(t, model.LoadCarNames(path))
	assert.Equal(t, "Mazda RX-7 Spirit R", model.CarName(1448))
	assert.Equal(t, "Suzuki Swift Sport", model.CarName(2058))
	assert.Equal(t, "CAR-ID-9999", model.CarName(9999))
}

func TestCarNamesMissingFile(t *testing.T) {
	require.NoError(t, model.LoadCarNames(filepath.Join(t.TempDir(), "none.csv")))
	assert.Equal(t, "CAR-ID-1", model.CarName(1))
}

func TestCornerSetMax(t *testing.T) {
	set := model.CornerSet{FrontLeft: 61, FrontRight: 72, RearLeft: 99.5, RearRight: 80}
	assert.InDelta(t, 99.5, set.Max(), 1e-9)
}
