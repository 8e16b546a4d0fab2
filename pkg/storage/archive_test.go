package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluess57/gt7core/pkg/model"
)

func testArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "laps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchiveRoundTrip(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	laps := []*model.Lap{sampleLap(1, 91000), sampleLap(2, 90500)}
	id, err := a.StoreSession(ctx, laps)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	loaded, err := a.LoadSession(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(laps, loaded); diff != "" {
		t.Errorf("archived laps mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveStoreEmptySession(t *testing.T) {
	a := testArchive(t)
	_, err := a.StoreSession(context.Background(), nil)
	assert.Error(t, err)
}

func TestArchiveUnknownSession(t *testing.T) {
	a := testArchive(t)
	_, err := a.LoadSession(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestArchiveListSessions(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	first, err := a.StoreSession(ctx, []*model.Lap{sampleLap(1, 91000)})
	require.NoError(t, err)
	second, err := a.StoreSession(ctx, []*model.Lap{
		sampleLap(1, 92000), sampleLap(2, 91500),
	})
	require.NoError(t, err)

	sessions, err := a.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	byID := map[uuid.UUID]ArchivedSession{}
	for _, s := range sessions {
		byID[s.ID] = s
	}
	assert.Equal(t, 1, byID[first].LapCount)
	assert.Equal(t, 2, byID[second].LapCount)
	assert.Equal(t, 1448, byID[first].CarID)
}

func TestArchiveMigrations(t *testing.T) {
	a := testArchive(t)

	version, dirty, err := a.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	// up is idempotent
	require.NoError(t, a.MigrateUp())

	require.NoError(t, a.MigrateDown())
	version, _, err = a.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
