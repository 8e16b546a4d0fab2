package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bluess57/gt7core/pkg/model"
)

//go:embed migrations
var migrations embed.FS

// ErrSessionNotFound is returned when a session id has no stored laps.
var ErrSessionNotFound = errors.New("session not found")

// ArchivedSession is one stored recording session.
type ArchivedSession struct {
	ID        uuid.UUID
	CarID     int
	CreatedAt time.Time
	LapCount  int
}

// Archive stores finalized laps in a local sqlite database so recordings
// survive restarts.
type Archive struct {
	db          *sql.DB
	skipMigrate bool
}

type ArchiveOption func(a *Archive)

// WithoutAutoMigrate opens the archive without touching the schema. Used
// by the migrate command which manages the schema itself.
func WithoutAutoMigrate() ArchiveOption {
	return func(a *Archive) {
		a.skipMigrate = true
	}
}

// OpenArchive opens (or creates) the archive at path and brings the
// schema up to date.
func OpenArchive(path string, opts ...ArchiveOption) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	// sqlite handles no write concurrency; a single connection avoids
	// SQLITE_BUSY under concurrent inserts
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	for _, opt := range opts {
		opt(a)
	}
	if !a.skipMigrate {
		if err := a.MigrateUp(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// MigrateUp applies all pending schema migrations.
func (a *Archive) MigrateUp() error {
	m, err := a.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating archive up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (a *Archive) MigrateDown() error {
	m, err := a.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating archive down: %w", err)
	}
	return nil
}

// MigrateVersion reports the current schema version; 0 when no migration
// has been applied yet.
func (a *Archive) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := a.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (a *Archive) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(a.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}

// StoreSession writes all laps under a fresh session id and returns it.
func (a *Archive) StoreSession(ctx context.Context, laps []*model.Lap) (uuid.UUID, error) {
	id := uuid.New()
	if len(laps) == 0 {
		return uuid.Nil, fmt.Errorf("no laps to store")
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("starting archive transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, car_id, created_at) VALUES (?, ?, ?)`,
		id.String(), laps[0].CarID, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}

	for _, lap := range laps {
		document, err := json.Marshal(lap)
		if err != nil {
			return uuid.Nil, fmt.Errorf("encoding lap %d: %w", lap.Number, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO laps
			   (session_id, number, finish_time, lap_ticks, fuel_consumed,
			    is_replay, is_manual, document)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id.String(), lap.Number, lap.LapFinishTime, lap.LapTicks,
			lap.FuelConsumed, lap.IsReplay, lap.IsManual, string(document))
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting lap %d: %w", lap.Number, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("committing session: %w", err)
	}
	return id, nil
}

// LoadSession reads all laps of a stored session ordered by lap number.
func (a *Archive) LoadSession(ctx context.Context, id uuid.UUID) ([]*model.Lap, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT document FROM laps WHERE session_id = ? ORDER BY number`,
		id.String())
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	defer rows.Close()

	laps := []*model.Lap{}
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scanning lap row: %w", err)
		}
		lap := &model.Lap{}
		if err := json.Unmarshal([]byte(document), lap); err != nil {
			return nil, fmt.Errorf("decoding lap document: %w", err)
		}
		laps = append(laps, lap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}
	if len(laps) == 0 {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return laps, nil
}

// ListSessions returns all stored sessions, newest first.
func (a *Archive) ListSessions(ctx context.Context) ([]ArchivedSession, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT s.id, s.car_id, s.created_at, COUNT(l.id)
		   FROM sessions s
		   LEFT JOIN laps l ON l.session_id = s.id
		  GROUP BY s.id, s.car_id, s.created_at
		  ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ArchivedSession{}
	for rows.Next() {
		var (
			rawID string
			s     ArchivedSession
		)
		if err := rows.Scan(&rawID, &s.CarID, &s.CreatedAt, &s.LapCount); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		s.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parsing session id %q: %w", rawID, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
