package session

import (
	"sync"

	"github.com/bluess57/gt7core/log"
	"github.com/bluess57/gt7core/pkg/model"
	"github.com/bluess57/gt7core/pkg/utils/notify"
)

// PlacementPolicy controls where externally loaded laps are placed
// relative to laps already in the session.
type PlacementPolicy int

const (
	// PolicyReplace discards the current laps before loading.
	PolicyReplace PlacementPolicy = iota
	// PolicyMerge keeps the current laps in front of the loaded ones.
	PolicyMerge
)

const initialMinBodyHeight = 1000000 // counted down on every observed tick

// Session owns the finalized laps of one recording session together with
// the running extrema. The lap list is ordered most recent first. Only
// finalized laps enter the session; in-flight lap data never does.
type Session struct {
	mu            sync.Mutex
	laps          []*model.Lap
	bestLap       int64 // ms, -1 when unknown
	maxSpeed      float64
	minBodyHeight float64

	onAdd   *notify.Registry[*model.Lap]
	onLoad  *notify.Registry[[]*model.Lap]
	onReset *notify.Registry[struct{}]
	l       *log.Logger
}

func New() *Session {
	return &Session{
		bestLap:       -1,
		minBodyHeight: initialMinBodyHeight,
		onAdd:         notify.NewRegistry[*model.Lap]("session.lapAdded"),
		onLoad:        notify.NewRegistry[[]*model.Lap]("session.lapsLoaded"),
		onReset:       notify.NewRegistry[struct{}]("session.reset"),
		l:             log.Default().Named("session"),
	}
}

// OnLapAdded registers a listener invoked once per lap added via AddLap.
func (s *Session) OnLapAdded(fn func(*model.Lap)) {
	s.onAdd.Register(fn)
}

// OnLapsLoaded registers a listener invoked after LoadLaps.
func (s *Session) OnLapsLoaded(fn func([]*model.Lap)) {
	s.onLoad.Register(fn)
}

// OnReset registers a listener invoked after Reset cleared the session.
func (s *Session) OnReset(fn func(struct{})) {
	s.onReset.Register(fn)
}

// AddLap prepends a finalized lap. Listeners run after the lock is
// released so a listener may call back into the session.
func (s *Session) AddLap(lap *model.Lap) {
	s.mu.Lock()
	s.laps = append([]*model.Lap{lap}, s.laps...)
	s.mu.Unlock()

	s.l.Debug("lap added",
		log.Int("number", lap.Number),
		log.String("title", lap.Title))
	s.onAdd.Notify(lap)
}

// Laps returns a snapshot copy of the lap list, most recent first.
// Analytics work on the snapshot so the receiver is never blocked by
// expensive interpolation work.
func (s *Session) Laps() []*model.Lap {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]*model.Lap, len(s.laps))
	copy(ret, s.laps)
	return ret
}

// DeleteLap removes the first lap with the given ordinal number.
// Remaining laps keep their numbers.
func (s *Session) DeleteLap(number int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, lap := range s.laps {
		if lap.Number == number {
			s.laps = append(s.laps[:i], s.laps[i+1:]...)
			return true
		}
	}
	return false
}

// LoadLaps places externally loaded laps into the session according to
// the placement policy and notifies the load listeners.
func (s *Session) LoadLaps(laps []*model.Lap, policy PlacementPolicy) {
	s.mu.Lock()
	switch policy {
	case PolicyReplace:
		s.laps = append([]*model.Lap{}, laps...)
	case PolicyMerge:
		s.laps = append(append([]*model.Lap{}, s.laps...), laps...)
	}
	snapshot := make([]*model.Lap, len(s.laps))
	copy(snapshot, s.laps)
	s.mu.Unlock()

	s.l.Info("laps loaded",
		log.Int("count", len(laps)),
		log.Int("total", len(snapshot)))
	s.onLoad.Notify(snapshot)
}

// ObserveSample folds per-tick extrema into the session.
func (s *Session) ObserveSample(speed, rideHeight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed > s.maxSpeed {
		s.maxSpeed = speed
	}
	if rideHeight < s.minBodyHeight {
		s.minBodyHeight = rideHeight
	}
}

func (s *Session) SetBestLap(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bestLap = ms
}

func (s *Session) BestLap() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestLap
}

func (s *Session) MaxSpeed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSpeed
}

func (s *Session) MinBodyHeight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minBodyHeight
}

// Reset drops all laps, restores the initial extrema and notifies the
// reset listeners after the lock is released.
func (s *Session) Reset() {
	s.mu.Lock()
	s.laps = nil
	s.bestLap = -1
	s.maxSpeed = 0
	s.minBodyHeight = initialMinBodyHeight
	s.mu.Unlock()

	s.l.Info("session reset")
	s.onReset.Notify(struct{}{})
}
