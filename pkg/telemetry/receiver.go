package telemetry

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bluess57/gt7core/log"
	"github.com/bluess57/gt7core/pkg/codec"
	"github.com/bluess57/gt7core/pkg/model"
	"github.com/bluess57/gt7core/pkg/session"
	"github.com/bluess57/gt7core/pkg/utils/notify"
)

const (
	DefaultReceivePort   = 33740
	DefaultHeartbeatPort = 33739

	readTimeout       = 10 * time.Second
	livenessWindow    = 1 * time.Second
	heartbeatInterval = 100 // accepted packets between keep-alives

	broadcastAddr = "255.255.255.255"
)

var heartbeatPayload = []byte("A")

// State describes where the receiver currently is in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateBinding
	StateListening
	StateBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Receiver binds the telemetry port, keeps the console sending via
// heartbeats and feeds decoded samples into the lap accumulator and the
// session. Listener callbacks run on the receive goroutine, outside any
// internal lock.
type Receiver struct {
	playstationAddr string
	receivePort     int
	heartbeatPort   int

	accumulator *LapAccumulator
	sess        *session.Session
	policy      *reconnectPolicy

	onLap       *notify.Registry[*model.Lap]
	onSample    *notify.Registry[*model.TelemetrySample]
	onConnected *notify.Registry[struct{}]
	onHeartbeat *notify.Registry[struct{}]

	mu            sync.Mutex
	state         State
	conn          *net.UDPConn
	lastPacket    time.Time
	lastPackageID int32
	accepted      uint64
	dropped       uint64

	done chan struct{}
	stop sync.Once

	l *log.Logger
}

type ReceiverOption func(r *Receiver)

// WithPlayStationAddr sets the console address heartbeats are sent to.
func WithPlayStationAddr(addr string) ReceiverOption {
	return func(r *Receiver) {
		r.playstationAddr = addr
	}
}

func WithReceivePort(port int) ReceiverOption {
	return func(r *Receiver) {
		r.receivePort = port
	}
}

func WithHeartbeatPort(port int) ReceiverOption {
	return func(r *Receiver) {
		r.heartbeatPort = port
	}
}

func WithSession(s *session.Session) ReceiverOption {
	return func(r *Receiver) {
		r.sess = s
	}
}

func WithAccumulator(a *LapAccumulator) ReceiverOption {
	return func(r *Receiver) {
		r.accumulator = a
	}
}

func NewReceiver(playstationAddr string, opts ...ReceiverOption) *Receiver {
	r := &Receiver{
		playstationAddr: playstationAddr,
		receivePort:     DefaultReceivePort,
		heartbeatPort:   DefaultHeartbeatPort,
		accumulator:     NewLapAccumulator(),
		sess:            session.New(),
		policy:          newReconnectPolicy(),
		onLap:           notify.NewRegistry[*model.Lap]("lapFinished"),
		onSample:        notify.NewRegistry[*model.TelemetrySample]("sample"),
		onConnected:     notify.NewRegistry[struct{}]("connected"),
		onHeartbeat:     notify.NewRegistry[struct{}]("heartbeat"),
		state:           StateIdle,
		lastPackageID:   -1,
		done:            make(chan struct{}),
		l:               log.Default().Named("telemetry.receiver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnLapFinished registers a listener for finalized laps. Each listener
// run receives a copy, the session's record cannot be touched through it.
func (r *Receiver) OnLapFinished(fn func(*model.Lap)) {
	r.onLap.Register(fn)
}

// OnSample registers a listener for every accepted and decoded sample.
func (r *Receiver) OnSample(fn func(*model.TelemetrySample)) {
	r.onSample.Register(fn)
}

// OnConnected registers a listener fired on the first accepted packet
// after a bind or a reconnect.
func (r *Receiver) OnConnected(fn func(struct{})) {
	r.onConnected.Register(fn)
}

// OnHeartbeat registers a listener fired after each keep-alive sent to
// the console.
func (r *Receiver) OnHeartbeat(fn func(struct{})) {
	r.onHeartbeat.Register(fn)
}

func (r *Receiver) Session() *session.Session {
	return r.sess
}

// Reset drops the in-flight lap, all session state and the package id
// watermark, as if recording had just started.
func (r *Receiver) Reset() {
	r.accumulator.Reset()
	r.sess.Reset()
	r.mu.Lock()
	r.lastPackageID = -1
	r.mu.Unlock()
}

func (r *Receiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsConnected reports whether a packet was accepted within the last
// second.
func (r *Receiver) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateListening &&
		time.Since(r.lastPacket) < livenessWindow
}

// Stats returns the accepted and dropped packet counters.
func (r *Receiver) Stats() (accepted, dropped uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accepted, r.dropped
}

// Run binds the receive socket and processes datagrams until the context
// is canceled or Stop is called. Bind failures are retried with an
// increasing delay; after repeated failures the error is returned.
func (r *Receiver) Run(ctx context.Context) error {
	defer r.setState(StateStopped)
	for {
		r.setState(StateBinding)
		conn, err := r.bind(ctx)
		if err != nil {
			delay, permanent := r.policy.Failure()
			if permanent {
				return fmt.Errorf("bind port %d: %w", r.receivePort, err)
			}
			r.l.Warn("bind failed, retrying",
				log.ErrorField(err),
				log.Duration("delay", delay))
			r.setState(StateBackoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.done:
				return nil
			case <-time.After(delay):
				continue
			}
		}
		r.policy.Reset()

		err = r.listen(ctx, conn)
		_ = conn.Close()
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.done:
			return nil
		default:
			// socket error while listening, rebind
		}
	}
}

// Stop terminates the receive loop. Safe to call more than once.
func (r *Receiver) Stop() {
	r.stop.Do(func() {
		close(r.done)
		r.mu.Lock()
		conn := r.conn
		r.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
	})
}

// bind opens the receive socket. SO_REUSEADDR is always set so a
// restart does not trip over a lingering socket; SO_BROADCAST is set
// when heartbeats go to the broadcast address, the kernel rejects the
// send otherwise.
func (r *Receiver) bind(ctx context.Context) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var optErr error
			err := c.Control(func(fd uintptr) {
				optErr = unix.SetsockoptInt(int(fd),
					unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if optErr == nil && r.playstationAddr == broadcastAddr {
					optErr = unix.SetsockoptInt(int(fd),
						unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
				}
			})
			if err != nil {
				return err
			}
			return optErr
		},
	}
	pc, err := lc.ListenPacket(ctx, "udp4",
		fmt.Sprintf("0.0.0.0:%d", r.receivePort))
	if err != nil {
		return nil, err
	}
	conn := pc.(*net.UDPConn)
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	return conn, nil
}

//nolint:funlen // receive loop, kept linear for readability
func (r *Receiver) listen(ctx context.Context, conn *net.UDPConn) error {
	r.setState(StateListening)
	r.sendHeartbeat(conn)

	buf := make([]byte, codec.PacketSize)
	sinceHeartbeat := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.done:
			return nil
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return nil
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				// console went quiet, nudge it and forget the last
				// package id so a restarted stream is not rejected
				r.l.Debug("receive timeout, sending heartbeat")
				r.mu.Lock()
				r.lastPackageID = -1
				r.mu.Unlock()
				r.sendHeartbeat(conn)
				continue
			}
			select {
			case <-r.done:
				return nil
			default:
			}
			r.l.Warn("receive failed", log.ErrorField(err))
			return nil // caller rebinds
		}

		sample, err := r.decode(buf[:n])
		if err != nil {
			r.mu.Lock()
			r.dropped++
			r.mu.Unlock()
			continue
		}
		if sample == nil {
			continue // stale or duplicate package id
		}

		r.dispatch(sample)

		sinceHeartbeat++
		if sinceHeartbeat >= heartbeatInterval {
			sinceHeartbeat = 0
			r.sendHeartbeat(conn)
		}
	}
}

// decode validates, decrypts and deduplicates one datagram. A nil sample
// with nil error means the packet was valid but stale.
func (r *Receiver) decode(raw []byte) (*model.TelemetrySample, error) {
	sample, err := codec.Decode(raw)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.lastPackageID >= 0 && sample.PackageID <= r.lastPackageID {
		r.mu.Unlock()
		return nil, nil
	}
	first := r.lastPacket.IsZero() ||
		time.Since(r.lastPacket) >= livenessWindow
	r.lastPackageID = sample.PackageID
	r.lastPacket = time.Now()
	r.accepted++
	r.mu.Unlock()

	if first {
		r.onConnected.Notify(struct{}{})
	}
	return sample, nil
}

func (r *Receiver) dispatch(sample *model.TelemetrySample) {
	// extrema track on-track driving only, menus and pauses are noise
	if (sample.InRace || r.accumulator.AlwaysRecord()) && !sample.IsPaused {
		r.sess.ObserveSample(sample.CarSpeed, sample.RideHeight)
	}
	if sample.BestLap > 0 {
		r.sess.SetBestLap(int64(sample.BestLap))
	}
	r.onSample.Notify(sample)

	if lap := r.accumulator.ProcessSample(sample); lap != nil {
		r.sess.AddLap(lap)
		// listeners get a copy so the stored lap stays untouched
		r.onLap.Notify(lap.Copy())
	}
}

func (r *Receiver) sendHeartbeat(conn *net.UDPConn) {
	addr := net.UDPAddr{
		IP:   net.ParseIP(r.playstationAddr),
		Port: r.heartbeatPort,
	}
	if addr.IP == nil {
		r.l.Warn("invalid console address",
			log.String("addr", r.playstationAddr))
		return
	}
	if _, err := conn.WriteToUDP(heartbeatPayload, &addr); err != nil {
		r.l.Debug("heartbeat failed", log.ErrorField(err))
		return
	}
	r.onHeartbeat.Notify(struct{}{})
}

func (r *Receiver) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
