package notify

import (
	"sync"

	"github.com/bluess57/gt7core/log"
)

// Registry fans an event out to registered listeners. Listeners are
// invoked synchronously in registration order; a panicking listener is
// logged and must not prevent the remaining listeners from running.
// Callers are expected to notify after releasing their own locks.
type Registry[T any] struct {
	mu        sync.Mutex
	name      string
	listeners []func(T)
	l         *log.Logger
}

func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{
		name: name,
		l:    log.Default().Named("notify"),
	}
}

// Register adds a listener. There is no way to remove a listener; the
// registries live as long as their owning component.
func (r *Registry[T]) Register(fn func(T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Notify delivers arg to every listener.
func (r *Registry[T]) Notify(arg T) {
	r.mu.Lock()
	listeners := make([]func(T), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for i, fn := range listeners {
		r.safeCall(i, fn, arg)
	}
}

func (r *Registry[T]) safeCall(idx int, fn func(T), arg T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.l.Error("listener panicked",
				log.String("registry", r.name),
				log.Int("listener", idx),
				log.Any("panic", rec))
		}
	}()
	fn(arg)
}
