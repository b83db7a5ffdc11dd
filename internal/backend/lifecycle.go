package backend

import (
	"sync"
	"sync/atomic"

	"github.com/oshokin/aigc-client/internal/model"
)

// Lifecycle guards a backend against use after shutdown.
// The zero value is an open backend.
type Lifecycle struct {
	once   sync.Once
	closed atomic.Bool
	err    error
}

// Check fails with a transport error wrapping model.ErrShutdown once Shutdown has run.
func (l *Lifecycle) Check(op string, req model.Request) error {
	if l.closed.Load() {
		return model.NewTransportError(op, req, model.ErrShutdown)
	}

	return nil
}

// Shutdown marks the backend closed and runs release exactly once.
// Later calls return the first result.
func (l *Lifecycle) Shutdown(release func() error) error {
	l.once.Do(func() {
		l.closed.Store(true)

		if release != nil {
			l.err = release()
		}
	})

	return l.err
}

// IsShutdown reports whether Shutdown has run.
func (l *Lifecycle) IsShutdown() bool {
	return l.closed.Load()
}
