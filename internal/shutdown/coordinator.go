package shutdown

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrNotShuttingDown = errors.New("shutdown not requested")

// Lifecycle state of the daemon.
type State int

const (
	Running State = iota
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Configures a [Coordinator].
type Option func(*Coordinator)

// Sets the handler used to change signal dispositions. The default changes
// the dispositions of the current process.
func WithSignalHandler(h SignalHandler) Option {
	return func(c *Coordinator) {
		c.signals = h
	}
}

// Tracks the shutdown state and the matching signal disposition.
//
// Safe for concurrent use.
type Coordinator struct {
	mu          sync.Mutex
	state       State
	disposition Disposition
	signals     SignalHandler
}

// Creates a coordinator in the Running state. Signal dispositions are left
// untouched until shutdown is requested.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{signals: processSignals{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Moves from Running to ShuttingDown and starts ignoring termination signals.
//
// Returns true if this call made the transition. Calls made in any other state
// change nothing and return false.
func (c *Coordinator) RequestShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		slog.Debug("shutdown already requested", "state", c.state.String())
		return false
	}

	c.state = ShuttingDown
	c.disposition = Ignore
	c.signals.Apply(Ignore, TerminationSignals...)

	slog.Info("shutdown requested")
	return true
}

// Returns true once shutdown has been requested.
func (c *Coordinator) IsShuttingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != Running
}

// Moves from ShuttingDown to Stopped.
//
// Termination signals stay ignored. Returns [ErrNotShuttingDown] unless
// shutdown was requested first; stopping twice is not an error.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Running:
		return ErrNotShuttingDown
	case ShuttingDown:
		c.state = Stopped
	}
	return nil
}

// Returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Returns true if termination signals are being ignored.
func (c *Coordinator) SignalsSuppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposition == Ignore
}
