package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// What the process does when it receives a termination signal.
type Disposition int

const (
	Default Disposition = iota // The runtime's default action, which terminates the process.
	Ignore                     // The signal is discarded.
)

// Signals whose disposition follows the coordinator's state.
var TerminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Applies a disposition to a set of signals.
type SignalHandler interface {
	Apply(d Disposition, sigs ...os.Signal)
}

// Applies dispositions to the process through os/signal.
type processSignals struct{}

func (processSignals) Apply(d Disposition, sigs ...os.Signal) {
	switch d {
	case Ignore:
		signal.Ignore(sigs...)
	default:
		signal.Reset(sigs...)
	}
}

func (d Disposition) String() string {
	switch d {
	case Ignore:
		return "ignore"
	default:
		return "default"
	}
}
