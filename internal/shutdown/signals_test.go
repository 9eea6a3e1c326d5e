package shutdown

import (
	"os"
	"os/signal"
	"testing"
)

func TestProcessSignals(t *testing.T) {
	h := processSignals{}
	t.Cleanup(func() { h.Apply(Default, os.Interrupt) })

	h.Apply(Ignore, os.Interrupt)
	if !signal.Ignored(os.Interrupt) {
		t.Fatal("interrupt not ignored after Apply(Ignore)")
	}
}
