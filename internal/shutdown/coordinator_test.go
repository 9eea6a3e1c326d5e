package shutdown

import (
	"errors"
	"os"
	"sync"
	"testing"
)

type recordedCall struct {
	d    Disposition
	sigs []os.Signal
}

type fakeSignals struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeSignals) Apply(d Disposition, sigs ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{d: d, sigs: sigs})
}

func (f *fakeSignals) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNewIsRunning(t *testing.T) {
	sig := &fakeSignals{}
	c := New(WithSignalHandler(sig))

	if c.State() != Running {
		t.Fatalf("state = %v, want %v", c.State(), Running)
	}
	if c.IsShuttingDown() {
		t.Fatal("IsShuttingDown = true for a new coordinator")
	}
	if c.SignalsSuppressed() {
		t.Fatal("signals suppressed before shutdown")
	}
	if sig.count() != 0 {
		t.Fatalf("signal dispositions changed %d times while running", sig.count())
	}
}

func TestRequestShutdown(t *testing.T) {
	sig := &fakeSignals{}
	c := New(WithSignalHandler(sig))

	if !c.RequestShutdown() {
		t.Fatal("first RequestShutdown = false, want true")
	}
	if c.State() != ShuttingDown {
		t.Fatalf("state = %v, want %v", c.State(), ShuttingDown)
	}
	if !c.IsShuttingDown() || !c.SignalsSuppressed() {
		t.Fatal("shutdown not reflected in IsShuttingDown/SignalsSuppressed")
	}

	if sig.count() != 1 {
		t.Fatalf("signal handler called %d times, want 1", sig.count())
	}
	call := sig.calls[0]
	if call.d != Ignore {
		t.Fatalf("disposition = %v, want %v", call.d, Ignore)
	}
	if len(call.sigs) != len(TerminationSignals) {
		t.Fatalf("signals = %v, want %v", call.sigs, TerminationSignals)
	}
}

func TestRequestShutdownIdempotent(t *testing.T) {
	sig := &fakeSignals{}
	c := New(WithSignalHandler(sig))

	c.RequestShutdown()
	if c.RequestShutdown() {
		t.Fatal("second RequestShutdown = true, want false")
	}
	if c.State() != ShuttingDown {
		t.Fatalf("state = %v, want %v", c.State(), ShuttingDown)
	}
	if sig.count() != 1 {
		t.Fatalf("signal handler called %d times, want 1", sig.count())
	}
}

func TestRequestShutdownConcurrent(t *testing.T) {
	sig := &fakeSignals{}
	c := New(WithSignalHandler(sig))

	var wg sync.WaitGroup
	results := make(chan bool, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- c.RequestShutdown()
		}()
	}
	wg.Wait()
	close(results)

	transitions := 0
	for ok := range results {
		if ok {
			transitions++
		}
	}
	if transitions != 1 {
		t.Fatalf("%d calls made the transition, want 1", transitions)
	}
	if sig.count() != 1 {
		t.Fatalf("signal handler called %d times, want 1", sig.count())
	}
}

func TestStop(t *testing.T) {
	c := New(WithSignalHandler(&fakeSignals{}))

	if err := c.Stop(); !errors.Is(err, ErrNotShuttingDown) {
		t.Fatalf("Stop while running error = %v, want ErrNotShuttingDown", err)
	}

	c.RequestShutdown()
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c.State() != Stopped {
		t.Fatalf("state = %v, want %v", c.State(), Stopped)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	if c.RequestShutdown() {
		t.Fatal("RequestShutdown after Stop = true, want false")
	}
	if !c.SignalsSuppressed() {
		t.Fatal("signals restored after Stop")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Running:      "running",
		ShuttingDown: "shutting down",
		Stopped:      "stopped",
		State(9):     "State(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
