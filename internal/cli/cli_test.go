package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/inkhq/inkd/internal/command"
	"github.com/inkhq/inkd/internal/metrics"
	"github.com/inkhq/inkd/internal/server"
	"github.com/inkhq/inkd/internal/shutdown"
	"github.com/inkhq/inkd/internal/surface"
	"github.com/prometheus/client_golang/prometheus"
)

type nopSignals struct{}

func (nopSignals) Apply(shutdown.Disposition, ...os.Signal) {}

// Parses args into a copy of the root command and returns the copy.
func parse(t *testing.T, args ...string) (root struct {
	Quiet bool
	Serve ServeCmd
	Send  SendCmd
}) {
	t.Helper()

	cmd := RootCmd
	parser, err := kong.New(&cmd, vars())
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%q): %v", args, err)
	}

	root.Quiet = cmd.Quiet
	root.Serve = cmd.Serve
	root.Send = cmd.Send
	return root
}

func TestServeDefaults(t *testing.T) {
	root := parse(t, "serve")

	want := ServeCmd{
		Addr:   server.DefaultAddress,
		Device: "image",
		Width:  surface.DefaultWidth,
		Height: surface.DefaultHeight,
	}
	if diff := cmp.Diff(want, root.Serve); diff != "" {
		t.Fatalf("serve flags mismatch (-want +got):\n%s", diff)
	}
}

func TestServeFlags(t *testing.T) {
	root := parse(t, "-q", "serve",
		"--addr", "0.0.0.0:7000",
		"--device", "memory",
		"--read-timeout", "30s",
		"--metrics-addr", "localhost:9090",
	)

	if !root.Quiet {
		t.Fatal("quiet flag not set")
	}
	if root.Serve.Addr != "0.0.0.0:7000" {
		t.Fatalf("addr = %q, want %q", root.Serve.Addr, "0.0.0.0:7000")
	}
	if root.Serve.Device != "memory" {
		t.Fatalf("device = %q, want %q", root.Serve.Device, "memory")
	}
	if root.Serve.ReadTimeout != 30*time.Second {
		t.Fatalf("read timeout = %v, want 30s", root.Serve.ReadTimeout)
	}
	if root.Serve.MetricsAddr != "localhost:9090" {
		t.Fatalf("metrics addr = %q, want %q", root.Serve.MetricsAddr, "localhost:9090")
	}
}

func TestSendReadsEnvironment(t *testing.T) {
	t.Setenv("INKD_ADDR", "127.0.0.1:7001")
	t.Setenv("INKD_RETRIES", "3")

	root := parse(t, "send", "--sync", `"Clear"`, `{"WriteAll":true}`)

	if root.Send.Addr != "127.0.0.1:7001" || root.Send.Retries != 3 || root.Send.RetryInterval != time.Second {
		t.Fatalf("dial flags = %+v", root.Send.DialFlags)
	}
	if diff := cmp.Diff([]string{`"Clear"`, `{"WriteAll":true}`}, root.Send.Commands); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
	if !root.Send.Sync {
		t.Fatal("sync flag not set")
	}
}

func TestServeDevice(t *testing.T) {
	mem, err := (&ServeCmd{Device: "memory"}).device()
	if err != nil {
		t.Fatalf("memory device: %v", err)
	}
	if _, ok := mem.(*surface.Memory); !ok {
		t.Fatalf("device = %T, want *surface.Memory", mem)
	}

	out := filepath.Join(t.TempDir(), "frame.png")
	img, err := (&ServeCmd{Device: "image", Output: out, Width: 100, Height: 50}).device()
	if err != nil {
		t.Fatalf("image device: %v", err)
	}
	if got := img.(*surface.Image).Path(); got != out {
		t.Fatalf("path = %q, want %q", got, out)
	}
}

func TestSendRejectsInvalidArgumentBeforeDialing(t *testing.T) {
	cmd := &SendCmd{
		DialFlags: DialFlags{Addr: "127.0.0.1:1", Retries: 0},
		Commands:  []string{`"Clear"`, `"Frobnicate"`},
	}
	if err := cmd.Run(context.Background()); !errors.Is(err, command.ErrUnknownVariant) {
		t.Fatalf("error = %v, want ErrUnknownVariant", err)
	}
}

func TestSendAndQuit(t *testing.T) {
	dev := surface.NewMemory()
	srv, err := server.New(server.Config{
		Address:     "127.0.0.1:0",
		Device:      dev,
		Coordinator: shutdown.New(shutdown.WithSignalHandler(nopSignals{})),
		Metrics:     metrics.New(metrics.WithRegistry(prometheus.NewRegistry())),
		PIDFile:     filepath.Join(t.TempDir(), "inkd.pid"),
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	flags := DialFlags{Addr: srv.Addr().String(), RetryInterval: 10 * time.Millisecond}

	send := &SendCmd{
		DialFlags: flags,
		Sync:      true,
		Commands:  []string{`{"AddText":["hi",[4,8],16,"a"]}`, `{"WriteAll":false}`},
	}
	if err := send.Run(context.Background()); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := []surface.Frame{{Elements: []surface.Element{
		{Ident: "a", Text: "hi", X: 4, Y: 8, Size: 16},
	}}}
	if diff := cmp.Diff(want, dev.Frames()); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}

	quit := &QuitCmd{DialFlags: flags}
	if err := quit.Run(context.Background()); err != nil {
		t.Fatalf("quit: %v", err)
	}

	select {
	case <-srv.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after quit")
	}
}
