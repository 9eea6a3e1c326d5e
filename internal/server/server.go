package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/inkhq/inkd/internal/dispatch"
	"github.com/inkhq/inkd/internal/metrics"
	"github.com/inkhq/inkd/internal/paths"
	"github.com/inkhq/inkd/internal/shutdown"
	"github.com/inkhq/inkd/internal/surface"
)

const (

	// Default TCP address the daemon listens on.
	DefaultAddress = "localhost:6029"

	// Default limit on the length of one line, newline included.
	DefaultMaxLineSize = 1 << 20

	// Bounds of the wait after a failed Accept before trying again.
	acceptRetryMin = 5 * time.Millisecond
	acceptRetryMax = time.Second
)

// Holds server configuration.
type Config struct {
	Address     string                // TCP address to listen on. Empty uses [DefaultAddress].
	Device      surface.Device        // Display each connection draws on. Required.
	Coordinator *shutdown.Coordinator // Shutdown state. Nil creates one acting on the process's signals.
	Metrics     *metrics.Metrics      // Collectors. Nil registers them with a private registry.
	Dispatcher  *dispatch.Dispatcher  // Command dispatcher. Nil creates one bound to the coordinator.
	ReadTimeout time.Duration         // Longest wait for the next line. Zero waits forever.
	MaxLineSize int                   // Longest accepted line in bytes. Zero uses [DefaultMaxLineSize].
	PIDFile     string                // Path of the PID file. Empty uses [paths.PIDFile].
}

// Serves one connection at a time, applying its commands to the display.
//
// Connections are accepted and drained in turn, so at most one surface is
// being drawn on at any moment. Between connections the server checks the
// shutdown coordinator and stops once shutdown has been requested.
type Server struct {
	address     string
	device      surface.Device
	coordinator *shutdown.Coordinator
	dispatcher  *dispatch.Dispatcher
	metrics     *metrics.Metrics
	readTimeout time.Duration
	maxLine     int
	pidFile     string

	listener  net.Listener  // Listener for incoming connections.
	startedAt time.Time     // Timestamp when the server started.
	sessions  int           // Number of connections served.
	stopping  atomic.Bool   // Set by Stop before the listener is closed.
	stop      chan struct{} // Closed by Stop; interrupts accept retries.
	stopOnce  sync.Once     // Guards closing stop.
	done      chan struct{} // Closed when the accept loop has returned.
	mu        sync.Mutex    // Protects sessions.
}

// Creates a new server instance.
//
// The socket is not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	if cfg.Device == nil {
		return nil, fmt.Errorf("%w: no rendering device configured", ErrServer)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultAddress
	}

	coordinator := cfg.Coordinator
	if coordinator == nil {
		coordinator = shutdown.New()
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = dispatch.New(coordinator)
	}

	maxLine := cfg.MaxLineSize
	if maxLine == 0 {
		maxLine = DefaultMaxLineSize
	}
	if maxLine < 0 {
		return nil, fmt.Errorf("%w: invalid maximum line size %d", ErrServer, maxLine)
	}

	pidFile := cfg.PIDFile
	if pidFile == "" {
		pidFile = paths.PIDFile()
	}

	return &Server{
		address:     address,
		device:      cfg.Device,
		coordinator: coordinator,
		dispatcher:  dispatcher,
		metrics:     m,
		readTimeout: cfg.ReadTimeout,
		maxLine:     maxLine,
		pidFile:     pidFile,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}, nil
}

// Opens the TCP socket and begins accepting connections.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, s.address, err)
	}

	s.listener = listener
	s.startedAt = time.Now()

	if err := writePID(s.pidFile); err != nil {
		slog.Warn("failed to write PID file", "path", s.pidFile, "error", err)
	}

	slog.Info("server listening", "address", listener.Addr().String())

	go s.accept()
	return nil
}

// Returns the address the server is listening on, or nil before
// [Server.Start].
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Returns the shutdown coordinator the server polls.
func (s *Server) Coordinator() *shutdown.Coordinator {
	return s.coordinator
}

// Closes the listener so that no further connections are accepted.
//
// A connection being served is not interrupted; [Server.Done] is closed once
// it ends.
func (s *Server) Stop() error {
	s.stopping.Store(true)
	s.stopOnce.Do(func() { close(s.stop) })

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("%w: %w", ErrServer, err)
		}
	}
	return nil
}

// Returns a channel that is closed when the server has stopped.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Accepts and serves connections one at a time until shutdown is requested
// or the server is stopped.
//
// Failed accepts are retried after an exponentially growing wait, so a
// persistent error such as running out of file descriptors does not spin.
func (s *Server) accept() {
	defer s.finish()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = acceptRetryMin
	retry.MaxInterval = acceptRetryMax
	retry.MaxElapsedTime = 0
	retry.Reset()

	for !s.coordinator.IsShuttingDown() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping.Load() || errors.Is(err, net.ErrClosed) {
				return
			}

			wait := retry.NextBackOff()
			slog.Error("accept error", "error", err, "retry", wait)

			select {
			case <-time.After(wait):
			case <-s.stop:
				return
			}
			continue
		}
		retry.Reset()

		s.mu.Lock()
		s.sessions++
		s.mu.Unlock()

		s.serve(conn)
	}
}

// Releases the listener and PID file once the accept loop has ended.
func (s *Server) finish() {
	s.listener.Close()

	if s.coordinator.IsShuttingDown() {
		if err := s.coordinator.Stop(); err != nil {
			slog.Error("failed to stop coordinator", "error", err)
		}
	}

	if err := os.Remove(s.pidFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove PID file", "path", s.pidFile, "error", err)
	}

	s.mu.Lock()
	sessions := s.sessions
	s.mu.Unlock()

	slog.Info("server stopped",
		"state", s.coordinator.State().String(),
		"uptime", time.Since(s.startedAt).Truncate(time.Second).String(),
		"sessions", sessions,
	)
	close(s.done)
}

// Writes the daemon PID so that scripts can find and signal the process.
func writePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}
