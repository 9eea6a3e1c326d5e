package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/inkhq/inkd/internal/command"
	"github.com/inkhq/inkd/internal/dispatch"
	"github.com/inkhq/inkd/internal/surface"
)

// One client connection and the surface it draws on.
type session struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	surface surface.Surface
	log     *slog.Logger
}

// Serves a connection until the client closes it or it fails.
//
// The connection gets a fresh surface from the device, which is closed when
// the connection ends.
func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	log := slog.With("session", uuid.NewString(), "remote", conn.RemoteAddr().String())

	surf, err := s.device.Open()
	if err != nil {
		log.Error("failed to open surface", "error", err)
		return
	}
	defer func() {
		if err := surf.Close(); err != nil {
			log.Warn("failed to close surface", "error", err)
		}
	}()

	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	sess := &session{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
		surface: surf,
		log:     log,
	}

	log.Info("connection opened")

	if err := s.run(sess); err != nil {
		log.Error("connection failed", "error", err)
		return
	}

	log.Info("connection closed")
}

// Reads, decodes and dispatches lines in order until end of stream.
//
// Each line is fully applied, including any acknowledgment, before the next
// is read. A final line without a trailing newline is applied too.
func (s *Server) run(sess *session) error {
	for {
		if s.readTimeout > 0 {
			if err := sess.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
				return fmt.Errorf("%w: %w", ErrConnection, err)
			}
		}

		line, overflow, err := readLine(sess.reader, s.maxLine)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}

		switch {
		case overflow > 0:
			s.metrics.DecodeFailed()
			sess.log.Warn("invalid command",
				"error", fmt.Errorf("%w: line of %d bytes exceeds the limit of %d", command.ErrDecode, overflow, s.maxLine),
			)
		case len(line) > 0:
			if herr := s.handle(sess, line); herr != nil {
				return herr
			}
		}

		if err != nil {
			return nil
		}
	}
}

// Reads up to and including the next newline.
//
// A line longer than limit bytes is consumed and discarded; its full length
// is returned as overflow instead, so memory stays bounded by limit.
func readLine(r *bufio.Reader, limit int) ([]byte, int, error) {
	var line []byte
	overflow := 0

	for {
		frag, err := r.ReadSlice('\n')

		switch {
		case overflow > 0:
			overflow += len(frag)
		case len(line)+len(frag) > limit:
			overflow = len(line) + len(frag)
			line = nil
		default:
			line = append(line, frag...)
		}

		if !errors.Is(err, bufio.ErrBufferFull) {
			return line, overflow, err
		}
	}
}

// Applies one line. Only failures that leave the connection unusable are
// returned; invalid and rejected commands are logged and skipped.
func (s *Server) handle(sess *session, line []byte) error {
	cmd, err := command.Decode(line)
	if err != nil {
		s.metrics.DecodeFailed()
		sess.log.Warn("invalid command",
			"line", string(bytes.TrimRight(line, "\r\n")),
			"error", err,
		)
		return nil
	}

	name := cmd.Name()
	sess.log.Debug("command received", "command", name)

	start := time.Now()
	err = s.dispatcher.Dispatch(context.Background(), sess.surface, sess, cmd)
	s.metrics.CommandDispatched(name, time.Since(start))

	switch {
	case err == nil:
		if _, ok := cmd.(command.Sync); ok {
			s.metrics.SyncAcknowledged()
		}
	case errors.Is(err, dispatch.ErrAcknowledge):
		return fmt.Errorf("%w: %w", ErrConnection, err)
	default:
		s.metrics.BackendFailed(name)
		sess.log.Warn("command failed", "command", name, "error", err)
	}
	return nil
}

// Writes an empty line and flushes it.
func (sess *session) Acknowledge() error {
	if err := sess.writer.WriteByte('\n'); err != nil {
		return err
	}
	return sess.writer.Flush()
}
