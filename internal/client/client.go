package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/inkhq/inkd/internal/command"
)

const (

	// Connection attempts made after the first one fails.
	DefaultRetries = 20

	// Wait between connection attempts.
	DefaultInterval = time.Second
)

// Holds dial configuration.
type Config struct {
	Retries  uint64        // Attempts after the first. Zero tries once.
	Interval time.Duration // Wait between attempts.
	Timeout  time.Duration // Longest wait for a Sync reply. Zero waits forever.
}

// Configures [Dial].
type Option func(*Config)

// Sets how many times a failed connection is retried.
func WithRetries(n uint64) Option {
	return func(c *Config) {
		c.Retries = n
	}
}

// Sets the wait between connection attempts.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// Sets the longest wait for a Sync reply.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// A connection to the daemon.
//
// Not safe for concurrent use.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	timeout time.Duration
}

// Connects to the daemon at addr, retrying while it is unreachable.
//
// Returns an error wrapping [ErrNoDaemon] once every attempt has failed or
// ctx is done.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	cfg := Config{
		Retries:  DefaultRetries,
		Interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var dialer net.Dialer
	var conn net.Conn

	operation := func() error {
		c, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	notify := func(err error, wait time.Duration) {
		slog.Debug("daemon not reachable, retrying", "address", addr, "wait", wait, "error", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Interval), cfg.Retries),
		ctx,
	)

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrNoDaemon, addr, err)
	}

	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
		timeout: cfg.Timeout,
	}, nil
}

// Writes the commands in order, one per line.
//
// When sync is set a "Sync" is appended and Send returns only after the
// daemon has replied, that is after every command has been applied. Without
// sync, Send returns as soon as the lines are written.
func (c *Client) Send(cmds []command.Command, sync bool) error {
	for _, cmd := range cmds {
		if err := c.write(cmd); err != nil {
			return err
		}
	}

	if sync {
		return c.Sync()
	}

	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrClient, err)
	}
	return nil
}

// Sends "Sync" and waits for the daemon's reply.
func (c *Client) Sync() error {
	if err := c.write(command.Sync{}); err != nil {
		return err
	}
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrClient, err)
	}

	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return fmt.Errorf("%w: %w", ErrClient, err)
		}
		defer c.conn.SetReadDeadline(time.Time{})
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("%w: waiting for sync reply: %w", ErrClient, err)
	}
	if line != "\n" {
		return fmt.Errorf("%w: unexpected reply %q", ErrClient, line)
	}
	return nil
}

// Asks the daemon to stop once this connection ends, then closes it.
func (c *Client) Quit() error {
	err := c.Send([]command.Command{command.QuitWhenDone{}}, false)
	return errors.Join(err, c.Close())
}

// Closes the connection.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClient, err)
	}
	return nil
}

func (c *Client) write(cmd command.Command) error {
	line, err := command.Encode(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClient, err)
	}
	if _, err := c.writer.Write(line); err != nil {
		return fmt.Errorf("%w: %w", ErrClient, err)
	}
	if err := c.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: %w", ErrClient, err)
	}
	return nil
}
