package cli

import (
	"context"
	"log/slog"
)

// Represents the 'inkd quit' command.
type QuitCmd struct {
	DialFlags `embed:""`
}

// Executes the quit command.
//
// The daemon finishes this connection and stops before accepting another.
func (c *QuitCmd) Run(ctx context.Context) error {
	cl, err := c.dial(ctx)
	if err != nil {
		return err
	}

	if err := cl.Quit(); err != nil {
		return err
	}

	slog.Info("shutdown requested", "address", c.Addr)
	return nil
}
