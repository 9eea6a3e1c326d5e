package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkhq/inkd/internal/command"
)

// Represents the 'inkd send' command.
type SendCmd struct {
	DialFlags `embed:""`

	Sync     bool     `short:"s" help:"Wait until the daemon has applied every command."`
	Commands []string `arg:"" name:"command" help:"Commands as JSON, one per argument, e.g. '\"Clear\"' or '{\"WriteAll\":false}'."`
}

// Executes the send command.
//
// Every argument is decoded before connecting, so nothing is sent when any
// of them is invalid.
func (c *SendCmd) Run(ctx context.Context) error {
	cmds := make([]command.Command, 0, len(c.Commands))
	for i, arg := range c.Commands {
		cmd, err := command.Decode([]byte(arg))
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}

	cl, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer cl.Close()

	if err := cl.Send(cmds, c.Sync); err != nil {
		return err
	}

	slog.Debug("commands sent", "count", len(cmds), "sync", c.Sync)
	return nil
}
