package cli

import (
	"context"
	"time"

	"github.com/inkhq/inkd/internal/client"
)

// Flags shared by the commands that talk to a running daemon.
type DialFlags struct {
	Addr          string        `short:"a" env:"INKD_ADDR" default:"${default_addr}" help:"TCP address of the daemon." placeholder:"HOST:PORT"`
	Retries       uint64        `env:"INKD_RETRIES" default:"20" help:"Connection attempts after the first one fails."`
	RetryInterval time.Duration `env:"INKD_RETRY_INTERVAL" default:"1s" help:"Wait between connection attempts."`
}

// Connects to the daemon.
func (f *DialFlags) dial(ctx context.Context) (*client.Client, error) {
	return client.Dial(ctx, f.Addr,
		client.WithRetries(f.Retries),
		client.WithInterval(f.RetryInterval),
	)
}
