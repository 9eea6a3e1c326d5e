package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkhq/inkd/internal"
	"github.com/inkhq/inkd/internal/metrics"
	"github.com/inkhq/inkd/internal/server"
	"github.com/inkhq/inkd/internal/surface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Longest wait for the metrics endpoint to finish in-flight scrapes.
const metricsShutdownTimeout = 5 * time.Second

// Represents the 'inkd serve' command.
type ServeCmd struct {
	Addr        string        `short:"a" env:"INKD_ADDR" default:"${default_addr}" help:"TCP address to listen on." placeholder:"HOST:PORT"`
	Device      string        `env:"INKD_DEVICE" enum:"image,memory" default:"image" help:"Rendering device (${enum})."`
	Output      string        `short:"o" type:"path" env:"INKD_OUTPUT" help:"PNG file the image device writes. Defaults to the state directory." placeholder:"PATH"`
	Width       int           `env:"INKD_WIDTH" default:"${default_width}" help:"Canvas width in pixels."`
	Height      int           `env:"INKD_HEIGHT" default:"${default_height}" help:"Canvas height in pixels."`
	MaxFontSize int           `env:"INKD_MAX_FONT_SIZE" help:"Largest font size the image device draws. Zero allows four times the height."`
	ReadTimeout time.Duration `env:"INKD_READ_TIMEOUT" help:"Close a connection that sends nothing for this long. Zero waits forever."`
	MetricsAddr string        `env:"INKD_METRICS_ADDR" help:"Serve Prometheus metrics over HTTP on this address." placeholder:"HOST:PORT"`
}

// Executes the serve command.
//
// Blocks until a client sends QuitWhenDone and its connection ends, or the
// process is terminated by a signal.
func (c *ServeCmd) Run(ctx context.Context) error {
	device, err := c.device()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(server.Config{
		Address:     c.Addr,
		Device:      device,
		Metrics:     metrics.New(metrics.WithRegistry(registry)),
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("inkd is running", "version", internal.Version(), "device", c.Device)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-srv.Done():
		case <-gctx.Done():
			if err := srv.Stop(); err != nil {
				return err
			}
			<-srv.Done()
		}
		return nil
	})

	if c.MetricsAddr != "" {
		c.serveMetrics(g, gctx, srv, registry)
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("inkd has stopped")
	return nil
}

// Opens the configured rendering device.
func (c *ServeCmd) device() (surface.Device, error) {
	switch c.Device {
	case "memory":
		return surface.NewMemory(), nil
	case "image":
		img, err := surface.NewImage(surface.ImageConfig{
			Path:        c.Output,
			Width:       c.Width,
			Height:      c.Height,
			MaxFontSize: c.MaxFontSize,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("rendering to image", "path", img.Path(), "width", c.Width, "height", c.Height)
		return img, nil
	default:
		return nil, fmt.Errorf("unknown device %q", c.Device)
	}
}

// Runs the metrics endpoint until the server stops.
func (c *ServeCmd) serveMetrics(g *errgroup.Group, ctx context.Context, srv *server.Server, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	hs := &http.Server{
		Addr:              c.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		slog.Info("metrics endpoint listening", "address", c.MetricsAddr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics endpoint: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-srv.Done():
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
}
