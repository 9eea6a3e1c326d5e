package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkhq/inkd/internal/command"
	"github.com/inkhq/inkd/internal/surface"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/inkhq/inkd/internal/dispatch"

var (
	ErrBackend     = errors.New("rendering surface rejected command")
	ErrAcknowledge = errors.New("acknowledgment failed")
	ErrUnsupported = errors.New("unsupported command")
)

// Writes a Sync acknowledgment to the client that sent it.
type Acknowledger interface {
	Acknowledge() error
}

// Receives QuitWhenDone requests. Implementations must be idempotent.
type ShutdownRequester interface {
	RequestShutdown() bool
}

// Configures a [Dispatcher].
type Option func(*Dispatcher)

// Sets the tracer provider spans are created with. The default is the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		d.tracer = tp.Tracer(tracerName)
	}
}

// Applies decoded commands.
type Dispatcher struct {
	shutdown ShutdownRequester
	tracer   trace.Tracer
}

// Creates a dispatcher that forwards QuitWhenDone to sd.
func New(sd ShutdownRequester, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		shutdown: sd,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Applies one command.
//
// Drawing commands are forwarded to the surface with their fields in order.
// Sync leaves the surface alone and writes an acknowledgment through ack.
// QuitWhenDone requests shutdown and produces no output.
//
// Surface failures wrap [ErrBackend]; acknowledgment failures wrap
// [ErrAcknowledge] and mean the connection is no longer usable.
func (d *Dispatcher) Dispatch(ctx context.Context, s surface.Surface, ack Acknowledger, cmd command.Command) (err error) {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrUnsupported)
	}

	_, span := d.tracer.Start(ctx, "dispatch "+cmd.Name(),
		trace.WithAttributes(attribute.String("inkd.command", cmd.Name())),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch c := cmd.(type) {
	case command.AddText:
		return backend(c, s.AddText(c.Text, c.X, c.Y, c.Size, c.Ident))
	case command.UpdateText:
		return backend(c, s.UpdateText(c.Ident, c.NewText))
	case command.RemoveText:
		return backend(c, s.RemoveText(c.Ident))
	case command.Clear:
		return backend(c, s.Clear())
	case command.WriteAll:
		return backend(c, s.WriteAll(c.PartialUpdate))
	case command.Sync:
		if err := ack.Acknowledge(); err != nil {
			return fmt.Errorf("%w: %w", ErrAcknowledge, err)
		}
		return nil
	case command.QuitWhenDone:
		d.shutdown.RequestShutdown()
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, cmd.Name())
	}
}

func backend(cmd command.Command, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrBackend, cmd.Name(), err)
}
