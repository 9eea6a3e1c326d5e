package surface

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrSurface = errors.New("surface error")
	ErrClosed  = fmt.Errorf("%w: surface closed", errdefs.ErrUnavailable)
)

func notFound(ident string) error {
	return fmt.Errorf("text element %q: %w", ident, errdefs.ErrNotFound)
}

func alreadyExists(ident string) error {
	return fmt.Errorf("text element %q: %w", ident, errdefs.ErrAlreadyExists)
}
