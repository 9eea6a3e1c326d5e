package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/inkhq/inkd/internal"
)

const (

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Directory for runtime files such as the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/inkd, or ~/.cache/inkd/run without a runtime dir
//	macOS:   ~/Library/Caches/inkd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, internal.Name)
	}
	return filepath.Join(xdg.CacheHome, internal.Name, "run")
}

// Path to the PID file of a running daemon.
//
//	Linux:   $XDG_RUNTIME_DIR/inkd/inkd.pid
//	macOS:   ~/Library/Caches/inkd/run/inkd.pid
func PIDFile() string {
	return filepath.Join(Runtime(), internal.Name+".pid")
}

// Directory for state that outlives the process.
//
//	Linux:   $XDG_STATE_HOME/inkd (~/.local/state/inkd)
//	macOS:   ~/Library/Application Support/inkd
func State() string {
	return filepath.Join(xdg.StateHome, internal.Name)
}

// Default path of the PNG file the image device renders to.
//
//	Linux:   $XDG_STATE_HOME/inkd/frame.png
//	macOS:   ~/Library/Application Support/inkd/frame.png
func Frame() string {
	return filepath.Join(State(), "frame.png")
}
