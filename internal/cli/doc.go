// Parses flags and configures logging for the inkd daemon and its client
// commands.
//
// The following commands are available:
//
//	inkd serve     Run the daemon.
//	inkd send      Send commands to a running daemon.
//	inkd quit      Ask a running daemon to stop.
//	inkd version   Show version information.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Every flag can also be set through an INKD_* environment variable. Flags
// override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the command runs.
package cli
