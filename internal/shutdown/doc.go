// Package shutdown coordinates the daemon's protocol-driven termination.
//
// A [Coordinator] moves through three states:
//
//	Running -> ShuttingDown -> Stopped
//
// The first [Coordinator.RequestShutdown] moves it from Running to
// ShuttingDown; later calls do nothing. In the same step, under the same lock,
// the termination signals (SIGINT and SIGTERM) switch from their default
// disposition to being ignored, so that a signal arriving while the daemon
// finishes its last connection cannot kill it halfway through a display
// write. While Running the daemon does not intercept those signals at all.
//
// The listener polls [Coordinator.IsShuttingDown] between connections and
// calls [Coordinator.Stop] once it has closed its socket.
package shutdown
