// Provides platform-appropriate paths for the daemon.
//
// Paths follow XDG conventions on Linux and the native conventions on macOS
// and Windows, with "inkd" as the subdirectory under each base path. Runtime
// files (the PID file) live under the runtime directory; rendered frames live
// under the state directory.
package paths
