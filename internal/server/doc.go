// Package server implements the inkd daemon.
//
// The daemon listens on a TCP address for newline-delimited JSON commands.
// Connections are served one at a time. Each connection draws on a fresh
// surface opened from the configured device, and its lines are decoded and
// dispatched strictly in order. Only "Sync" produces a reply: an empty line
// written once every earlier command has been applied.
//
// Invalid lines and commands the surface rejects are logged and skipped; the
// connection stays open. After a "QuitWhenDone" command the current
// connection is drained normally and the server stops before accepting
// another.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    Address: "localhost:6029",
//	    Device:  surface.NewMemory(),
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
