// Package dispatch maps decoded commands onto their effects.
//
// Drawing commands become calls on the connection's rendering surface; Sync
// becomes an acknowledgment on the connection; QuitWhenDone becomes a
// shutdown request. Each dispatch runs inside an OpenTelemetry span named
// after the command.
package dispatch
