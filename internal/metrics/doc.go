// Package metrics holds the daemon's Prometheus collectors.
//
// The collectors are registered with a private registry unless one is given
// with [WithRegistry]. The daemon only exposes them over HTTP when a metrics
// address is configured.
package metrics
