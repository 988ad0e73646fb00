// Package api implements the emulated unit's HTTP server.
//
// This package provides:
//   - The device endpoints clients of the real unit call (/menu,
//     /unit_version, /mread, /mwrite and the firmware update flow), with the
//     unit's own key names and plain-text error bodies
//   - An admin API under /api/v1 (health, metrics, register snapshot, write
//     journal, reset)
//   - A WebSocket hub streaming register changes and simulator ticks
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - The embedded web UI at the root path
//
// # Addresses
//
// Every address crossing this package is zero-based. The unit package
// translates to the one-based register table.
//
// # Lifecycle
//
//	srv, err := api.New(deps)
//	table.SetOnChange(srv.OnRegisterChange)
//	srv.Start(ctx)
//	defer srv.Close()
//
// # WebSocket protocol
//
// Clients send {"type":"subscribe","id":"1","payload":{"channels":["register.changed"]}}
// and receive events {"type":"event","event_type":"register.changed","payload":{...}}.
// Channels: register.changed, simulator.tick. "ping" is answered with "pong".
package api
