// Package panel serves the emulator's web UI: a register dashboard that
// reads /api/v1/registers, follows register.changed over the WebSocket and
// writes through /mwrite like any other client of the unit.
//
// The files under web/ are embedded with go:embed. Setting api.ui_dir in the
// configuration serves a directory from disk instead.
package panel
