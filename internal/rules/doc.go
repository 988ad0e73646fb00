// Package rules derives secondary register writes from client writes.
//
// The Engine is called once for every accepted external write with the
// committed value. It looks the address up in a fixed rule table and runs at
// most one handler, which issues internal writes to the register table:
//
//   - 1162 mode request: commit value-1 as the current mode, apply fan speeds
//   - 1131 manual level: switch to Manual if needed, apply fan speeds
//   - 1101..1105 timed mode durations: a positive value starts the mode
//   - 2001 setpoint: recompute heating and cooling demand
//   - 7002, 7003 filter reset: reload the filter countdown from 7001
//   - 4101, 2505, 2134: copy the value to their status registers
//
// # Cascade Depth
//
// Cascades are exactly one level deep. Writes issued by a handler are
// internal and never re-enter the rule table, even when they land on an
// address that has a rule of its own (for example the current-mode register
// written by the mode-request handler). Re-dispatching would make a single
// client write fan out unpredictably, and the real unit does not do it.
//
// # Missing Registers
//
// Every read goes through GetOrDefault, so a register missing from the table
// reads as 0 and the handler degrades to writing zeros. The engine never
// returns an error.
package rules
