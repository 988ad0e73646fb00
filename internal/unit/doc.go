// Package unit is the emulated ventilation unit as seen by transports.
//
// It owns the register table and the rule engine and exposes the two core
// operations used by the HTTP and MQTT layers:
//
//   - ReadRegisters: zero-based addresses in, values out. Unknown addresses
//     read as 0.
//   - WriteRegisters: a batch of zero-based address/value entries. Each
//     well-formed entry is written externally and, when committed, passed to
//     the rule engine. Malformed entries are skipped individually.
//
// # Address Translation
//
// Clients address registers from 0. The table uses the one-based numbers of
// the unit's register documentation. Translation happens only here.
//
// # Serialisation
//
// Each entry's table write and its rule cascade run under one mutex, so two
// client writes never interleave their cascades. The simulator does not take
// this mutex. Its sensor writes may land between cascade steps; the last
// write to a register wins.
package unit
