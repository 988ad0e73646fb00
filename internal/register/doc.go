// Package register holds the emulated unit's register table.
//
// A register is a bounded integer cell addressed by its one-based Modbus
// holding/input register number. The table is created once from a static
// catalog of the unit's documented register map and is shared by the HTTP
// handlers, the rule engine and the physical simulator.
//
// # Write Policy
//
// Every write goes through Table.Write, which enforces:
//
//   - Clamping: the committed value always lies within [Min, Max].
//   - Read-only protection: external writes to read-only registers are
//     dropped without error. Internal writes (rule engine, simulator)
//     bypass the check.
//   - Unknown addresses: an external write to an address outside the
//     catalog creates an unbounded writable register, unless the table is
//     strict, in which case it is dropped. Internal writes to unknown
//     addresses are always dropped.
//
// None of these outcomes is an error. Callers inspect the returned Outcome
// when they need to know what happened.
//
// # Thread Safety
//
// All Table methods are safe for concurrent use. A single RWMutex guards the
// whole map, so reads never observe a partially applied write. Change
// callbacks run after the lock is released.
package register
