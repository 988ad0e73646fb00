package register

import "math"

// Bounds for registers created on the fly by external writes to unknown
// addresses. They match the 32-bit range accepted at the API boundary.
const (
	UnboundedMin = math.MinInt32
	UnboundedMax = math.MaxInt32
)

// Register is one addressable cell of the unit.
//
// Address, Min, Max and ReadOnly are fixed at creation. Only Value changes.
type Register struct {
	Address  int    `json:"address"`
	Name     string `json:"name,omitempty"`
	Value    int    `json:"value"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	ReadOnly bool   `json:"read_only"`
}

// Clamp limits v to the register's bounds.
func (r Register) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Default returns the register substituted for an address that is not in the
// table: value 0, bounds 0..0, read-only. It is the only default used on
// lookup misses anywhere in the emulator.
func Default(address int) Register {
	return Register{Address: address, Value: 0, Min: 0, Max: 0, ReadOnly: true}
}

// Outcome describes what Table.Write did with a value.
type Outcome int

const (
	// OutcomeCommitted means the (possibly clamped) value was stored.
	OutcomeCommitted Outcome = iota
	// OutcomeCreated means an external write created a new unbounded register.
	OutcomeCreated
	// OutcomeRejectedReadOnly means an external write hit a read-only register.
	OutcomeRejectedReadOnly
	// OutcomeRejectedUnknown means the address is not in the table and the
	// write was not allowed to create it.
	OutcomeRejectedUnknown
)

// String returns the outcome name used in logs and the write journal.
func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCreated:
		return "created"
	case OutcomeRejectedReadOnly:
		return "rejected_read_only"
	case OutcomeRejectedUnknown:
		return "rejected_unknown"
	default:
		return "unknown"
	}
}

// Applied reports whether the write changed the table.
func (o Outcome) Applied() bool {
	return o == OutcomeCommitted || o == OutcomeCreated
}

// Change is delivered to the change callback for every write that altered a
// register's value.
//
// Seq is assigned under the table lock and increases with every change.
// Callbacks run after the lock is released, so two writers racing on the
// same address may deliver their changes out of Seq order; consumers that
// keep last-value state compare Seq to discard the older one.
type Change struct {
	Seq      uint64 `json:"seq"`
	Address  int    `json:"address"`
	Old      int    `json:"old"`
	New      int    `json:"new"`
	External bool   `json:"external"`
}
