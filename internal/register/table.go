package register

import (
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Table.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ChangeFunc receives value changes after the table lock is released.
// It runs on the writer's goroutine and must not block. Concurrent writers
// can deliver changes out of order; see Change.Seq.
type ChangeFunc func(Change)

// Table is the process-wide register store.
//
// It is created once from a catalog and never shrinks. All public methods
// are thread-safe.
type Table struct {
	mu            sync.RWMutex
	regs          map[int]*Register
	strictUnknown bool

	logger   Logger
	onChange ChangeFunc
	seq      uint64
}

// NewTable creates a table pre-populated with the given registers.
//
// Later entries win if an address appears twice. Each value is clamped into
// its own bounds.
func NewTable(registers []Register) *Table {
	t := &Table{
		regs:   make(map[int]*Register, len(registers)),
		logger: noopLogger{},
	}
	for _, r := range registers {
		reg := r
		reg.Value = reg.Clamp(reg.Value)
		t.regs[reg.Address] = &reg
	}
	return t
}

// SetLogger sets the logger for the table.
func (t *Table) SetLogger(logger Logger) {
	t.mu.Lock()
	t.logger = logger
	t.mu.Unlock()
}

// SetStrictUnknown controls whether external writes to unknown addresses are
// dropped (true) or create an unbounded writable register (false).
func (t *Table) SetStrictUnknown(strict bool) {
	t.mu.Lock()
	t.strictUnknown = strict
	t.mu.Unlock()
}

// SetOnChange registers the callback invoked for every value change.
// Pass nil to remove it.
func (t *Table) SetOnChange(fn ChangeFunc) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Get returns a copy of the register at address.
// The boolean is false when the address is not in the table.
func (t *Table) Get(address int) (Register, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.regs[address]
	if !ok {
		return Register{}, false
	}
	return *r, true
}

// GetOrDefault returns the register at address, or Default(address) when the
// address is not in the table.
func (t *Table) GetOrDefault(address int) Register {
	if r, ok := t.Get(address); ok {
		return r
	}
	return Default(address)
}

// Value returns the current value at address, 0 when absent.
func (t *Table) Value(address int) int {
	return t.GetOrDefault(address).Value
}

// Write stores value at address and returns the value now held there.
//
// External writes come from API clients. Internal writes come from the rule
// engine and the simulator and bypass read-only protection. See the package
// documentation for the full policy.
//
// Parameters:
//   - address: One-based register address
//   - value: Requested value, clamped to the register's bounds
//   - external: True for client writes
//
// Returns:
//   - int: The committed value, or the unchanged current value when dropped
//     (0 for a dropped write to an unknown address)
//   - Outcome: What happened to the write
func (t *Table) Write(address, value int, external bool) (int, Outcome) {
	t.mu.Lock()

	r, ok := t.regs[address]
	if !ok {
		if !external || t.strictUnknown {
			logger := t.logger
			t.mu.Unlock()
			if external {
				logger.Debug("dropped write to unknown register", "address", address, "value", value)
			} else {
				logger.Warn("internal write to unknown register dropped", "address", address, "value", value)
			}
			return 0, OutcomeRejectedUnknown
		}

		t.regs[address] = &Register{Address: address, Value: value, Min: UnboundedMin, Max: UnboundedMax}
		t.seq++
		change := Change{Seq: t.seq, Address: address, Old: 0, New: value, External: true}
		logger, onChange := t.logger, t.onChange
		t.mu.Unlock()

		logger.Info("created register for unknown address", "address", address, "value", value)
		if onChange != nil {
			onChange(change)
		}
		return value, OutcomeCreated
	}

	if external && r.ReadOnly {
		current := r.Value
		logger := t.logger
		t.mu.Unlock()

		logger.Debug("dropped external write to read-only register", "address", address, "value", value)
		return current, OutcomeRejectedReadOnly
	}

	committed := r.Clamp(value)
	old := r.Value
	if old == committed {
		t.mu.Unlock()
		return committed, OutcomeCommitted
	}
	r.Value = committed
	t.seq++
	change := Change{Seq: t.seq, Address: address, Old: old, New: committed, External: external}
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(change)
	}
	return committed, OutcomeCommitted
}

// Snapshot returns copies of all registers ordered by address.
func (t *Table) Snapshot() []Register {
	t.mu.RLock()
	out := make([]Register, 0, len(t.regs))
	for _, r := range t.regs {
		out = append(out, *r)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Len returns the number of registers in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.regs)
}
