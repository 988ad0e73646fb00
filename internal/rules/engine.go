package rules

import (
	"sort"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// Store is the register access the engine needs. *register.Table satisfies it.
type Store interface {
	GetOrDefault(address int) register.Register
	Write(address, value int, external bool) (int, register.Outcome)
}

// Logger defines the logging interface used by the Engine.
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

// Rule is one entry of the dispatch table.
type Rule struct {
	// Name identifies the rule in logs.
	Name string
	// Apply receives the committed value of the external write.
	Apply func(value int)
}

// mirrors copies a client-writable switch to its status register.
var mirrors = map[int]int{
	register.FreeCoolingSwitch:   register.FreeCoolingActive,
	register.EcoModeSwitch:       register.EcoModeActive,
	register.HeatExchangerSwitch: register.HeatExchangerActive,
}

// Engine applies the secondary effects of client writes.
//
// Thread Safety: the engine holds no lock of its own. Each write it issues is
// atomic at the table, and callers serialise whole cascades (see the unit
// package).
type Engine struct {
	store  Store
	rules  map[int]Rule
	logger Logger
}

// NewEngine creates an engine over store with the built-in rule table.
//
// Parameters:
//   - store: Register table the rules read and write
//   - logger: Logger instance (may be nil)
func NewEngine(store Store, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	e := &Engine{
		store:  store,
		logger: logger,
	}
	e.rules = e.buildRules()
	return e
}

func (e *Engine) buildRules() map[int]Rule {
	rules := map[int]Rule{
		register.ModeRequest:    {Name: "mode_request", Apply: e.onModeRequest},
		register.ManualLevel:    {Name: "manual_level", Apply: e.onManualLevel},
		register.Setpoint:       {Name: "setpoint", Apply: func(int) { e.RecomputeDemand() }},
		register.FilterReset:    {Name: "filter_reset", Apply: func(int) { e.ResetFilter() }},
		register.FilterResetAlt: {Name: "filter_reset", Apply: func(int) { e.ResetFilter() }},
	}

	for addr, mode := range timedModeTriggers {
		rules[addr] = Rule{Name: "start_" + mode.String(), Apply: func(value int) {
			if value > 0 {
				e.SetMode(mode)
			}
		}}
	}

	for src, dst := range mirrors {
		rules[src] = Rule{Name: "mirror", Apply: func(value int) {
			e.write(dst, value)
		}}
	}

	return rules
}

// Apply runs the rule registered for address, if any.
//
// It must be called once per committed external write with the committed
// value. Writes issued by the rule are internal and are not dispatched again.
//
// Returns:
//   - bool: True if a rule ran
func (e *Engine) Apply(address, value int) bool {
	rule, ok := e.rules[address]
	if !ok {
		return false
	}
	e.logger.Debug("applying rule", "rule", rule.Name, "address", address, "value", value)
	rule.Apply(value)
	return true
}

// Addresses returns the addresses that have a rule, in ascending order.
func (e *Engine) Addresses() []int {
	out := make([]int, 0, len(e.rules))
	for addr := range e.rules {
		out = append(out, addr)
	}
	sort.Ints(out)
	return out
}

// CurrentMode reads the current-mode register.
func (e *Engine) CurrentMode() Mode {
	return Mode(e.store.GetOrDefault(register.CurrentMode).Value)
}

// SetMode commits mode as the current mode and applies its fan speeds.
//
// The mode register clamps the value, so fan speeds follow the mode that was
// actually stored.
func (e *Engine) SetMode(mode Mode) Mode {
	committed := Mode(e.write(register.CurrentMode, int(mode)))
	e.logger.Info("mode changed", "mode", committed.String())
	e.ApplyFanSpeeds(committed)
	return committed
}

// onModeRequest handles the 1-based mode request register.
func (e *Engine) onModeRequest(value int) {
	e.SetMode(Mode(value - 1))
}

// onManualLevel enters Manual mode, or refreshes it, after a level change.
func (e *Engine) onManualLevel(int) {
	if e.CurrentMode() != ModeManual {
		e.SetMode(ModeManual)
		return
	}
	e.ApplyFanSpeeds(ModeManual)
}

// write issues an internal write and returns the committed value.
func (e *Engine) write(address, value int) int {
	committed, _ := e.store.Write(address, value, false)
	return committed
}
