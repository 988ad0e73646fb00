package rules

import "github.com/nerrad567/ventsim-core/internal/register"

// secondsPerMonth uses the unit's 30-day filter month.
const secondsPerMonth = 30 * 24 * 3600

// ResetFilter reloads the filter countdown from the configured period and
// returns the new remaining time in seconds.
//
// The 32-bit countdown is split across two 16-bit registers.
func (e *Engine) ResetFilter() int {
	months := e.store.GetOrDefault(register.FilterPeriodMonths).Value
	seconds := months * secondsPerMonth

	e.write(register.FilterRemainingLow, seconds&0xFFFF)
	e.write(register.FilterRemainingHi, (seconds>>16)&0xFFFF)

	e.logger.Info("filter timer reset", "months", months, "seconds", seconds)
	return seconds
}
