package rules

import (
	"math"

	"github.com/nerrad567/ventsim-core/internal/register"
)

const (
	// MaxRPM is the fan speed at 100 %.
	MaxRPM = 5000

	// autoLevel is the fixed level used in Auto mode (Normal).
	autoLevel = 3

	crowdedPct = 90
	refreshPct = 100
)

// Level to percentage registers, indexed by level-1 (Minimum..Maximum).
var (
	supplyLevelPct  = [5]int{register.SupplyPctMinimum, register.SupplyPctLow, register.SupplyPctNormal, register.SupplyPctHigh, register.SupplyPctMaximum}
	extractLevelPct = [5]int{register.ExtractPctMinimum, register.ExtractPctLow, register.ExtractPctNormal, register.ExtractPctHigh, register.ExtractPctMaximum}
)

// FanOutputs are the values committed by ApplyFanSpeeds.
type FanOutputs struct {
	SupplyPct  int
	ExtractPct int
	Running    bool
	SupplyRPM  int
	ExtractRPM int
}

// RPM converts a fan percentage to revolutions per minute.
func RPM(pct int) int {
	return int(math.Round(float64(pct) / 100 * MaxRPM))
}

// ApplyFanSpeeds resolves the fan percentages for mode from the current
// register state and commits them together with the running flag and RPMs.
//
// The result depends only on mode and the level and percentage registers,
// so applying it twice with unchanged inputs writes identical values.
//
// Parameters:
//   - mode: Operating mode to resolve
//
// Returns:
//   - FanOutputs: The committed values
//   - bool: False when mode has no fan mapping; nothing is written then
func (e *Engine) ApplyFanSpeeds(mode Mode) (FanOutputs, bool) {
	var supply, extract int

	switch mode {
	case ModeAuto:
		supply = e.levelPct(autoLevel, supplyLevelPct)
		extract = e.levelPct(autoLevel, extractLevelPct)
	case ModeCrowded:
		supply, extract = crowdedPct, crowdedPct
	case ModeRefresh:
		supply, extract = refreshPct, refreshPct
	default:
		pair, ok := modeLevels[mode]
		if !ok {
			e.logger.Warn("no fan mapping for mode", "mode", int(mode))
			return FanOutputs{}, false
		}
		supply = e.levelPct(e.store.GetOrDefault(pair.supply).Value, supplyLevelPct)
		extract = e.levelPct(e.store.GetOrDefault(pair.extract).Value, extractLevelPct)
	}

	out := FanOutputs{
		SupplyPct:  supply,
		ExtractPct: extract,
		Running:    supply > 0 || extract > 0,
		SupplyRPM:  RPM(supply),
		ExtractRPM: RPM(extract),
	}

	e.write(register.SupplyFanPct, out.SupplyPct)
	e.write(register.ExtractFanPct, out.ExtractPct)
	e.write(register.FansRunning, boolToInt(out.Running))
	e.write(register.SupplyRPM, out.SupplyRPM)
	e.write(register.ExtractRPM, out.ExtractRPM)

	e.logger.Debug("fan speeds applied",
		"mode", mode.String(),
		"supply_pct", out.SupplyPct,
		"extract_pct", out.ExtractPct,
		"regulation_unit", e.store.GetOrDefault(register.FanRegulationUnit).Value,
	)
	return out, true
}

// levelPct resolves a fan level through the percentage table.
// Level 0 and levels outside 1..5 resolve to 0 %.
func (e *Engine) levelPct(level int, table [5]int) int {
	if level < 1 || level > len(table) {
		return 0
	}
	return e.store.GetOrDefault(table[level-1]).Value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
