package rules

import (
	"math"

	"github.com/nerrad567/ventsim-core/internal/register"
)

const (
	// demandDeadband is the setpoint error in °C below which neither the
	// heater nor the cooler runs.
	demandDeadband = 0.5

	// demandGain is the demand percentage per °C of error.
	demandGain = 20
)

// Demand is the result of a heating/cooling demand calculation.
type Demand struct {
	HeaterPct int
	CoolerPct int
}

// RecomputeDemand compares the setpoint with the supply air temperature and
// commits heater and cooler demand plus their active flags.
//
// Both temperatures are stored in tenths of a degree.
func (e *Engine) RecomputeDemand() Demand {
	setpoint := float64(e.store.GetOrDefault(register.Setpoint).Value) / 10
	supply := float64(e.store.GetOrDefault(register.SupplyTemp).Value) / 10
	diff := setpoint - supply

	var d Demand
	switch {
	case diff > demandDeadband:
		d.HeaterPct = min(100, int(math.Round(diff*demandGain)))
	case diff < -demandDeadband:
		d.CoolerPct = min(100, int(math.Round(-diff*demandGain)))
	}

	heating := d.HeaterPct > 0
	cooling := d.CoolerPct > 0

	e.write(register.HeaterDemand, d.HeaterPct)
	e.write(register.CoolerDemand, d.CoolerPct)
	e.write(register.HeaterOutput, boolToInt(heating))
	e.write(register.HeaterActive, boolToInt(heating))
	e.write(register.CoolerActive, boolToInt(cooling))

	e.logger.Debug("demand recomputed", "diff_c", diff, "heater_pct", d.HeaterPct, "cooler_pct", d.CoolerPct)
	return d
}
