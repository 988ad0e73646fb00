package rules

import (
	"fmt"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// Mode is the unit's operating mode as stored in the current-mode register.
type Mode int

const (
	ModeAuto Mode = iota
	ModeManual
	ModeCrowded
	ModeRefresh
	ModeFireplace
	ModeAway
	ModeHoliday
	ModeCookerHood
	ModeVacuumCleaner
	ModeCDI1
	ModeCDI2
	ModeCDI3
	ModePressureGuard
)

var modeNames = [...]string{
	"auto", "manual", "crowded", "refresh", "fireplace", "away", "holiday",
	"cooker_hood", "vacuum_cleaner", "cdi1", "cdi2", "cdi3", "pressure_guard",
}

// String returns the lower-case mode name, or "mode(N)" for unknown values.
func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// levelPair holds the addresses of a mode's supply and extract fan levels.
type levelPair struct {
	supply  int
	extract int
}

// modeLevels maps each level-configured mode to its level registers.
// Auto, Crowded and Refresh resolve their fan speeds without this table.
var modeLevels = map[Mode]levelPair{
	ModeManual:        {register.ManualLevel, register.ManualLevel},
	ModeFireplace:     {register.FireplaceSupplyLevel, register.FireplaceExtractLevel},
	ModeAway:          {register.AwaySupplyLevel, register.AwayExtractLevel},
	ModeHoliday:       {register.HolidaySupplyLevel, register.HolidayExtractLevel},
	ModeCookerHood:    {register.CookerHoodSupplyLevel, register.CookerHoodExtractLevel},
	ModeVacuumCleaner: {register.VacuumSupplyLevel, register.VacuumExtractLevel},
	ModeCDI1:          {register.CDI1SupplyLevel, register.CDI1ExtractLevel},
	ModeCDI2:          {register.CDI2SupplyLevel, register.CDI2ExtractLevel},
	ModeCDI3:          {register.CDI3SupplyLevel, register.CDI3ExtractLevel},
	ModePressureGuard: {register.PressureGuardSupplyLevel, register.PressureGuardExtractLevel},
}

// timedModeTriggers maps a duration register to the mode it starts.
var timedModeTriggers = map[int]Mode{
	register.CrowdedTime:   ModeCrowded,
	register.RefreshTime:   ModeRefresh,
	register.FireplaceTime: ModeFireplace,
	register.AwayTime:      ModeAway,
	register.HolidayTime:   ModeHoliday,
}
