package register

// CatalogVersion identifies the register map shipped in Catalog. Bump it when
// an address, bound or access flag changes.
const CatalogVersion = "vsr300-r1"

// Temperatures are stored in tenths of a degree Celsius.
const (
	tempMin = -400
	tempMax = 800
)

func rw(addr int, name string, value, lo, hi int) Register {
	return Register{Address: addr, Name: name, Value: value, Min: lo, Max: hi}
}

func ro(addr int, name string, value, lo, hi int) Register {
	return Register{Address: addr, Name: name, Value: value, Min: lo, Max: hi, ReadOnly: true}
}

// catalog is the static register map of the emulated unit with factory
// default values. The defaults describe a unit idling in Auto mode at
// Normal fan level.
var catalog = []Register{
	// User modes
	rw(HolidayTime, "holiday_time_days", 7, 0, 365),
	rw(AwayTime, "away_time_hours", 24, 0, 72),
	rw(FireplaceTime, "fireplace_time_minutes", 10, 0, 60),
	rw(RefreshTime, "refresh_time_minutes", 60, 0, 240),
	rw(CrowdedTime, "crowded_time_hours", 4, 0, 8),
	ro(ModeRemainingLow, "mode_remaining_time_low", 0, 0, 65535),
	ro(ModeRemainingHigh, "mode_remaining_time_high", 0, 0, 65535),
	rw(ManualLevel, "manual_airflow_level", 3, 0, 5),
	rw(CrowdedSupplyLevel, "crowded_supply_level", 4, 0, 5),
	rw(CrowdedExtractLevel, "crowded_extract_level", 4, 0, 5),
	rw(RefreshSupplyLevel, "refresh_supply_level", 5, 0, 5),
	rw(RefreshExtractLevel, "refresh_extract_level", 5, 0, 5),
	rw(FireplaceSupplyLevel, "fireplace_supply_level", 4, 0, 5),
	rw(FireplaceExtractLevel, "fireplace_extract_level", 2, 0, 5),
	rw(AwaySupplyLevel, "away_supply_level", 2, 0, 5),
	rw(AwayExtractLevel, "away_extract_level", 2, 0, 5),
	rw(HolidaySupplyLevel, "holiday_supply_level", 1, 0, 5),
	rw(HolidayExtractLevel, "holiday_extract_level", 1, 0, 5),
	rw(CookerHoodSupplyLevel, "cooker_hood_supply_level", 4, 0, 5),
	rw(CookerHoodExtractLevel, "cooker_hood_extract_level", 2, 0, 5),
	rw(VacuumSupplyLevel, "vacuum_cleaner_supply_level", 4, 0, 5),
	rw(VacuumExtractLevel, "vacuum_cleaner_extract_level", 3, 0, 5),
	ro(CurrentMode, "current_user_mode", 0, 0, 12),
	rw(ModeRequest, "user_mode_request", 0, 0, 13),
	rw(CDI1SupplyLevel, "cdi1_supply_level", 3, 0, 5),
	rw(CDI1ExtractLevel, "cdi1_extract_level", 3, 0, 5),
	rw(CDI2SupplyLevel, "cdi2_supply_level", 4, 0, 5),
	rw(CDI2ExtractLevel, "cdi2_extract_level", 4, 0, 5),
	rw(CDI3SupplyLevel, "cdi3_supply_level", 5, 0, 5),
	rw(CDI3ExtractLevel, "cdi3_extract_level", 5, 0, 5),
	rw(PressureGuardSupplyLevel, "pressure_guard_supply_level", 4, 0, 5),
	rw(PressureGuardExtractLevel, "pressure_guard_extract_level", 1, 0, 5),

	// Fan control
	rw(FanRegulationUnit, "fan_regulation_unit", 0, 0, 4),
	ro(FansRunning, "fans_running", 1, 0, 1),
	rw(SupplyPctMinimum, "supply_pct_minimum", 20, 0, 100),
	rw(ExtractPctMinimum, "extract_pct_minimum", 20, 0, 100),
	rw(SupplyPctLow, "supply_pct_low", 30, 0, 100),
	rw(ExtractPctLow, "extract_pct_low", 30, 0, 100),
	rw(SupplyPctNormal, "supply_pct_normal", 50, 0, 100),
	rw(ExtractPctNormal, "extract_pct_normal", 50, 0, 100),
	rw(SupplyPctHigh, "supply_pct_high", 70, 0, 100),
	rw(ExtractPctHigh, "extract_pct_high", 70, 0, 100),
	rw(SupplyPctMaximum, "supply_pct_maximum", 100, 0, 100),
	rw(ExtractPctMaximum, "extract_pct_maximum", 100, 0, 100),

	// Temperature control
	rw(Setpoint, "temperature_setpoint", 220, 120, 300),
	rw(HeaterDemand, "heater_demand_pct", 0, 0, 100),
	rw(HeatExchangerSwitch, "heat_exchanger_switch", 0, 0, 1),
	rw(HeatRecoveryDemand, "heat_recovery_demand_pct", 80, 0, 100),
	rw(CoolerDemand, "cooler_demand_pct", 0, 0, 100),
	rw(EcoModeSwitch, "eco_mode_switch", 0, 0, 1),
	ro(EcoModeActive, "eco_mode_active", 0, 0, 1),

	// Digital outputs
	ro(CoolerActive, "cooler_active", 0, 0, 1),
	ro(FreeCoolingActive, "free_cooling_active", 0, 0, 1),
	ro(HeaterActive, "heater_active", 0, 0, 1),
	ro(HeatExchangerActive, "heat_exchanger_active", 0, 0, 1),
	rw(FreeCoolingSwitch, "free_cooling_switch", 0, 0, 1),

	// Filter: 12 months = 31,104,000 s = 474<<16 | 39936
	rw(FilterPeriodMonths, "filter_period_months", 12, 3, 15),
	rw(FilterReset, "filter_reset", 0, 0, 1),
	rw(FilterResetAlt, "filter_reset_alt", 0, 0, 1),
	ro(FilterRemainingLow, "filter_remaining_low", 39936, 0, 65535),
	ro(FilterRemainingHi, "filter_remaining_high", 474, 0, 65535),

	// Sensors
	ro(OutdoorTemp, "outdoor_air_temp", 100, tempMin, tempMax),
	ro(SupplyTemp, "supply_air_temp", 180, tempMin, tempMax),
	ro(Humidity, "relative_humidity", 45, 0, 100),
	ro(SupplyRPM, "supply_fan_rpm", 2500, 0, 5000),
	ro(ExtractRPM, "extract_fan_rpm", 2500, 0, 5000),
	ro(ExtractTemp, "extract_air_temp", 215, tempMin, tempMax),
	ro(SupplyFanPct, "supply_fan_pct", 50, 0, 100),
	ro(ExtractFanPct, "extract_fan_pct", 50, 0, 100),
	ro(HeaterOutput, "heater_output", 0, 0, 1),
}

// Catalog returns a copy of the factory register map.
func Catalog() []Register {
	out := make([]Register, len(catalog))
	copy(out, catalog)
	return out
}
