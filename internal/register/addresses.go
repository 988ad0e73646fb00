package register

// One-based register addresses used by the rule engine, the simulator and the
// API layer. The HTTP API speaks zero-based addresses (see the unit package).
const (
	// Timed mode durations. A positive write also starts the mode.
	HolidayTime   = 1101
	AwayTime      = 1102
	FireplaceTime = 1103
	RefreshTime   = 1104
	CrowdedTime   = 1105

	ModeRemainingLow  = 1111
	ModeRemainingHigh = 1112

	ManualLevel = 1131

	CrowdedSupplyLevel  = 1135
	CrowdedExtractLevel = 1136
	RefreshSupplyLevel  = 1137
	RefreshExtractLevel = 1138

	FireplaceSupplyLevel      = 1139
	FireplaceExtractLevel     = 1140
	AwaySupplyLevel           = 1141
	AwayExtractLevel          = 1142
	HolidaySupplyLevel        = 1143
	HolidayExtractLevel       = 1144
	CookerHoodSupplyLevel     = 1145
	CookerHoodExtractLevel    = 1146
	VacuumSupplyLevel         = 1147
	VacuumExtractLevel        = 1148
	CurrentMode               = 1161
	ModeRequest               = 1162
	CDI1SupplyLevel           = 1171
	CDI1ExtractLevel          = 1172
	CDI2SupplyLevel           = 1173
	CDI2ExtractLevel          = 1174
	CDI3SupplyLevel           = 1175
	CDI3ExtractLevel          = 1176
	PressureGuardSupplyLevel  = 1177
	PressureGuardExtractLevel = 1178

	FanRegulationUnit = 1274
	FansRunning       = 1351

	// Level to percentage table, Minimum..Maximum.
	SupplyPctMinimum  = 1401
	ExtractPctMinimum = 1402
	SupplyPctLow      = 1403
	ExtractPctLow     = 1404
	SupplyPctNormal   = 1405
	ExtractPctNormal  = 1406
	SupplyPctHigh     = 1407
	ExtractPctHigh    = 1408
	SupplyPctMaximum  = 1409
	ExtractPctMaximum = 1410

	Setpoint            = 2001
	HeaterDemand        = 2114
	HeatExchangerSwitch = 2134
	HeatRecoveryDemand  = 2141
	CoolerDemand        = 2311
	EcoModeSwitch       = 2505
	EcoModeActive       = 2506

	CoolerActive        = 3101
	FreeCoolingActive   = 3102
	HeaterActive        = 3103
	HeatExchangerActive = 3106

	FreeCoolingSwitch = 4101

	FilterPeriodMonths = 7001
	FilterReset        = 7002
	FilterResetAlt     = 7003
	FilterRemainingLow = 7005
	FilterRemainingHi  = 7006

	OutdoorTemp   = 12102
	SupplyTemp    = 12103
	Humidity      = 12136
	SupplyRPM     = 12401
	ExtractRPM    = 12402
	ExtractTemp   = 12544
	SupplyFanPct  = 14001
	ExtractFanPct = 14002
	HeaterOutput  = 14381
)
