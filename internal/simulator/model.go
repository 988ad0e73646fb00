package simulator

import "math"

// Model constants.
const (
	phaseStep = 0.01

	outdoorMeanC      = 10.0
	outdoorAmplitudeC = 5.0

	// extractDrift is the fraction of the setpoint error the indoor
	// temperature closes per tick while the fans run.
	extractDrift = 0.01

	recoveryEfficiency = 0.8

	// actuatorEffectC is the supply temperature change at 100 % heater or
	// cooler demand.
	actuatorEffectC = 0.2

	humidityDryingPerTick  = 0.1
	humidityBuildupPerTick = 0.05
	humidityMin            = 30.0
	humidityMax            = 70.0

	// Peak-to-peak noise amplitudes.
	outdoorNoise  = 0.1
	extractNoise  = 0.05
	supplyNoise   = 0.1
	humidityNoise = 0.2
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// State is the simulator's continuous model state.
type State struct {
	OutdoorC    float64 `json:"outdoor_c"`
	ExtractC    float64 `json:"extract_c"`
	SupplyC     float64 `json:"supply_c"`
	HumidityPct float64 `json:"humidity_pct"`
	Phase       float64 `json:"phase"`
}

// InitialState returns the state the model starts from.
func InitialState() State {
	return State{
		OutdoorC:    10.0,
		ExtractC:    21.5,
		SupplyC:     18.0,
		HumidityPct: 45.0,
		Phase:       0,
	}
}

// Inputs are the register values a step depends on.
type Inputs struct {
	SetpointC   float64 `json:"setpoint_c"`
	HeaterPct   float64 `json:"heater_pct"`
	CoolerPct   float64 `json:"cooler_pct"`
	RecoveryPct float64 `json:"recovery_pct"`
	FansRunning bool    `json:"fans_running"`
}

// noise returns a symmetric perturbation in [-amplitude/2, amplitude/2).
func noise(rnd RandomSource, amplitude float64) float64 {
	return (rnd.Float64() - 0.5) * amplitude
}

// Step advances the model by one tick.
//
// Random values are drawn in a fixed order (outdoor, extract, supply,
// humidity) so a seeded source reproduces a run exactly.
func (s State) Step(in Inputs, rnd RandomSource) State {
	next := s

	next.Phase += phaseStep
	next.OutdoorC = outdoorMeanC + outdoorAmplitudeC*math.Sin(next.Phase) + noise(rnd, outdoorNoise)

	if in.FansRunning {
		next.ExtractC += (in.SetpointC - next.ExtractC) * extractDrift
	}
	next.ExtractC += noise(rnd, extractNoise)

	recovery := 0.0
	if in.FansRunning && in.RecoveryPct > 0 {
		recovery = (next.ExtractC - next.OutdoorC) * recoveryEfficiency * (in.RecoveryPct / 100)
	}
	heater := in.HeaterPct / 100 * actuatorEffectC
	cooler := in.CoolerPct / 100 * actuatorEffectC
	next.SupplyC = next.OutdoorC + recovery + heater - cooler + noise(rnd, supplyNoise)

	if in.FansRunning {
		next.HumidityPct -= humidityDryingPerTick
	} else {
		next.HumidityPct += humidityBuildupPerTick
	}
	next.HumidityPct = math.Min(math.Max(next.HumidityPct, humidityMin), humidityMax)
	next.HumidityPct += noise(rnd, humidityNoise)

	return next
}

// Registers converts the state to the integer register encoding.
// Temperatures become tenths of a degree; all values are truncated.
func (s State) Registers() (outdoor, supply, extract, humidity int) {
	return int(s.OutdoorC * 10), int(s.SupplyC * 10), int(s.ExtractC * 10), int(s.HumidityPct)
}
