package simulator

import (
	"context"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// fixedRandom always returns the same value. 0.5 yields zero noise.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

const epsilon = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < epsilon }

func TestStep_FansOffOnlyNoiseMovesExtract(t *testing.T) {
	start := InitialState()
	in := Inputs{SetpointC: 30, FansRunning: false}

	for _, r := range []float64{0, 0.5, 0.999999} {
		next := start.Step(in, fixedRandom(r))
		delta := next.ExtractC - start.ExtractC
		if math.Abs(delta) > extractNoise/2+epsilon {
			t.Errorf("rand=%v: extract moved %v, want within ±%v", r, delta, extractNoise/2)
		}
	}

	if next := start.Step(in, fixedRandom(0.5)); !near(next.ExtractC, start.ExtractC) {
		t.Errorf("zero noise: extract = %v, want %v", next.ExtractC, start.ExtractC)
	}
}

func TestStep_FansOnDriftTowardSetpoint(t *testing.T) {
	start := InitialState() // extract 21.5
	in := Inputs{SetpointC: 25.5, FansRunning: true}

	next := start.Step(in, fixedRandom(0.5))

	want := 21.5 + (25.5-21.5)*0.01
	if !near(next.ExtractC, want) {
		t.Errorf("ExtractC = %v, want %v", next.ExtractC, want)
	}
}

func TestStep_OutdoorFollowsPhase(t *testing.T) {
	s := InitialState()
	for i := 0; i < 3; i++ {
		s = s.Step(Inputs{}, fixedRandom(0.5))
	}

	if !near(s.Phase, 0.03) {
		t.Errorf("Phase = %v, want 0.03", s.Phase)
	}
	if want := 10 + 5*math.Sin(0.03); !near(s.OutdoorC, want) {
		t.Errorf("OutdoorC = %v, want %v", s.OutdoorC, want)
	}
}

func TestStep_SupplyTemperature(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		// recovery expected to apply
		recovery bool
	}{
		{"recovery with fans", Inputs{SetpointC: 21.5, RecoveryPct: 80, FansRunning: true}, true},
		{"no recovery without fans", Inputs{SetpointC: 21.5, RecoveryPct: 80}, false},
		{"no recovery at zero demand", Inputs{SetpointC: 21.5, FansRunning: true}, false},
		{"heater adds", Inputs{SetpointC: 21.5, HeaterPct: 100, FansRunning: true}, false},
		{"cooler removes", Inputs{SetpointC: 21.5, CoolerPct: 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := InitialState().Step(tt.in, fixedRandom(0.5))

			want := next.OutdoorC + tt.in.HeaterPct/100*0.2 - tt.in.CoolerPct/100*0.2
			if tt.recovery {
				want += (next.ExtractC - next.OutdoorC) * 0.8 * tt.in.RecoveryPct / 100
			}
			if !near(next.SupplyC, want) {
				t.Errorf("SupplyC = %v, want %v", next.SupplyC, want)
			}
		})
	}
}

func TestStep_Humidity(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		fans  bool
		want  float64
	}{
		{"fans dry the air", 45, true, 44.9},
		{"occupancy builds humidity", 45, false, 45.05},
		{"clamped at floor", 30, true, 30},
		{"clamped at ceiling", 70, false, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := InitialState()
			s.HumidityPct = tt.start

			next := s.Step(Inputs{FansRunning: tt.fans}, fixedRandom(0.5))
			if !near(next.HumidityPct, tt.want) {
				t.Errorf("HumidityPct = %v, want %v", next.HumidityPct, tt.want)
			}
		})
	}
}

func TestState_RegistersTruncate(t *testing.T) {
	s := State{OutdoorC: 10.79, SupplyC: -1.25, ExtractC: 21.99, HumidityPct: 44.9}

	outdoor, supply, extract, humidity := s.Registers()
	if outdoor != 107 || supply != -12 || extract != 219 || humidity != 44 {
		t.Errorf("Registers() = %d, %d, %d, %d; want 107, -12, 219, 44", outdoor, supply, extract, humidity)
	}
}

func TestSimulator_TickWritesSensors(t *testing.T) {
	tbl := register.NewTable(register.Catalog())
	sim := New(tbl, Config{Random: fixedRandom(0.5)})

	var observed Reading
	sim.SetOnTick(func(r Reading) { observed = r })

	reading := sim.Tick()

	outdoor, supply, extract, humidity := reading.State.Registers()
	for addr, want := range map[int]int{
		register.OutdoorTemp: outdoor,
		register.SupplyTemp:  supply,
		register.ExtractTemp: extract,
		register.Humidity:    humidity,
	} {
		if got := tbl.Value(addr); got != want {
			t.Errorf("register %d = %d, want %d", addr, got, want)
		}
	}

	if observed.Tick != 1 || sim.Ticks() != 1 {
		t.Errorf("tick counters: callback %d, Ticks() %d, want 1", observed.Tick, sim.Ticks())
	}
	// Catalog defaults: 22.0 C setpoint, fans running, 80 % recovery.
	if !reading.Inputs.FansRunning || reading.Inputs.SetpointC != 22.0 || reading.Inputs.RecoveryPct != 80 {
		t.Errorf("inputs = %+v", reading.Inputs)
	}
}

func TestSimulator_DefaultSetpointWhenMissing(t *testing.T) {
	tbl := register.NewTable([]register.Register{
		{Address: register.OutdoorTemp, Min: -400, Max: 800, ReadOnly: true},
	})
	sim := New(tbl, Config{Random: fixedRandom(0.5)})

	reading := sim.Tick()

	if reading.Inputs.SetpointC != defaultSetpointC {
		t.Errorf("SetpointC = %v, want %v", reading.Inputs.SetpointC, defaultSetpointC)
	}
	if reading.Inputs.FansRunning {
		t.Error("missing fans-running register should read as stopped")
	}
}

func TestSimulator_TickBypassesReadOnly(t *testing.T) {
	tbl := register.NewTable(register.Catalog())
	before := tbl.Value(register.Humidity)
	sim := New(tbl, Config{Random: fixedRandom(0.5)})

	// Drive humidity down over many ticks; the read-only register must follow.
	for i := 0; i < 100; i++ {
		sim.Tick()
	}

	if got := tbl.Value(register.Humidity); got >= before {
		t.Errorf("humidity register = %d, want below %d", got, before)
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	run := func() State {
		tbl := register.NewTable(register.Catalog())
		sim := New(tbl, Config{Random: rand.New(rand.NewPCG(7, 7))})
		for i := 0; i < 20; i++ {
			sim.Tick()
		}
		return sim.State()
	}

	if a, b := run(), run(); a != b {
		t.Errorf("same seed produced %+v and %+v", a, b)
	}
}

func TestSimulator_StartStop(t *testing.T) {
	tbl := register.NewTable(register.Catalog())
	sim := New(tbl, Config{Interval: 5 * time.Millisecond, Seed: 1})

	var ticks atomic.Int64
	sim.SetOnTick(func(Reading) { ticks.Add(1) })

	sim.Start(context.Background())
	sim.Start(context.Background()) // second start is a no-op

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ticks.Load() < 3 {
		t.Fatalf("only %d ticks before deadline", ticks.Load())
	}

	sim.Stop()
	sim.Stop() // idempotent

	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks continued after Stop: %d -> %d", after, got)
	}
}

func TestSimulator_ContextCancelStops(t *testing.T) {
	tbl := register.NewTable(register.Catalog())
	sim := New(tbl, Config{Interval: 5 * time.Millisecond, Seed: 1})

	ctx, cancel := context.WithCancel(context.Background())
	sim.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		sim.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestSimulator_StopBeforeStart(t *testing.T) {
	sim := New(register.NewTable(nil), Config{})
	sim.Stop()
}

func TestSimulator_NoTickWhenAlreadyStopped(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		stop bool
	}{
		{"stop then start", context.Background(), true},
		{"cancelled context", cancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := register.NewTable(register.Catalog())
			outdoor := tbl.Value(register.OutdoorTemp)
			sim := New(tbl, Config{Interval: time.Millisecond, Random: fixedRandom(0.9)})

			if tt.stop {
				sim.Stop()
			}
			sim.Start(tt.ctx)
			sim.wg.Wait()

			if got := sim.Ticks(); got != 0 {
				t.Errorf("Ticks() = %d, want 0", got)
			}
			if got := tbl.Value(register.OutdoorTemp); got != outdoor {
				t.Errorf("outdoor temp = %d, want untouched %d", got, outdoor)
			}
		})
	}
}
