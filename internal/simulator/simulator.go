package simulator

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// DefaultInterval is the tick period of the real unit's sensor refresh.
const DefaultInterval = 5 * time.Second

// defaultSetpointC is used when the setpoint register is missing.
const defaultSetpointC = 22.0

// Store is the register access the simulator needs. *register.Table satisfies it.
type Store interface {
	Get(address int) (register.Register, bool)
	GetOrDefault(address int) register.Register
	Write(address, value int, external bool) (int, register.Outcome)
}

// Logger defines the logging interface used by the Simulator.
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

// Reading is one completed tick.
type Reading struct {
	Tick      uint64    `json:"tick"`
	Timestamp time.Time `json:"timestamp"`
	Inputs    Inputs    `json:"inputs"`
	State     State     `json:"state"`
}

// Config holds simulator construction options.
type Config struct {
	// Interval is the tick period. Default: 5 seconds.
	Interval time.Duration

	// Random is the noise source. Default: PCG seeded from Seed.
	Random RandomSource

	// Seed seeds the default noise source. 0 seeds from the clock.
	Seed int64
}

// Simulator runs the model on a fixed period against a register store.
//
// Thread Safety: all methods are safe for concurrent use. Ticks never
// overlap.
type Simulator struct {
	store    Store
	interval time.Duration

	// mu guards state and rnd and is held for a whole tick.
	mu    sync.Mutex
	state State
	rnd   RandomSource
	ticks atomic.Uint64

	onTick func(Reading)
	logger Logger

	// Shutdown coordination (stopOnce prevents double-close panics)
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a simulator over store.
//
// Parameters:
//   - store: Register table to read demands from and write sensors to
//   - cfg: Tick period and noise source
//
// Returns:
//   - *Simulator: Ready to start (call Start to begin ticking)
func New(store Store, cfg Config) *Simulator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	rnd := cfg.Random
	if rnd == nil {
		seed := uint64(cfg.Seed) //nolint:gosec // seed bits, sign irrelevant
		if seed == 0 {
			seed = uint64(time.Now().UnixNano()) //nolint:gosec // seed bits, sign irrelevant
		}
		rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	return &Simulator{
		store:    store,
		interval: interval,
		state:    InitialState(),
		rnd:      rnd,
		logger:   noopLogger{},
		done:     make(chan struct{}),
	}
}

// SetLogger sets the logger for the simulator. Call before Start.
func (s *Simulator) SetLogger(logger Logger) {
	s.logger = logger
}

// SetOnTick registers a callback run after every tick. Call before Start.
// The callback runs on the simulator goroutine and must not block.
func (s *Simulator) SetOnTick(fn func(Reading)) {
	s.onTick = fn
}

// Start begins periodic ticking. The first tick runs immediately unless the
// simulator is already stopped or ctx is already cancelled, in which case no
// tick runs at all. Calling Start more than once has no further effect.
//
// Parameters:
//   - ctx: Context for cancellation (ticking stops when cancelled)
func (s *Simulator) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.loop(ctx)
		s.logger.Info("simulator started", "interval", s.interval.String())
	})
}

// Stop halts ticking and waits for an in-flight tick to finish.
// No tick runs after Stop returns. The last committed values stay in the
// table. Safe to call multiple times and before Start.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.logger.Info("simulator stopped", "ticks", s.ticks.Load())
	})
}

// State returns the current continuous model state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns the number of completed ticks.
func (s *Simulator) Ticks() uint64 {
	return s.ticks.Load()
}

func (s *Simulator) loop(ctx context.Context) {
	defer s.wg.Done()

	// Start after Stop, or with a cancelled ctx, must not write a tick.
	select {
	case <-ctx.Done():
		return
	case <-s.done:
		return
	default:
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			// Stop may have raced with the ticker; prefer shutdown.
			select {
			case <-s.done:
				return
			default:
			}
			s.Tick()
		}
	}
}

// Tick runs one simulation step immediately and returns its reading.
//
// The loop calls it on every period; tests and tools may call it directly.
func (s *Simulator) Tick() Reading {
	s.mu.Lock()
	in := s.readInputs()
	s.state = s.state.Step(in, s.rnd)
	state := s.state
	n := s.ticks.Add(1)

	outdoor, supply, extract, humidity := state.Registers()
	s.store.Write(register.OutdoorTemp, outdoor, false)
	s.store.Write(register.SupplyTemp, supply, false)
	s.store.Write(register.ExtractTemp, extract, false)
	s.store.Write(register.Humidity, humidity, false)
	s.mu.Unlock()

	s.logger.Debug("simulator tick",
		"outdoor_c", state.OutdoorC,
		"supply_c", state.SupplyC,
		"extract_c", state.ExtractC,
		"humidity_pct", state.HumidityPct,
	)

	reading := Reading{Tick: n, Timestamp: time.Now().UTC(), Inputs: in, State: state}
	if s.onTick != nil {
		s.onTick(reading)
	}
	return reading
}

func (s *Simulator) readInputs() Inputs {
	setpoint := defaultSetpointC
	if r, ok := s.store.Get(register.Setpoint); ok {
		setpoint = float64(r.Value) / 10
	}
	return Inputs{
		SetpointC:   setpoint,
		HeaterPct:   float64(s.store.GetOrDefault(register.HeaterDemand).Value),
		CoolerPct:   float64(s.store.GetOrDefault(register.CoolerDemand).Value),
		RecoveryPct: float64(s.store.GetOrDefault(register.HeatRecoveryDemand).Value),
		FansRunning: s.store.GetOrDefault(register.FansRunning).Value == 1,
	}
}
