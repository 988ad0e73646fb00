package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/ventsim-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/ventsim-core/internal/register"
	"github.com/nerrad567/ventsim-core/internal/simulator"
)

// DefaultQueueSize is the event queue length used when Config leaves it zero.
const DefaultQueueSize = 1024

// Broker is the subset of *mqtt.Client the publisher uses.
type Broker interface {
	Topics() mqtt.Topics
	PublishRetained(topic string, payload []byte) error
	PublishJSON(topic string, v any, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	QoS() byte
}

// PointWriter is the subset of *influxdb.Client the publisher uses.
type PointWriter interface {
	WriteSensors(s influxdb.SensorSample)
	WriteRegisterChange(serial string, zeroBased, oldValue, newValue int, external bool, at time.Time)
}

// Reader supplies register values for sensor samples. Implemented by
// *register.Table.
type Reader interface {
	Value(address int) int
}

// Logger defines the logging interface used by the Publisher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds Publisher construction options.
type Config struct {
	// Serial tags every InfluxDB point.
	Serial    string
	QueueSize int
	// Broker and Points are optional; a nil sink is skipped.
	Broker Broker
	Points PointWriter
	Logger Logger
}

// RegisterMessage is the retained payload of a register state topic.
type RegisterMessage struct {
	Address   int       `json:"address"`
	Value     int       `json:"value"`
	External  bool      `json:"external"`
	Timestamp time.Time `json:"timestamp"`
}

// SensorMessage is the retained payload of the sensors topic.
type SensorMessage struct {
	Tick          uint64    `json:"tick"`
	Timestamp     time.Time `json:"timestamp"`
	OutdoorC      float64   `json:"outdoor_c"`
	SupplyC       float64   `json:"supply_c"`
	ExtractC      float64   `json:"extract_c"`
	HumidityPct   float64   `json:"humidity_pct"`
	SupplyFanPct  int       `json:"supply_fan_pct"`
	ExtractFanPct int       `json:"extract_fan_pct"`
	HeaterPct     int       `json:"heater_pct"`
	CoolerPct     int       `json:"cooler_pct"`
}

// Stats counts publisher activity.
type Stats struct {
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
}

type event struct {
	at      time.Time
	change  *register.Change
	reading *simulator.Reading
}

// Publisher forwards register changes and simulator readings to MQTT and
// InfluxDB.
//
// Thread Safety: OnRegisterChange and OnTick may be called from any
// goroutine. Register state is published from a single worker, which skips
// a change older (by Change.Seq) than one already published for the same
// address so the retained value always matches the table.
type Publisher struct {
	reader Reader
	serial string
	broker Broker
	points PointWriter
	logger Logger

	queue chan event

	// lastSeq is owned by the worker goroutine.
	lastSeq map[int]uint64

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64

	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a publisher. reader supplies fan and heater outputs for
// sensor samples.
func New(reader Reader, cfg Config) *Publisher {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{
		reader:  reader,
		serial:  cfg.Serial,
		broker:  cfg.Broker,
		points:  cfg.Points,
		logger:  logger,
		queue:   make(chan event, size),
		lastSeq: make(map[int]uint64),
		done:    make(chan struct{}),
	}
}

// Enabled reports whether any sink is configured.
func (p *Publisher) Enabled() bool {
	return p.broker != nil || p.points != nil
}

// Start launches the worker. Events queued before Start are kept.
func (p *Publisher) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.run(ctx)
	})
}

// Stop publishes what is still queued and stops the worker. Safe to call
// multiple times, and before Start.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

// Stats returns the activity counters.
func (p *Publisher) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
	}
}

// OnRegisterChange queues a register change. Never blocks.
func (p *Publisher) OnRegisterChange(c register.Change) {
	p.enqueue(event{at: time.Now().UTC(), change: &c})
}

// OnTick queues a simulator reading. Never blocks.
func (p *Publisher) OnTick(r simulator.Reading) {
	p.enqueue(event{at: r.Timestamp, reading: &r})
}

func (p *Publisher) enqueue(e event) {
	if !p.Enabled() {
		return
	}
	select {
	case p.queue <- e:
	default:
		p.dropped.Add(1)
	}
}

func (p *Publisher) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case e := <-p.queue:
			p.publish(e)
		case <-ctx.Done():
			p.flush()
			return
		case <-p.done:
			p.flush()
			return
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case e := <-p.queue:
			p.publish(e)
		default:
			return
		}
	}
}

func (p *Publisher) publish(e event) {
	switch {
	case e.change != nil:
		p.publishChange(e.at, *e.change)
	case e.reading != nil:
		p.publishReading(*e.reading)
	}
}

func (p *Publisher) publishChange(at time.Time, c register.Change) {
	zeroBased := c.Address - 1

	if p.points != nil {
		p.points.WriteRegisterChange(p.serial, zeroBased, c.Old, c.New, c.External, at)
	}
	if p.broker != nil {
		// Seq 0 marks a change that did not come from the table.
		if c.Seq != 0 {
			if c.Seq < p.lastSeq[c.Address] {
				p.logger.Debug("skipped stale register change", "address", zeroBased, "seq", c.Seq)
				return
			}
			p.lastSeq[c.Address] = c.Seq
		}
		msg := RegisterMessage{Address: zeroBased, Value: c.New, External: c.External, Timestamp: at}
		if err := p.broker.PublishJSON(p.broker.Topics().RegisterState(zeroBased), msg, true); err != nil {
			p.failed.Add(1)
			p.logger.Debug("register state publish failed", "address", zeroBased, "error", err)
			return
		}
	}
	p.published.Add(1)
}

func (p *Publisher) publishReading(r simulator.Reading) {
	msg := p.sensorMessage(r)

	if p.points != nil {
		p.points.WriteSensors(influxdb.SensorSample{
			Serial:        p.serial,
			Time:          msg.Timestamp,
			OutdoorC:      msg.OutdoorC,
			SupplyC:       msg.SupplyC,
			ExtractC:      msg.ExtractC,
			HumidityPct:   msg.HumidityPct,
			SupplyFanPct:  msg.SupplyFanPct,
			ExtractFanPct: msg.ExtractFanPct,
			HeaterPct:     msg.HeaterPct,
			CoolerPct:     msg.CoolerPct,
		})
	}
	if p.broker != nil {
		if err := p.broker.PublishJSON(p.broker.Topics().Sensors(), msg, true); err != nil {
			p.failed.Add(1)
			p.logger.Warn("sensor publish failed", "tick", r.Tick, "error", err)
			return
		}
	}
	p.published.Add(1)
}

// sensorMessage combines a reading with the actuator registers it ran against.
func (p *Publisher) sensorMessage(r simulator.Reading) SensorMessage {
	return SensorMessage{
		Tick:          r.Tick,
		Timestamp:     r.Timestamp,
		OutdoorC:      r.State.OutdoorC,
		SupplyC:       r.State.SupplyC,
		ExtractC:      r.State.ExtractC,
		HumidityPct:   r.State.HumidityPct,
		SupplyFanPct:  p.reader.Value(register.SupplyFanPct),
		ExtractFanPct: p.reader.Value(register.ExtractFanPct),
		HeaterPct:     int(r.Inputs.HeaterPct),
		CoolerPct:     int(r.Inputs.CoolerPct),
	}
}
