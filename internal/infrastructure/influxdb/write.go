package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementSensors         = "ventilation_sensors"
	MeasurementRegisterChanges = "register_changes"
)

// SensorSample is one simulator reading with the actuator outputs it was
// computed from.
type SensorSample struct {
	Serial        string
	Time          time.Time
	OutdoorC      float64
	SupplyC       float64
	ExtractC      float64
	HumidityPct   float64
	SupplyFanPct  int
	ExtractFanPct int
	HeaterPct     int
	CoolerPct     int
}

// NewSensorPoint builds the ventilation_sensors point for s, tagged with the
// unit serial number.
func NewSensorPoint(s SensorSample) *write.Point {
	return write.NewPoint(
		MeasurementSensors,
		map[string]string{"serial": s.Serial},
		map[string]any{
			"outdoor_c":       s.OutdoorC,
			"supply_c":        s.SupplyC,
			"extract_c":       s.ExtractC,
			"humidity_pct":    s.HumidityPct,
			"supply_fan_pct":  s.SupplyFanPct,
			"extract_fan_pct": s.ExtractFanPct,
			"heater_pct":      s.HeaterPct,
			"cooler_pct":      s.CoolerPct,
		},
		s.Time,
	)
}

// NewRegisterChangePoint builds a register_changes point. The address tag is
// zero-based; source is "external" or "internal".
func NewRegisterChangePoint(serial string, zeroBased, oldValue, newValue int, external bool, at time.Time) *write.Point {
	source := "internal"
	if external {
		source = "external"
	}
	return write.NewPoint(
		MeasurementRegisterChanges,
		map[string]string{
			"serial":  serial,
			"address": strconv.Itoa(zeroBased),
			"source":  source,
		},
		map[string]any{
			"old": oldValue,
			"new": newValue,
		},
		at,
	)
}

// WriteSensors queues a sensor sample. Non-blocking.
func (c *Client) WriteSensors(s SensorSample) {
	c.WritePoint(NewSensorPoint(s))
}

// WriteRegisterChange queues a register change. Non-blocking.
func (c *Client) WriteRegisterChange(serial string, zeroBased, oldValue, newValue int, external bool, at time.Time) {
	c.WritePoint(NewRegisterChangePoint(serial, zeroBased, oldValue, newValue, external, at))
}

// WritePoint queues p. Points written while disconnected are dropped.
func (c *Client) WritePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}
