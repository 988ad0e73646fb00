// Package telemetry fans unit activity out to optional external sinks.
//
// Register changes and simulator readings are queued and published by a
// single worker goroutine:
//   - MQTT: retained {prefix}/state/register/{address} and {prefix}/state/sensors
//   - InfluxDB: ventilation_sensors and register_changes points
//
// The queue never blocks the register table or the simulator; events beyond
// its capacity are dropped and counted.
//
// The package also feeds MQTT write commands into the unit, so a broker
// client can change registers the same way an HTTP /mwrite caller does.
package telemetry
