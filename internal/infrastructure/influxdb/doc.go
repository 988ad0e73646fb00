// Package influxdb records the emulator's sensor history in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Every simulator tick
// becomes one ventilation_sensors point (outdoor, supply and extract
// temperature, humidity, fan and heater outputs) tagged with the unit serial
// number; register changes can be written as register_changes points.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSensors(influxdb.SensorSample{Serial: "SN-987654321", ...})
//
// Writes are non-blocking and batched (batch_size, flush_interval). Write
// errors are delivered to the SetOnError callback.
package influxdb
