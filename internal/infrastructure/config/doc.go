// Package config loads the emulator configuration.
//
// Values are resolved in three layers: Default(), then the YAML file, then
// VENTSIM_* environment variables. Validate runs last and reports every
// problem in one error.
//
// Every optional component (SQLite journal, MQTT, InfluxDB) is off by
// default, so an empty file yields a standalone emulator on port 8080.
//
// Secrets (MQTT password, InfluxDB token) are best supplied through
// VENTSIM_MQTT_PASSWORD and VENTSIM_INFLUXDB_TOKEN rather than the file.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
package config
