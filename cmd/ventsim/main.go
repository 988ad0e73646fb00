// ventsim emulates a Systemair SAVE ventilation unit's local web API.
//
// It serves the unit's device endpoints (/mread, /mwrite, firmware update)
// over a reactive register table, runs a simple physical simulation, and
// optionally mirrors register activity to MQTT, InfluxDB and a SQLite write
// journal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/ventsim-core/internal/api"
	"github.com/nerrad567/ventsim-core/internal/audit"
	"github.com/nerrad567/ventsim-core/internal/firmware"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/config"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/database"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/logging"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/ventsim-core/internal/register"
	"github.com/nerrad567/ventsim-core/internal/simulator"
	"github.com/nerrad567/ventsim-core/internal/telemetry"
	"github.com/nerrad567/ventsim-core/internal/unit"
	"github.com/nerrad567/ventsim-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// journalQueueSize bounds write batches waiting for the SQLite journal.
	journalQueueSize = 256
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting ventsim",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Register table and rules
	table := register.NewTable(register.Catalog())
	table.SetLogger(log)
	table.SetStrictUnknown(cfg.Registers.StrictUnknown)

	vent := unit.New(table, unit.Info{
		Model:           cfg.Unit.Model,
		SerialNumber:    cfg.Unit.SerialNumber,
		HardwareVersion: cfg.Unit.HardwareVersion,
		MAC:             cfg.Unit.MAC,
		ItemNumber:      cfg.Unit.ItemNumber,
	}, log)
	log.Info("register table initialised",
		"registers", table.Len(),
		"catalog", register.CatalogVersion,
		"strict_unknown", cfg.Registers.StrictUnknown,
	)

	fw := firmware.NewManager(firmware.Config{Logger: log})
	defer fw.Stop()

	// Write journal (optional)
	var (
		db       *database.DB
		recorder *audit.Recorder
	)
	if cfg.Database.Enabled {
		db, recorder, err = openJournal(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		defer recorder.Stop()
		vent.SetJournal(recorder)
	} else {
		log.Info("write journal disabled")
	}

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"prefix", cfg.MQTT.TopicPrefix,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	pub := telemetry.New(table, newTelemetryConfig(cfg, mqttClient, influxClient, log))

	var sim *simulator.Simulator
	if cfg.Simulator.Enabled {
		sim = simulator.New(table, simulator.Config{
			Interval: cfg.GetSimulatorInterval(),
			Seed:     cfg.Simulator.Seed,
		})
		sim.SetLogger(log)
	} else {
		log.Info("simulator disabled")
	}

	srv, err := api.New(newAPIDeps(cfg, log, vent, fw, sim, mqttClient, db, pub))
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Hooks go in before any write source (MQTT commands, HTTP, simulator)
	// is started.
	connectSinks(table, sim, pub, srv)

	if mqttClient != nil {
		if err := startCommandIntake(ctx, mqttClient, vent, log); err != nil {
			return err
		}
	}

	if pub.Enabled() {
		pub.Start(ctx)
		defer pub.Stop()
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if sim != nil {
		sim.Start(ctx)
		defer sim.Stop()
		log.Info("simulator started", "interval", cfg.GetSimulatorInterval())
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal", "addr", srv.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: simulator, API server, telemetry,
	// InfluxDB, MQTT, journal, database, firmware manager.

	return nil
}

// getConfigPath returns the configuration file path.
// Uses VENTSIM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VENTSIM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openJournal opens the SQLite database, applies migrations and starts the
// asynchronous write recorder.
func openJournal(ctx context.Context, cfg config.DatabaseConfig, log *logging.Logger) (*database.DB, *audit.Recorder, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("write journal ready", "path", cfg.Path)

	repo := audit.NewSQLiteRepository(db.DB)
	return db, audit.NewRecorder(repo, journalQueueSize, log), nil
}

// newTelemetryConfig builds the publisher options. Disabled sinks stay nil
// interfaces rather than typed nil pointers.
func newTelemetryConfig(cfg *config.Config, mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) telemetry.Config {
	tc := telemetry.Config{
		Serial: cfg.Unit.SerialNumber,
		Logger: log,
	}
	if mqttClient != nil {
		tc.Broker = mqttClient
	}
	if influxClient != nil {
		tc.Points = influxClient
	}
	return tc
}

// newAPIDeps assembles the server dependencies, leaving optional interfaces
// nil for disabled components.
func newAPIDeps(
	cfg *config.Config,
	log *logging.Logger,
	vent *unit.Unit,
	fw *firmware.Manager,
	sim *simulator.Simulator,
	mqttClient *mqtt.Client,
	db *database.DB,
	pub *telemetry.Publisher,
) api.Deps {
	deps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Unit:     vent,
		Firmware: fw,
		DB:       db,
		Version:  version,
	}
	if sim != nil {
		deps.Simulator = sim
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if db != nil {
		deps.Audit = audit.NewSQLiteRepository(db.DB)
	}
	if pub.Enabled() {
		deps.Telemetry = pub
	}
	return deps
}

// eventSink receives register changes and simulator readings.
// Implemented by *telemetry.Publisher and *api.Server.
type eventSink interface {
	OnRegisterChange(c register.Change)
	OnTick(r simulator.Reading)
}

// connectSinks installs the table change hook and the simulator tick hook,
// fanning both out to every sink. sim may be nil.
func connectSinks(table *register.Table, sim *simulator.Simulator, sinks ...eventSink) {
	table.SetOnChange(func(c register.Change) {
		for _, s := range sinks {
			s.OnRegisterChange(c)
		}
	})
	if sim != nil {
		sim.SetOnTick(func(r simulator.Reading) {
			for _, s := range sinks {
				s.OnTick(r)
			}
		})
	}
}

// startCommandIntake subscribes the MQTT write command topic. Messages can
// arrive as soon as it returns, so the change hooks must already be in place.
func startCommandIntake(ctx context.Context, broker telemetry.Broker, writer telemetry.Writer, log *logging.Logger) error {
	commands := telemetry.NewCommandHandler(ctx, broker, writer, log)
	if err := commands.Subscribe(); err != nil {
		return fmt.Errorf("subscribing to MQTT commands: %w", err)
	}
	return nil
}

// healthCheck verifies the enabled infrastructure connections.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Journal database (nil if disabled)
//   - mqttClient: MQTT client (nil if disabled)
//   - influxClient: InfluxDB client (nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
