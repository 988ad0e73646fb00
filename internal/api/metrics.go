package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Runtime       RuntimeMetrics    `json:"runtime"`
	WebSocket     WSMetrics         `json:"websocket"`
	MQTT          MQTTMetrics       `json:"mqtt"`
	Registers     RegisterMetrics   `json:"registers"`
	Simulator     SimulatorMetrics  `json:"simulator"`
	Firmware      FirmwareMetrics   `json:"firmware"`
	Telemetry     *TelemetryMetrics `json:"telemetry,omitempty"`
	Database      *DatabaseMetrics  `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// RegisterMetrics describes the register table.
type RegisterMetrics struct {
	Total          int    `json:"total"`
	CatalogVersion string `json:"catalog_version"`
	CurrentMode    string `json:"current_mode"`
}

// SimulatorMetrics contains simulator progress.
type SimulatorMetrics struct {
	Enabled bool   `json:"enabled"`
	Ticks   uint64 `json:"ticks"`
}

// FirmwareMetrics contains update state.
type FirmwareMetrics struct {
	Uploaded   int  `json:"uploaded"`
	Updating   bool `json:"updating"`
	Percentage int  `json:"percentage"`
}

// TelemetryMetrics contains publisher counters.
type TelemetryMetrics struct {
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fw := s.firmware.Status()

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Registers: RegisterMetrics{
			Total:          s.unit.Table().Len(),
			CatalogVersion: register.CatalogVersion,
			CurrentMode:    s.unit.Engine().CurrentMode().String(),
		},
		Firmware: FirmwareMetrics{
			Uploaded:   len(s.firmware.Files()),
			Updating:   fw.Updating,
			Percentage: fw.Percentage,
		},
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{
			Enabled:   true,
			Connected: s.mqtt.IsConnected(),
		}
	}

	if s.simulator != nil {
		metrics.Simulator = SimulatorMetrics{
			Enabled: true,
			Ticks:   s.simulator.Ticks(),
		}
	}

	if s.telemetry != nil {
		st := s.telemetry.Stats()
		metrics.Telemetry = &TelemetryMetrics{
			Published: st.Published,
			Dropped:   st.Dropped,
			Failed:    st.Failed,
		}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
