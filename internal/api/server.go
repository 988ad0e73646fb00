package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/ventsim-core/internal/audit"
	"github.com/nerrad567/ventsim-core/internal/firmware"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/config"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/database"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/logging"
	"github.com/nerrad567/ventsim-core/internal/register"
	"github.com/nerrad567/ventsim-core/internal/simulator"
	"github.com/nerrad567/ventsim-core/internal/telemetry"
	"github.com/nerrad567/ventsim-core/internal/unit"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WebSocket event channels.
const (
	ChannelRegisterChanged = "register.changed"
	ChannelSimulatorTick   = "simulator.tick"
)

// TickCounter reports how many simulator ticks have run.
type TickCounter interface {
	Ticks() uint64
}

// ConnectionChecker reports broker connectivity.
type ConnectionChecker interface {
	IsConnected() bool
}

// TelemetryStats reports telemetry publisher counters.
type TelemetryStats interface {
	Stats() telemetry.Stats
}

// Deps holds the dependencies required by the API server.
//
// Unit, Firmware and Logger are required. The rest are optional and leave
// their endpoints or metrics sections empty when nil.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Unit      *unit.Unit
	Firmware  *firmware.Manager
	Simulator TickCounter
	MQTT      ConnectionChecker
	DB        *database.DB
	Audit     audit.Repository
	Telemetry TelemetryStats
	Version   string
}

// Server is the emulated unit's HTTP server.
//
// It serves the legacy device endpoints, the /api/v1 admin API, the
// WebSocket hub and the embedded web UI.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	unit      *unit.Unit
	firmware  *firmware.Manager
	simulator TickCounter
	mqtt      ConnectionChecker
	db        *database.DB
	audit     audit.Repository
	telemetry TelemetryStats
	version   string
	startTime time.Time

	hub    *Hub
	server *http.Server
	cancel context.CancelFunc
	mu     sync.Mutex
	addr   string
}

// New creates a new API server with the given dependencies.
//
// The WebSocket hub exists from construction so change callbacks can be
// wired before Start. The server is not listening until Start is called.
//
// Parameters:
//   - deps: Server dependencies
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If a required dependency is missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Unit == nil {
		return nil, fmt.Errorf("unit is required")
	}
	if deps.Firmware == nil {
		return nil, fmt.Errorf("firmware manager is required")
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		unit:      deps.Unit,
		firmware:  deps.Firmware,
		simulator: deps.Simulator,
		mqtt:      deps.MQTT,
		db:        deps.DB,
		audit:     deps.Audit,
		telemetry: deps.Telemetry,
		version:   deps.Version,
		startTime: time.Now(),
		hub:       NewHub(deps.WS, deps.Logger),
	}
	return s, nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the fully wired router without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// OnRegisterChange broadcasts a register change to WebSocket subscribers.
// Addresses are reported zero-based like the device endpoints.
func (s *Server) OnRegisterChange(c register.Change) {
	c.Address--
	s.hub.Broadcast(ChannelRegisterChanged, c)
}

// OnTick broadcasts a simulator reading to WebSocket subscribers.
func (s *Server) OnTick(r simulator.Reading) {
	s.hub.Broadcast(ChannelSimulatorTick, r)
}

// Start begins listening for HTTP connections.
//
// The listener is bound synchronously so a port conflict is reported here;
// requests are then served in a background goroutine until Close.
//
// Parameters:
//   - ctx: Parent context for the WebSocket hub
//
// Returns:
//   - error: If the listen address cannot be bound
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	s.logger.Info("API server listening", "address", s.addr)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
