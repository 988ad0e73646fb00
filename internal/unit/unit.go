package unit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/ventsim-core/internal/register"
	"github.com/nerrad567/ventsim-core/internal/rules"
)

// Source identifies where a write batch came from.
type Source string

const (
	SourceHTTP Source = "http"
	SourceMQTT Source = "mqtt"
)

// Logger defines the logging interface used by the Unit.
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

// Journal records completed write batches. Implemented by audit.Repository.
type Journal interface {
	Record(ctx context.Context, report WriteReport) error
}

// Info is the identity the unit reports to clients.
type Info struct {
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	HardwareVersion string `json:"hardware_version"`
	MAC             string `json:"mac"`
	ItemNumber      string `json:"item_number"`
}

// WriteRequest is one client write batch.
type WriteRequest struct {
	Source    Source
	RequestID string
	// Entries are zero-based address strings with raw JSON values, applied
	// in slice order.
	Entries []BatchEntry
}

// EntryResult is the outcome of one well-formed entry.
type EntryResult struct {
	Address     int    `json:"address"`
	Requested   int    `json:"requested"`
	Committed   int    `json:"committed"`
	Outcome     string `json:"outcome"`
	RuleApplied bool   `json:"rule_applied,omitempty"`
}

// SkippedEntry is a malformed entry that was not applied.
type SkippedEntry struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// WriteReport summarises a write batch.
type WriteReport struct {
	Source    Source         `json:"source"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Entries   []EntryResult  `json:"entries"`
	Skipped   []SkippedEntry `json:"skipped,omitempty"`
}

// Applied returns the number of entries that changed the table.
func (r WriteReport) Applied() int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == register.OutcomeCommitted.String() || e.Outcome == register.OutcomeCreated.String() {
			n++
		}
	}
	return n
}

// Rejected returns the number of well-formed entries the table dropped.
func (r WriteReport) Rejected() int {
	return len(r.Entries) - r.Applied()
}

// Unit ties the register table and the rule engine together.
//
// Thread Safety: all methods are safe for concurrent use.
type Unit struct {
	table   *register.Table
	engine  *rules.Engine
	info    Info
	journal Journal
	// defaults is the table content at construction, restored by Reset.
	defaults []register.Register
	logger   Logger

	// cascadeMu serialises each external write with its rule cascade.
	cascadeMu sync.Mutex
}

// New creates a unit over table.
//
// Parameters:
//   - table: Register table shared with the simulator
//   - info: Identity reported by the unit endpoints
//   - logger: Logger instance (may be nil)
func New(table *register.Table, info Info, logger Logger) *Unit {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Unit{
		table:    table,
		defaults: table.Snapshot(),
		engine:   rules.NewEngine(table, logger),
		info:     info,
		logger:   logger,
	}
}

// SetJournal sets the write journal. Call before serving requests.
func (u *Unit) SetJournal(j Journal) {
	u.journal = j
}

// Info returns the unit identity.
func (u *Unit) Info() Info {
	return u.info
}

// Table returns the underlying register table.
func (u *Unit) Table() *register.Table {
	return u.table
}

// Engine returns the rule engine.
func (u *Unit) Engine() *rules.Engine {
	return u.engine
}

// ReadRegisters returns the current value for each zero-based address.
// Addresses not in the table read as 0.
func (u *Unit) ReadRegisters(addresses []int) map[int]int {
	out := make(map[int]int, len(addresses))
	for _, a := range addresses {
		out[a] = u.table.GetOrDefault(a + 1).Value
	}
	return out
}

// WriteRegisters applies a client write batch.
//
// Entries are applied in the order given, which is the order the client
// sent them. An entry whose key is not
// a non-negative integer, or whose value is not a 32-bit JSON integer, is
// skipped and reported; the rest of the batch still applies. The rule engine
// runs only for entries the table committed to an existing register.
//
// Parameters:
//   - ctx: Context passed to the journal
//   - req: The batch
//
// Returns:
//   - WriteReport: Per-entry results (never nil entries for an empty batch)
func (u *Unit) WriteRegisters(ctx context.Context, req WriteRequest) WriteReport {
	report := WriteReport{
		Source:    req.Source,
		RequestID: req.RequestID,
		Timestamp: time.Now().UTC(),
		Entries:   []EntryResult{},
	}

	type entry struct {
		address int
		value   int
	}
	entries := make([]entry, 0, len(req.Entries))

	for _, be := range req.Entries {
		key, raw := be.Key, be.Value
		addr, err := strconv.Atoi(key)
		if err != nil || addr < 0 {
			report.Skipped = append(report.Skipped, SkippedEntry{Key: key, Reason: "address is not a non-negative integer"})
			u.logger.Debug("skipping non-register key", "key", key)
			continue
		}
		value, err := parseValue(raw)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Key: key, Reason: "value is not a 32-bit integer"})
			u.logger.Debug("skipping register with non-integer value", "key", key, "value", string(raw))
			continue
		}
		entries = append(entries, entry{address: addr, value: value})
	}

	for _, e := range entries {
		report.Entries = append(report.Entries, u.writeOne(e.address, e.value))
	}

	u.logger.Info("register write batch",
		"source", string(req.Source),
		"applied", report.Applied(),
		"rejected", report.Rejected(),
		"skipped", len(report.Skipped),
	)

	if u.journal != nil && (len(report.Entries) > 0 || len(report.Skipped) > 0) {
		if err := u.journal.Record(ctx, report); err != nil {
			u.logger.Error("failed to journal write batch", "error", err)
		}
	}
	return report
}

// Reset restores every register present at construction to its starting
// value. Registers created later by client writes keep their values. The
// writes are internal, so read-only registers are restored too and no rule
// runs.
//
// Returns:
//   - int: Number of registers whose value changed
func (u *Unit) Reset() int {
	u.cascadeMu.Lock()
	defer u.cascadeMu.Unlock()

	changed := 0
	for _, r := range u.defaults {
		if u.table.Value(r.Address) == r.Value {
			continue
		}
		u.table.Write(r.Address, r.Value, false)
		changed++
	}
	u.logger.Info("registers reset to defaults", "changed", changed)
	return changed
}

// writeOne applies a single entry and its cascade under the cascade lock.
func (u *Unit) writeOne(zeroBased, value int) EntryResult {
	address := zeroBased + 1

	u.cascadeMu.Lock()
	defer u.cascadeMu.Unlock()

	committed, outcome := u.table.Write(address, value, true)
	result := EntryResult{
		Address:   zeroBased,
		Requested: value,
		Committed: committed,
		Outcome:   outcome.String(),
	}

	switch outcome {
	case register.OutcomeCommitted:
		if committed != value {
			u.logger.Debug("value clamped", "address", address, "requested", value, "committed", committed)
		}
		result.RuleApplied = u.engine.Apply(address, committed)
	case register.OutcomeCreated:
		u.logger.Warn("register not in catalog, created", "address", address)
	case register.OutcomeRejectedReadOnly:
		u.logger.Info("ignored write to read-only register", "address", address)
	case register.OutcomeRejectedUnknown:
		u.logger.Info("ignored write to unknown register", "address", address)
	}
	return result
}

// parseValue accepts a bare JSON integer within the 32-bit range.
// Strings, floats, booleans and null are rejected.
func parseValue(raw json.RawMessage) (int, error) {
	v, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing register value: %w", err)
	}
	return int(v), nil
}
