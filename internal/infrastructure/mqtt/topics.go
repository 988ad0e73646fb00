package mqtt

import (
	"strconv"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves topic_prefix empty.
const DefaultTopicPrefix = "ventsim"

// Topics builds the emulator's MQTT topic names under a common prefix.
//
//	topics := mqtt.NewTopics("ventsim")
//	topics.RegisterState(2000)
//	// Returns: "ventsim/state/register/2000"
type Topics struct {
	Prefix string
}

// NewTopics returns a builder for prefix. An empty prefix selects
// DefaultTopicPrefix; a trailing slash is dropped.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) join(parts ...string) string {
	prefix := t.Prefix
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + "/" + strings.Join(parts, "/")
}

// =============================================================================
// State Topics (published retained)
// =============================================================================

// RegisterState returns the topic carrying one register's value. The address
// is zero-based, as clients of the web API see it.
//
// Example: ventsim/state/register/1160
func (t Topics) RegisterState(zeroBased int) string {
	return t.join("state", "register", strconv.Itoa(zeroBased))
}

// Sensors returns the topic carrying the latest simulator reading.
//
// Example: ventsim/state/sensors
func (t Topics) Sensors() string {
	return t.join("state", "sensors")
}

// SystemStatus returns the online/offline status topic (also the LWT topic).
//
// Example: ventsim/system/status
func (t Topics) SystemStatus() string {
	return t.join("system", "status")
}

// =============================================================================
// Command Topics
// =============================================================================

// WriteCommand returns the topic accepting register write batches. The
// payload is the same JSON object the /mwrite endpoint takes.
//
// Example: ventsim/command/mwrite
func (t Topics) WriteCommand() string {
	return t.join("command", "mwrite")
}

// WriteResult returns the topic a write batch report is published on.
//
// Example: ventsim/response/mwrite/req-abc123
func (t Topics) WriteResult(requestID string) string {
	return t.join("response", "mwrite", requestID)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllRegisterStates matches every register state topic.
//
// Pattern: ventsim/state/register/+
func (t Topics) AllRegisterStates() string {
	return t.join("state", "register", "+")
}

// AllTopics matches everything under the prefix.
//
// Pattern: ventsim/#
func (t Topics) AllTopics() string {
	return t.join("#")
}
