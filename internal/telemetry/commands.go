package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nerrad567/ventsim-core/internal/unit"
)

// Writer applies register write batches. Implemented by *unit.Unit.
type Writer interface {
	WriteRegisters(ctx context.Context, req unit.WriteRequest) unit.WriteReport
}

// CommandHandler feeds MQTT write commands into the unit.
//
// A message on {prefix}/command/mwrite carries the same JSON object the
// /mwrite endpoint accepts. The batch report is published, not retained,
// on {prefix}/response/mwrite/{request-id}.
type CommandHandler struct {
	broker Broker
	writer Writer
	logger Logger
	ctx    context.Context
}

// NewCommandHandler creates a handler. ctx bounds the writes it issues.
func NewCommandHandler(ctx context.Context, broker Broker, writer Writer, logger Logger) *CommandHandler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &CommandHandler{broker: broker, writer: writer, logger: logger, ctx: ctx}
}

// Subscribe registers the handler on the write command topic.
func (h *CommandHandler) Subscribe() error {
	topic := h.broker.Topics().WriteCommand()
	if err := h.broker.Subscribe(topic, h.broker.QoS(), h.Handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	h.logger.Info("listening for MQTT write commands", "topic", topic)
	return nil
}

// Handle decodes and applies one command message. It matches
// mqtt.MessageHandler; a returned error is logged by the MQTT client.
func (h *CommandHandler) Handle(_ string, payload []byte) error {
	entries, err := unit.DecodeWriteBatch(payload)
	if err != nil {
		return fmt.Errorf("decoding write command: %w", err)
	}

	requestID := "mq-" + uuid.NewString()[:8]
	report := h.writer.WriteRegisters(h.ctx, unit.WriteRequest{
		Source:    unit.SourceMQTT,
		RequestID: requestID,
		Entries:   entries,
	})

	if err := h.broker.PublishJSON(h.broker.Topics().WriteResult(requestID), report, false); err != nil {
		return fmt.Errorf("publishing write result: %w", err)
	}
	return nil
}
