package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"smart-bin.backend/pkg/logger"
)

// Channel selects a delivery medium
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Dispatcher delivers verification payloads out of band. Fire-and-forget:
// delivery failure is reported to the caller but never retried here.
type Dispatcher interface {
	Send(ctx context.Context, channel Channel, destination, payload string) (string, error)
}

// LogDispatcher writes would-be deliveries to the log. Used in development
// and tests; production wires a real email/SMS gateway behind Dispatcher.
type LogDispatcher struct{}

// NewLogDispatcher creates a new log-backed dispatcher
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Send logs the delivery and returns a synthetic delivery id
func (d *LogDispatcher) Send(ctx context.Context, channel Channel, destination, payload string) (string, error) {
	deliveryID := uuid.New().String()
	logger.Info(ctx, "dispatching notification",
		zap.String("channel", string(channel)),
		zap.String("destination", destination),
		zap.String("delivery_id", deliveryID),
	)
	_ = payload // payload carries the token; never logged
	return deliveryID, nil
}
