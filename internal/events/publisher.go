// Package events carries transaction change notifications over RabbitMQ.
package events

import (
	"context"

	"dompet/internal/logger"
)

// Publisher publishes transaction events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishTransaction(ctx context.Context, event *TransactionEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// PublishTransaction implements Publisher.
func (NopPublisher) PublishTransaction(ctx context.Context, event *TransactionEvent) error {
	logger.Named("events").Debugw("event dropped, no broker configured",
		"action", event.Action,
		"transaction_id", event.TransactionID,
	)
	return nil
}

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
