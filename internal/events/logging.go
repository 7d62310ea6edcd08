package events

import (
	"context"

	"go.uber.org/zap"
)

// RegisterLogging subscribes a logging handler to every event type.
func RegisterLogging(dispatcher Dispatcher, logger *zap.Logger) {
	handler := func(ctx context.Context, event Event) error {
		logger.Info("event",
			zap.String("type", string(event.Type)),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	for _, eventType := range []EventType{
		EventTicketCreated,
		EventPunishmentApplied,
		EventPunishmentPardoned,
		EventAnalysisCompleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
