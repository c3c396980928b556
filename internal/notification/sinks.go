package notification

import (
	"context"

	"go.uber.org/zap"

	domainNotification "parcel-relay/internal/domain/notification"
	"parcel-relay/internal/logger"
)

// LogSink writes notifications to the structured log. Always configured;
// it doubles as the delivery record in environments without a push layer.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Emit(_ context.Context, n *domainNotification.Notification) error {
	logger.Info("Notification emitted",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("parcel_id", n.ParcelID.String()),
		zap.String("type", n.Type),
		zap.String("message", n.Message),
	)
	return nil
}
