// Package notification publishes booking events and turns them into mail.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/models"
	"residentbook-backend-go/pkg/messagequeue"
)

// QueueNotifier publishes booking events as JSON to a message queue.
// Failures are logged; the booking itself is already committed.
type QueueNotifier struct {
	queue     messagequeue.MessageQueue
	queueName string
	logger    *zap.Logger
	now       func() time.Time
}

var _ core.BookingNotifier = (*QueueNotifier)(nil)

func NewQueueNotifier(queue messagequeue.MessageQueue, queueName string, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{queue: queue, queueName: queueName, logger: logger, now: time.Now}
}

func (n *QueueNotifier) NotifyBookingCreated(ctx context.Context, b *models.Booking) {
	n.publish(ctx, models.NewBookingEvent(models.EventBookingCreated, b, n.now()))
}

func (n *QueueNotifier) NotifyBookingCancelled(ctx context.Context, b *models.Booking) {
	n.publish(ctx, models.NewBookingEvent(models.EventBookingCancelled, b, n.now()))
}

func (n *QueueNotifier) publish(ctx context.Context, event models.BookingEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to encode booking event", zap.String("bookingId", event.BookingID), zap.Error(err))
		return
	}
	if err := n.queue.Publish(ctx, n.queueName, body); err != nil {
		n.logger.Warn("Failed to publish booking event",
			zap.String("type", event.Type), zap.String("bookingId", event.BookingID), zap.Error(err))
		return
	}
	n.logger.Debug("Booking event published", zap.String("type", event.Type), zap.String("bookingId", event.BookingID))
}

// LogNotifier only logs events. It stands in when no queue is configured.
type LogNotifier struct {
	logger *zap.Logger
}

var _ core.BookingNotifier = LogNotifier{}

func NewLogNotifier(logger *zap.Logger) LogNotifier { return LogNotifier{logger: logger} }

func (n LogNotifier) NotifyBookingCreated(_ context.Context, b *models.Booking) {
	n.logger.Info("Booking created event", zap.String("bookingId", b.ID), zap.String("email", b.Email))
}

func (n LogNotifier) NotifyBookingCancelled(_ context.Context, b *models.Booking) {
	n.logger.Info("Booking cancelled event", zap.String("bookingId", b.ID), zap.String("email", b.Email))
}
