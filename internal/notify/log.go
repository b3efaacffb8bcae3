package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.With(zap.String("publisher", "log"))}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("reservation_id", event.ReservationID),
		zap.String("customer_email", event.CustomerEmail),
		zap.String("vehicle", event.Vehicle),
		zap.String("status", event.Status),
	}
	if event.Payment != nil {
		fields = append(fields, zap.String("payment_id", event.Payment.ID), zap.String("amount", event.Payment.Amount.String()))
	}

	p.log.Info("Notification", fields...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
