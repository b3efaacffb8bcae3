package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Publisher hands an event to a transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

type job struct {
	kind EventType
	id   uuid.UUID
}

// Dispatcher queues notifications and delivers them from a fixed pool of
// workers. Enqueueing never blocks; a full queue drops the notification.
type Dispatcher struct {
	source    Source
	publisher Publisher
	cfg       Config
	log       *zap.Logger
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan job

	group  *errgroup.Group
	cancel context.CancelFunc
}

func NewDispatcher(source Source, publisher Publisher, cfg Config, log *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}

	return &Dispatcher{
		source:    source,
		publisher: publisher,
		cfg:       cfg,
		log:       log.With(zap.String("component", "notify")),
		now:       func() time.Time { return time.Now().UTC() },
		queue:     make(chan job, cfg.QueueSize),
	}
}

// Start launches the workers. Jobs run under ctx; cancelling it aborts
// in-flight deliveries.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	group, ctx := errgroup.WithContext(ctx)
	d.group = group

	for i := 0; i < d.cfg.Workers; i++ {
		worker := i
		group.Go(func() error {
			for j := range d.queue {
				d.handle(ctx, worker, j)
			}
			return nil
		})
	}

	d.log.Info("Notification dispatcher started",
		zap.Int("workers", d.cfg.Workers),
		zap.Int("queue_size", d.cfg.QueueSize),
	)
}

func (d *Dispatcher) NotifyReservationConfirmed(reservationID uuid.UUID) {
	d.enqueue(job{kind: EventReservationConfirmed, id: reservationID})
}

func (d *Dispatcher) NotifyReservationCancelled(reservationID uuid.UUID) {
	d.enqueue(job{kind: EventReservationCancelled, id: reservationID})
}

func (d *Dispatcher) NotifyPaymentReceived(paymentID uuid.UUID) {
	d.enqueue(job{kind: EventPaymentReceived, id: paymentID})
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Notification dropped, dispatcher closed",
			zap.String("event", string(j.kind)),
			zap.String("id", j.id.String()),
		)
		return
	}

	select {
	case d.queue <- j:
	default:
		d.log.Warn("Notification dropped, queue full",
			zap.String("event", string(j.kind)),
			zap.String("id", j.id.String()),
		)
	}
}

func (d *Dispatcher) handle(ctx context.Context, worker int, j job) {
	log := d.log.With(
		zap.Int("worker", worker),
		zap.String("event", string(j.kind)),
		zap.String("id", j.id.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Notification panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.cfg.JobTimeout)
	defer cancel()

	event, err := d.buildEvent(ctx, j)
	if err != nil {
		log.Error("Failed to build notification", zap.Error(err))
		return
	}

	if err := d.publisher.Publish(ctx, event); err != nil {
		log.Error("Failed to publish notification", zap.Error(err))
		return
	}

	log.Debug("Notification published", zap.String("event_id", event.ID))
}

var errVanished = errors.New("record no longer exists")

func (d *Dispatcher) buildEvent(ctx context.Context, j job) (Event, error) {
	switch j.kind {
	case EventReservationConfirmed, EventReservationCancelled:
		detail, err := d.source.ReservationDetail(ctx, j.id)
		if err != nil {
			return Event{}, fmt.Errorf("load reservation %s: %w", j.id, err)
		}
		if detail == nil {
			return Event{}, fmt.Errorf("reservation %s: %w", j.id, errVanished)
		}
		return newEvent(j.kind, detail, d.now()), nil

	case EventPaymentReceived:
		payment, err := d.source.Payment(ctx, j.id)
		if err != nil {
			return Event{}, fmt.Errorf("load payment %s: %w", j.id, err)
		}
		if payment == nil {
			return Event{}, fmt.Errorf("payment %s: %w", j.id, errVanished)
		}
		detail, err := d.source.ReservationDetail(ctx, payment.ReservationID)
		if err != nil {
			return Event{}, fmt.Errorf("load reservation %s: %w", payment.ReservationID, err)
		}
		if detail == nil {
			return Event{}, fmt.Errorf("reservation %s: %w", payment.ReservationID, errVanished)
		}

		event := newEvent(j.kind, detail, d.now())
		event.Payment = &PaymentInfo{
			ID:            payment.ID.String(),
			Amount:        payment.Amount,
			Method:        string(payment.Method),
			TransactionID: payment.TransactionReference,
		}
		return event, nil
	}

	return Event{}, fmt.Errorf("unknown event type %q", j.kind)
}

// Close stops accepting notifications and waits for the queue to drain.
// When ctx expires first, in-flight deliveries are cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	if d.group == nil {
		return d.publisher.Close()
	}

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.log.Warn("Notification queue not drained before deadline", zap.Int("pending", len(d.queue)))
		d.cancel()
		<-done
	}
	d.cancel()

	if err := d.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("drain notifications: %w", err)
	}
	return nil
}
