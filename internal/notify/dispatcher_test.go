package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"car-rental/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*entity.ReservationDetail
	payments     map[uuid.UUID]*entity.Payment
	panicOn      uuid.UUID
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		reservations: map[uuid.UUID]*entity.ReservationDetail{},
		payments:     map[uuid.UUID]*entity.Payment{},
	}
}

func (s *fakeSource) ReservationDetail(_ context.Context, id uuid.UUID) (*entity.ReservationDetail, error) {
	if id == s.panicOn {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id], nil
}

func (s *fakeSource) Payment(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id], nil
}

func (s *fakeSource) addReservation() *entity.ReservationDetail {
	d := &entity.ReservationDetail{
		Reservation: entity.Reservation{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			StartDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			TotalAmount:  decimal.NewFromInt(150),
			Status:       entity.ReservationStatusConfirmed,
		},
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		VehicleBrand:  "Toyota",
		VehicleModel:  "Corolla",
		LicensePlate:  "AB-123-CD",
	}
	s.mu.Lock()
	s.reservations[d.ID] = d
	s.mu.Unlock()
	return d
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	fail   error
	block  chan struct{}
	closed bool
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) published() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func Test_Dispatcher_PublishesReservationEvents(t *testing.T) {
	source := newFakeSource()
	detail := source.addReservation()
	pub := &recordingPublisher{}

	d := NewDispatcher(source, pub, Config{Workers: 2, QueueSize: 8}, zap.NewNop())
	d.Start(context.Background())

	d.NotifyReservationConfirmed(detail.ID)
	d.NotifyReservationCancelled(detail.ID)
	require.NoError(t, d.Close(context.Background()))

	events := pub.published()
	require.Len(t, events, 2)
	types := []EventType{events[0].Type, events[1].Type}
	assert.ElementsMatch(t, []EventType{EventReservationConfirmed, EventReservationCancelled}, types)
	assert.Equal(t, "ada@example.com", events[0].CustomerEmail)
	assert.Equal(t, "Toyota Corolla (AB-123-CD)", events[0].Vehicle)
	assert.Equal(t, "2024-03-01", events[0].StartDate)
	assert.True(t, pub.closed)
}

func Test_Dispatcher_PaymentEventCarriesPayment(t *testing.T) {
	source := newFakeSource()
	detail := source.addReservation()
	ref := "TX-42"
	payment := &entity.Payment{
		BaseNoDelete:         entity.BaseNoDelete{ID: uuid.New()},
		ReservationID:        detail.ID,
		Amount:               decimal.NewFromInt(50),
		Method:               entity.PaymentMethodCash,
		TransactionReference: &ref,
	}
	source.payments[payment.ID] = payment
	pub := &recordingPublisher{}

	d := NewDispatcher(source, pub, Config{}, zap.NewNop())
	d.Start(context.Background())
	d.NotifyPaymentReceived(payment.ID)
	require.NoError(t, d.Close(context.Background()))

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, EventPaymentReceived, events[0].Type)
	assert.Equal(t, detail.ID.String(), events[0].ReservationID)
	require.NotNil(t, events[0].Payment)
	assert.Equal(t, "cash", events[0].Payment.Method)
	assert.Equal(t, &ref, events[0].Payment.TransactionID)
}

func Test_Dispatcher_FailuresAreLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	source := newFakeSource()
	detail := source.addReservation()
	source.panicOn = uuid.New()
	pub := &recordingPublisher{fail: errors.New("broker down")}

	d := NewDispatcher(source, pub, Config{Workers: 1}, zap.New(core))
	d.Start(context.Background())

	d.NotifyReservationConfirmed(detail.ID)
	d.NotifyReservationConfirmed(source.panicOn)
	d.NotifyReservationConfirmed(uuid.New()) // unknown reservation
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("Failed to publish notification").Len())
	assert.Equal(t, 1, logs.FilterMessage("Notification panicked").Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to build notification").Len())
}

func Test_Dispatcher_DropsWhenQueueFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	source := newFakeSource()
	detail := source.addReservation()

	// not started: nothing consumes the queue
	d := NewDispatcher(source, &recordingPublisher{}, Config{QueueSize: 1}, zap.New(core))

	d.NotifyReservationConfirmed(detail.ID)
	d.NotifyReservationConfirmed(detail.ID)

	assert.Equal(t, 1, logs.FilterMessage("Notification dropped, queue full").Len())
	require.NoError(t, d.Close(context.Background()))
}

func Test_Dispatcher_DropsAfterClose(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewDispatcher(newFakeSource(), &recordingPublisher{}, Config{}, zap.New(core))
	d.Start(context.Background())
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() { d.NotifyReservationCancelled(uuid.New()) })
	assert.Equal(t, 1, logs.FilterMessage("Notification dropped, dispatcher closed").Len())
	assert.NoError(t, d.Close(context.Background()), "second close is a no-op")
}

func Test_Dispatcher_CloseDeadlineCancelsInFlight(t *testing.T) {
	source := newFakeSource()
	detail := source.addReservation()
	pub := &recordingPublisher{block: make(chan struct{})}

	d := NewDispatcher(source, pub, Config{Workers: 1, JobTimeout: time.Minute}, zap.NewNop())
	d.Start(context.Background())
	d.NotifyReservationConfirmed(detail.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Close(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, pub.published())
}
