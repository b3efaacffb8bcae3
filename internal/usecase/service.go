package usecase

import (
	"context"
	"time"

	"car-rental/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives lifecycle events after they are committed. Calls must
// not block and failures stay inside the notifier.
type Notifier interface {
	NotifyReservationConfirmed(reservationID uuid.UUID)
	NotifyReservationCancelled(reservationID uuid.UUID)
	NotifyPaymentReceived(paymentID uuid.UUID)
}

// VehicleLocker serialises booking attempts for one vehicle across
// instances. The returned func releases the lock.
type VehicleLocker interface {
	Lock(ctx context.Context, vehicleID uuid.UUID) (func(), error)
}

// QREncoder turns content into a base64 encoded image.
type QREncoder interface {
	Encode(content string) (string, error)
}

type Service struct {
	Reservation ReservationService
	Payment     PaymentService
}

type Dependencies struct {
	Repo       *repository.Repository
	Transactor repository.Transactor
	Notifier   Notifier
	Locker     VehicleLocker
	QR         QREncoder
	Now        func() time.Time
}

func NewService(deps Dependencies, log *zap.Logger) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Locker == nil {
		deps.Locker = noopLocker{}
	}
	if deps.Notifier == nil {
		deps.Notifier = noopNotifier{}
	}

	return &Service{
		Reservation: NewReservationService(deps, log),
		Payment:     NewPaymentService(deps, log),
	}
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyReservationConfirmed(uuid.UUID) {}
func (noopNotifier) NotifyReservationCancelled(uuid.UUID) {}
func (noopNotifier) NotifyPaymentReceived(uuid.UUID)      {}
