package notify

import (
	"context"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

// Source is the read-only view of reservations the dispatcher needs.
type Source interface {
	ReservationDetail(ctx context.Context, id uuid.UUID) (*entity.ReservationDetail, error)
	Payment(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
}

type repositorySource struct {
	reservations repository.ReservationRepository
	payments     repository.PaymentRepository
}

func NewRepositorySource(repo *repository.Repository) Source {
	return &repositorySource{
		reservations: repo.Reservation,
		payments:     repo.Payment,
	}
}

func (s *repositorySource) ReservationDetail(ctx context.Context, id uuid.UUID) (*entity.ReservationDetail, error) {
	return s.reservations.FindDetailByID(ctx, id)
}

func (s *repositorySource) Payment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return s.payments.FindByID(ctx, id)
}
