package usecase

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/errs"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	RecordPayment(ctx context.Context, reservationID string, req *request.RecordPaymentRequest) (*response.PaymentResponse, error)
	GetPaymentsByReservation(ctx context.Context, reservationID string) (*response.ReservationPaymentsResponse, error)
}

type paymentService struct {
	repo     *repository.Repository
	tx       repository.Transactor
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewPaymentService(deps Dependencies, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:     deps.Repo,
		tx:       deps.Transactor,
		notifier: deps.Notifier,
		now:      deps.Now,
		log:      log.With(zap.String("service", "payment")),
	}
}

var payableStatuses = []string{
	string(entity.ReservationStatusPending),
	string(entity.ReservationStatusConfirmed),
	string(entity.ReservationStatusInProgress),
	string(entity.ReservationStatusCompleted),
}

// RecordPayment stores a completed payment against the reservation's
// remaining balance. The reservation row is locked so concurrent payments
// cannot overpay it.
func (s *paymentService) RecordPayment(ctx context.Context, reservationID string, req *request.RecordPaymentRequest) (*response.PaymentResponse, error) {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		s.log.Warn("Record payment validation failed", zap.Any("errors", fields))
		return nil, &errs.ValidationError{Fields: fields}
	}
	if !req.Amount.IsPositive() {
		return nil, errs.InvalidInput("amount %s must be greater than 0", req.Amount)
	}

	id, err := parseID("reservation", reservationID)
	if err != nil {
		return nil, err
	}

	var payment *entity.Payment
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
			reservation, err := tx.Reservation.FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if reservation == nil {
				return errs.NotFound("reservation", id)
			}
			if reservation.Status == entity.ReservationStatusCancelled {
				return &errs.StateError{
					Operation: "record payment for",
					Current:   string(reservation.Status),
					Expected:  payableStatuses,
				}
			}

			existing, err := tx.Payment.FindByReservationID(ctx, id)
			if err != nil {
				return err
			}
			remaining := reservation.TotalAmount.Sub(entity.TotalPaid(existing))
			if req.Amount.GreaterThan(remaining) {
				return errs.Conflict("payment of %s exceeds remaining balance %s", req.Amount, remaining)
			}

			now := s.now()
			p := &entity.Payment{
				BaseNoDelete: entity.BaseNoDelete{
					ID:        uuid.New(),
					CreatedAt: now,
					UpdatedAt: now,
				},
				ReservationID:        id,
				Amount:               req.Amount.Round(2),
				Method:               entity.PaymentMethod(req.Method),
				Status:               entity.PaymentStatusCompleted,
				PaymentDate:          now,
				TransactionReference: req.TransactionReference,
				Notes:                req.Notes,
			}

			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Payment.Create(ctx, p); err != nil {
				return err
			}

			payment = p
			return nil
		})
	}, WithRetryLogger(s.log, "record payment"))
	if err != nil {
		s.log.Warn("Record payment failed",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("amount", req.Amount.String()),
		)
		return nil, fmt.Errorf("record payment for reservation %s: %w", id, err)
	}

	s.log.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reservation_id", id.String()),
		zap.String("amount", payment.Amount.String()),
	)

	s.notifier.NotifyPaymentReceived(payment.ID)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetPaymentsByReservation(ctx context.Context, reservationID string) (*response.ReservationPaymentsResponse, error) {
	id, err := parseID("reservation", reservationID)
	if err != nil {
		return nil, err
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reservation %s: %w", id, err)
	}
	if reservation == nil {
		return nil, errs.NotFound("reservation", id)
	}

	payments, err := s.repo.Payment.FindByReservationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payments of reservation %s: %w", id, err)
	}

	paid := entity.TotalPaid(payments)
	items := make([]response.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, response.PaymentToResponse(p))
	}

	return &response.ReservationPaymentsResponse{
		ReservationID:    id.String(),
		TotalAmount:      reservation.TotalAmount,
		TotalPaid:        paid,
		RemainingBalance: reservation.TotalAmount.Sub(paid),
		FullyPaid:        entity.IsFullyPaid(reservation.TotalAmount, payments),
		Payments:         items,
	}, nil
}
