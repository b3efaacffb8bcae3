package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/errs"
	"car-rental/pkg/locker"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	ConfirmReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	StartReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	CompleteReservation(ctx context.Context, reservationID string, req *request.CompleteReservationRequest) (*response.ReservationResponse, error)
	CancelReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error)
	GenerateQRCode(ctx context.Context, reservationID string) (*response.QRCodeResponse, error)

	// Queries
	GetReservationByID(ctx context.Context, reservationID string) (*response.ReservationDetailResponse, error)
	GetCustomerReservations(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationSummaryResponse], error)
	ListReservations(ctx context.Context, req *request.ListReservationsRequest) (*response.PaginatedResponse[response.ReservationSummaryResponse], error)
	SearchReservations(ctx context.Context, req *request.SearchReservationsRequest) (*response.PaginatedResponse[response.ReservationSummaryResponse], error)
	CheckAvailability(ctx context.Context, vehicleID string, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
}

type reservationService struct {
	repo     *repository.Repository
	tx       repository.Transactor
	notifier Notifier
	locker   VehicleLocker
	qr       QREncoder
	now      func() time.Time
	log      *zap.Logger
}

func NewReservationService(deps Dependencies, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:     deps.Repo,
		tx:       deps.Transactor,
		notifier: deps.Notifier,
		locker:   deps.Locker,
		qr:       deps.QR,
		now:      deps.Now,
		log:      log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", fields))
		return nil, &errs.ValidationError{Fields: fields}
	}

	customerID, err := parseID("customer", req.CustomerID)
	if err != nil {
		return nil, err
	}
	vehicleID, err := parseID("vehicle", req.VehicleID)
	if err != nil {
		return nil, err
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	now := s.now()

	customer, err := s.repo.Customer.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", customerID, err)
	}
	if customer == nil {
		return nil, errs.NotFound("customer", customerID)
	}
	if !customer.IsEligibleAt(now) {
		return nil, errs.Conflict("customer %s is not eligible to rent", customerID)
	}

	vehicle, err := s.repo.Vehicle.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("load vehicle %s: %w", vehicleID, err)
	}
	if vehicle == nil {
		return nil, errs.NotFound("vehicle", vehicleID)
	}
	if !vehicle.IsBookable() {
		return nil, errs.Conflict("vehicle %s is %s", vehicleID, vehicle.Status)
	}

	reservation, err := entity.NewReservation(customerID, vehicleID, startDate, endDate,
		vehicle.EffectiveDailyRate(), req.Notes, now)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, locker.ErrNotAcquired) {
			return nil, errs.Conflict("vehicle %s is being booked by another request", vehicleID)
		}
		return nil, fmt.Errorf("lock vehicle %s: %w", vehicleID, err)
	}
	defer unlock()

	err = retryOnConflict(ctx, func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
			available, err := NewAvailabilityChecker(tx.Reservation).IsAvailable(ctx, vehicleID, startDate, endDate)
			if err != nil {
				return err
			}
			if !available {
				return errs.Conflict("vehicle %s is not available from %s to %s",
					vehicleID, req.StartDate, req.EndDate)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return tx.Reservation.Create(ctx, reservation)
		})
	}, WithRetryLogger(s.log, "create"))
	if err != nil {
		s.log.Warn("Create reservation failed",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.log.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("vehicle_id", vehicleID.String()),
		zap.String("total_amount", reservation.TotalAmount.String()),
	)

	return response.ReservationToResponse(reservation), nil
}

func (s *reservationService) ConfirmReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	reservation, err := s.transition(ctx, "confirm", reservationID,
		func(_ context.Context, _ *repository.Repository, r *entity.Reservation, now time.Time) error {
			return r.Confirm(now)
		})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyReservationConfirmed(reservation.ID)
	return response.ReservationToResponse(reservation), nil
}

// StartReservation hands the vehicle to the customer.
func (s *reservationService) StartReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	reservation, err := s.transition(ctx, "start", reservationID,
		func(ctx context.Context, tx *repository.Repository, r *entity.Reservation, now time.Time) error {
			if err := r.Start(now); err != nil {
				return err
			}
			return tx.Vehicle.UpdateStatus(ctx, r.VehicleID, entity.VehicleStatusRented)
		})
	if err != nil {
		return nil, err
	}

	return response.ReservationToResponse(reservation), nil
}

// CompleteReservation checks the vehicle back in with its odometer reading.
func (s *reservationService) CompleteReservation(ctx context.Context, reservationID string, req *request.CompleteReservationRequest) (*response.ReservationResponse, error) {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, &errs.ValidationError{Fields: fields}
	}
	finalMileage := *req.FinalMileage

	reservation, err := s.transition(ctx, "complete", reservationID,
		func(ctx context.Context, tx *repository.Repository, r *entity.Reservation, now time.Time) error {
			if err := r.Complete(finalMileage, now); err != nil {
				return err
			}

			vehicle, err := tx.Vehicle.FindByID(ctx, r.VehicleID)
			if err != nil {
				return fmt.Errorf("load vehicle %s: %w", r.VehicleID, err)
			}
			if vehicle == nil {
				return errs.NotFound("vehicle", r.VehicleID)
			}
			if finalMileage < vehicle.Mileage {
				return errs.InvalidInput("final mileage %d is below current mileage %d", finalMileage, vehicle.Mileage)
			}

			return tx.Vehicle.UpdateMileage(ctx, r.VehicleID, finalMileage, entity.VehicleStatusAvailable)
		})
	if err != nil {
		return nil, err
	}

	return response.ReservationToResponse(reservation), nil
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID string) (*response.ReservationResponse, error) {
	reservation, err := s.transition(ctx, "cancel", reservationID,
		func(_ context.Context, _ *repository.Repository, r *entity.Reservation, now time.Time) error {
			return r.Cancel(now)
		})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyReservationCancelled(reservation.ID)
	return response.ReservationToResponse(reservation), nil
}

type qrPayload struct {
	ReservationID string          `json:"reservation_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Vehicle       string          `json:"vehicle"`
	LicensePlate  string          `json:"license_plate"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
}

// GenerateQRCode encodes the reservation's details as a QR image and stores
// it on the reservation.
func (s *reservationService) GenerateQRCode(ctx context.Context, reservationID string) (*response.QRCodeResponse, error) {
	id, err := parseID("reservation", reservationID)
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.Reservation.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reservation %s: %w", id, err)
	}
	if detail == nil {
		return nil, errs.NotFound("reservation", id)
	}
	if detail.Status.IsTerminal() {
		return nil, &errs.StateError{Operation: "generate QR code for", Current: string(detail.Status)}
	}

	content, err := json.Marshal(qrPayload{
		ReservationID: detail.ID.String(),
		CustomerName:  detail.CustomerName,
		CustomerEmail: detail.CustomerEmail,
		Vehicle:       detail.VehicleBrand + " " + detail.VehicleModel,
		LicensePlate:  detail.LicensePlate,
		StartDate:     detail.StartDate.Format(utils.DateLayout),
		EndDate:       detail.EndDate.Format(utils.DateLayout),
		TotalAmount:   detail.TotalAmount,
		Status:        string(detail.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal QR payload: %w", err)
	}

	code, err := s.qr.Encode(string(content))
	if err != nil {
		return nil, fmt.Errorf("encode QR code for reservation %s: %w", id, err)
	}

	if _, err := s.transition(ctx, "set QR code on", reservationID,
		func(_ context.Context, _ *repository.Repository, r *entity.Reservation, now time.Time) error {
			return r.SetQRCode(code, now)
		}); err != nil {
		return nil, err
	}

	return &response.QRCodeResponse{ReservationID: id.String(), QRCode: code}, nil
}

type transitionFunc func(ctx context.Context, tx *repository.Repository, r *entity.Reservation, now time.Time) error

// transition loads the reservation under a row lock, applies fn and saves
// the result in one transaction, retrying on deadlocks and serialization
// failures.
func (s *reservationService) transition(ctx context.Context, op, reservationID string, fn transitionFunc) (*entity.Reservation, error) {
	id, err := parseID("reservation", reservationID)
	if err != nil {
		return nil, err
	}

	var reservation *entity.Reservation
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
			r, err := tx.Reservation.FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if r == nil {
				return errs.NotFound("reservation", id)
			}

			if err := fn(ctx, tx, r, s.now()); err != nil {
				return err
			}

			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Reservation.Update(ctx, r); err != nil {
				return err
			}

			reservation = r
			return nil
		})
	}, WithRetryLogger(s.log, op))
	if err != nil {
		s.log.Warn("Reservation transition rejected",
			zap.String("operation", op),
			zap.String("reservation_id", id.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s reservation %s: %w", op, id, err)
	}

	s.log.Info("Reservation updated",
		zap.String("operation", op),
		zap.String("reservation_id", id.String()),
		zap.String("status", string(reservation.Status)),
	)
	return reservation, nil
}

func (s *reservationService) GetReservationByID(ctx context.Context, reservationID string) (*response.ReservationDetailResponse, error) {
	id, err := parseID("reservation", reservationID)
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.Reservation.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	if detail == nil {
		return nil, errs.NotFound("reservation", id)
	}

	return response.ReservationDetailToResponse(detail), nil
}

func (s *reservationService) GetCustomerReservations(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationSummaryResponse], error) {
	id, err := parseID("customer", customerID)
	if err != nil {
		return nil, err
	}
	page := req.Normalize()

	customer, err := s.repo.Customer.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", id, err)
	}
	if customer == nil {
		return nil, errs.NotFound("customer", id)
	}

	details, err := s.repo.Reservation.FindByCustomer(ctx, id, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("get reservations of customer %s: %w", id, err)
	}
	total, err := s.repo.Reservation.CountByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count reservations of customer %s: %w", id, err)
	}

	return response.NewPaginatedResponse(toSummaries(details), page.Page, page.PerPage, total), nil
}

func (s *reservationService) ListReservations(ctx context.Context, req *request.ListReservationsRequest) (*response.PaginatedResponse[response.ReservationSummaryResponse], error) {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, &errs.ValidationError{Fields: fields}
	}
	page := req.PaginatedRequest.Normalize()

	var status *entity.ReservationStatus
	if req.Status != "" {
		st, err := entity.ParseReservationStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}

	details, err := s.repo.Reservation.List(ctx, status, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	total, err := s.repo.Reservation.Count(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	return response.NewPaginatedResponse(toSummaries(details), page.Page, page.PerPage, total), nil
}

func (s *reservationService) SearchReservations(ctx context.Context, req *request.SearchReservationsRequest) (*response.PaginatedResponse[response.ReservationSummaryResponse], error) {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		s.log.Warn("Search reservations validation failed", zap.Any("errors", fields))
		return nil, &errs.ValidationError{Fields: fields}
	}

	filter, page, err := searchFilter(req)
	if err != nil {
		return nil, err
	}

	details, total, err := s.repo.Reservation.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search reservations: %w", err)
	}

	return response.NewPaginatedResponse(toSummaries(details), page.Page, page.PerPage, total), nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, vehicleID string, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, &errs.ValidationError{Fields: fields}
	}

	id, err := parseID("vehicle", vehicleID)
	if err != nil {
		return nil, err
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load vehicle %s: %w", id, err)
	}
	if vehicle == nil {
		return nil, errs.NotFound("vehicle", id)
	}

	available := false
	if vehicle.IsBookable() {
		available, err = NewAvailabilityChecker(s.repo.Reservation).IsAvailable(ctx, id, startDate, endDate)
		if err != nil {
			return nil, err
		}
	}

	return &response.AvailabilityResponse{
		VehicleID: id.String(),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Available: available,
	}, nil
}

// searchFilter converts an already validated search request.
func searchFilter(req *request.SearchReservationsRequest) (repository.ReservationFilter, request.PaginatedRequest, error) {
	page := req.PaginatedRequest.Normalize()

	filter := repository.ReservationFilter{
		Term:       req.Search,
		SortBy:     req.SortBy,
		Descending: req.SortOrder != "asc",
		Limit:      page.Limit(),
		Offset:     page.Offset(),
	}
	if filter.SortBy == "" {
		filter.SortBy = repository.SortByCreatedAt
	}

	if req.Status != "" {
		status, err := entity.ParseReservationStatus(req.Status)
		if err != nil {
			return filter, page, err
		}
		filter.Status = &status
	}

	var err error
	if filter.StartDateFrom, err = utils.ParseOptionalDate(req.StartDateFrom); err != nil {
		return filter, page, errs.InvalidInput("start_date_from: %v", err)
	}
	if filter.StartDateTo, err = utils.ParseOptionalDate(req.StartDateTo); err != nil {
		return filter, page, errs.InvalidInput("start_date_to: %v", err)
	}
	if filter.MinAmount, err = utils.ParseOptionalDecimal(req.MinAmount); err != nil {
		return filter, page, errs.InvalidInput("min_amount: %v", err)
	}
	if filter.MaxAmount, err = utils.ParseOptionalDecimal(req.MaxAmount); err != nil {
		return filter, page, errs.InvalidInput("max_amount: %v", err)
	}

	return filter, page, nil
}

func toSummaries(details []*entity.ReservationDetail) []response.ReservationSummaryResponse {
	summaries := make([]response.ReservationSummaryResponse, 0, len(details))
	for _, d := range details {
		summaries = append(summaries, response.ReservationToSummary(d))
	}
	return summaries
}

func parseID(kind, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errs.InvalidInput("invalid %s ID %q", kind, value)
	}
	return id, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := utils.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, errs.InvalidInput("invalid start date %q", start)
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, errs.InvalidInput("invalid end date %q", end)
	}
	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, errs.InvalidInput("end date %s must be after start date %s", end, start)
	}
	return startDate, endDate, nil
}
