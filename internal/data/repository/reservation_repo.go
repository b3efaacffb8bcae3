package repository

import (
	"context"
	"errors"
	"fmt"

	"car-rental/internal/data/entity"
	"car-rental/internal/errs"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	Update(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.ReservationDetail, error)

	// Business queries
	FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*entity.Reservation, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.ReservationDetail, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	List(ctx context.Context, status *entity.ReservationStatus, limit, offset int) ([]*entity.ReservationDetail, error)
	Count(ctx context.Context, status *entity.ReservationStatus) (int64, error)
	Search(ctx context.Context, filter ReservationFilter) ([]*entity.ReservationDetail, int64, error)
}

type reservationRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReservationRepository(db database.Querier, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `r.id, r.customer_id, r.vehicle_id, r.start_date, r.end_date, r.daily_rate,
		r.total_amount, r.status, r.qr_code, r.notes, r.final_mileage, r.created_at, r.updated_at`

const reservationDetailColumns = reservationColumns + `,
		c.first_name || ' ' || c.last_name AS customer_name, c.email AS customer_email,
		v.brand AS vehicle_brand, v.model AS vehicle_model, v.license_plate`

const reservationDetailFrom = `reservations r
		JOIN customers c ON c.id = r.customer_id
		JOIN vehicles v ON v.id = r.vehicle_id`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var r entity.Reservation
	err := row.Scan(
		&r.ID,
		&r.CustomerID,
		&r.VehicleID,
		&r.StartDate,
		&r.EndDate,
		&r.DailyRate,
		&r.TotalAmount,
		&r.Status,
		&r.QRCode,
		&r.Notes,
		&r.FinalMileage,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReservationDetail(row pgx.Row) (*entity.ReservationDetail, error) {
	var d entity.ReservationDetail
	err := row.Scan(
		&d.ID,
		&d.CustomerID,
		&d.VehicleID,
		&d.StartDate,
		&d.EndDate,
		&d.DailyRate,
		&d.TotalAmount,
		&d.Status,
		&d.QRCode,
		&d.Notes,
		&d.FinalMileage,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.CustomerName,
		&d.CustomerEmail,
		&d.VehicleBrand,
		&d.VehicleModel,
		&d.LicensePlate,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDetails(rows pgx.Rows) ([]*entity.ReservationDetail, error) {
	defer rows.Close()

	var details []*entity.ReservationDetail
	for rows.Next() {
		d, err := scanReservationDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}
	return details, nil
}

func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, customer_id, vehicle_id, start_date, end_date, daily_rate,
			total_amount, status, qr_code, notes, final_mileage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		reservation.ID,
		reservation.CustomerID,
		reservation.VehicleID,
		reservation.StartDate,
		reservation.EndDate,
		reservation.DailyRate,
		reservation.TotalAmount,
		reservation.Status,
		reservation.QRCode,
		reservation.Notes,
		reservation.FinalMileage,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		err = MapError(err)
		if errors.Is(err, errs.ErrConflict) {
			r.log.Warn("Reservation rejected by overlap constraint",
				zap.String("vehicle_id", reservation.VehicleID.String()),
			)
		} else {
			r.log.Error("Failed to create reservation",
				zap.Error(err),
				zap.String("customer_id", reservation.CustomerID.String()),
				zap.String("vehicle_id", reservation.VehicleID.String()),
			)
		}
		return fmt.Errorf("create reservation %s: %w", reservation.ID, err)
	}

	return nil
}

// Update persists the mutable part of a reservation: status, QR code,
// final mileage and the update timestamp.
func (r *reservationRepository) Update(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $2, qr_code = $3, final_mileage = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		reservation.ID,
		reservation.Status,
		reservation.QRCode,
		reservation.FinalMileage,
		reservation.UpdatedAt,
	)
	if err != nil {
		err = MapError(err)
		r.log.Error("Failed to update reservation",
			zap.Error(err),
			zap.String("reservation_id", reservation.ID.String()),
			zap.String("status", string(reservation.Status)),
		)
		return fmt.Errorf("update reservation %s: %w", reservation.ID, err)
	}

	if result.RowsAffected() == 0 {
		return errs.NotFound("reservation", reservation.ID)
	}

	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	return r.findOne(ctx, id, "")
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	return r.findOne(ctx, id, "FOR UPDATE")
}

func (r *reservationRepository) findOne(ctx context.Context, id uuid.UUID, lock string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1 ` + lock

	reservation, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err = MapError(err)
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id, err)
	}

	return reservation, nil
}

func (r *reservationRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.ReservationDetail, error) {
	query := `SELECT ` + reservationDetailColumns + ` FROM ` + reservationDetailFrom + ` WHERE r.id = $1`

	detail, err := scanReservationDetail(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation detail",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation detail %s: %w", id, err)
	}

	return detail, nil
}

func (r *reservationRepository) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.vehicle_id = $1 AND r.status <> $2
		ORDER BY r.start_date
	`

	rows, err := r.db.Query(ctx, query, vehicleID, entity.ReservationStatusCancelled)
	if err != nil {
		r.log.Error("Failed to find reservations by vehicle",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return nil, fmt.Errorf("find reservations by vehicle %s: %w", vehicleID, err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations by vehicle %s: %w", vehicleID, err)
	}

	return reservations, nil
}

func (r *reservationRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.ReservationDetail, error) {
	query := `SELECT ` + reservationDetailColumns + ` FROM ` + reservationDetailFrom + `
		WHERE r.customer_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by customer",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reservations by customer %s: %w", customerID, err)
	}

	return collectDetails(rows)
}

func (r *reservationRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE customer_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by customer",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count reservations by customer %s: %w", customerID, err)
	}

	return count, nil
}

// List pages through all reservations, newest first, optionally narrowed to
// one status.
func (r *reservationRepository) List(ctx context.Context, status *entity.ReservationStatus, limit, offset int) ([]*entity.ReservationDetail, error) {
	query := `SELECT ` + reservationDetailColumns + ` FROM ` + reservationDetailFrom + `
		WHERE ($1::text IS NULL OR r.status = $1)
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, statusArg(status), limit, offset)
	if err != nil {
		r.log.Error("Failed to list reservations", zap.Error(err))
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return collectDetails(rows)
}

func (r *reservationRepository) Count(ctx context.Context, status *entity.ReservationStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE ($1::text IS NULL OR status = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, statusArg(status)).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations", zap.Error(err))
		return 0, fmt.Errorf("count reservations: %w", err)
	}

	return count, nil
}

func statusArg(status *entity.ReservationStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}
