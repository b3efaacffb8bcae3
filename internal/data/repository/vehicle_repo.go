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

type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.VehicleStatus) error
	UpdateMileage(ctx context.Context, id uuid.UUID, mileage int, status entity.VehicleStatus) error
}

type vehicleRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewVehicleRepository(db database.Querier, log *zap.Logger) VehicleRepository {
	return &vehicleRepository{
		db:  db,
		log: log.With(zap.String("repository", "vehicle")),
	}
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	query := `
		SELECT v.id, v.vehicle_type_id, v.brand, v.model, v.year, v.license_plate, v.color,
		       v.mileage, v.status, v.daily_rate, v.created_at, v.updated_at, v.deleted_at,
		       vt.name, vt.base_daily_rate
		FROM vehicles v
		JOIN vehicle_types vt ON vt.id = v.vehicle_type_id
		WHERE v.id = $1 AND v.deleted_at IS NULL
	`

	var vehicle entity.Vehicle
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.VehicleTypeID,
		&vehicle.Brand,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.LicensePlate,
		&vehicle.Color,
		&vehicle.Mileage,
		&vehicle.Status,
		&vehicle.DailyRate,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
		&vehicle.DeletedAt,
		&vehicle.TypeName,
		&vehicle.TypeBaseRate,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vehicle by ID",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
		)
		return nil, fmt.Errorf("find vehicle by ID %s: %w", id, err)
	}

	return &vehicle, nil
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update vehicle status",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update vehicle %s status to %s: %w", id, status, MapError(err))
	}

	if result.RowsAffected() == 0 {
		return errs.NotFound("vehicle", id)
	}

	return nil
}

// UpdateMileage records the odometer reading at check-in together with the
// vehicle's new status.
func (r *vehicleRepository) UpdateMileage(ctx context.Context, id uuid.UUID, mileage int, status entity.VehicleStatus) error {
	query := `UPDATE vehicles SET mileage = $2, status = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, mileage, status)
	if err != nil {
		r.log.Error("Failed to update vehicle mileage",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
			zap.Int("mileage", mileage),
		)
		return fmt.Errorf("update vehicle %s mileage: %w", id, MapError(err))
	}

	if result.RowsAffected() == 0 {
		return errs.NotFound("vehicle", id)
	}

	return nil
}
