package entity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "available"
	VehicleStatusRented       VehicleStatus = "rented"
	VehicleStatusMaintenance  VehicleStatus = "maintenance"
	VehicleStatusOutOfService VehicleStatus = "out_of_service"
)

type Vehicle struct {
	Base
	VehicleTypeID uuid.UUID        `db:"vehicle_type_id"`
	Brand         string           `db:"brand"`
	Model         string           `db:"model"`
	Year          int              `db:"year"`
	LicensePlate  string           `db:"license_plate"`
	Color         string           `db:"color"`
	Mileage       int              `db:"mileage"`
	Status        VehicleStatus    `db:"status"`
	DailyRate     *decimal.Decimal `db:"daily_rate"`

	// joined from vehicle_types
	TypeName     string          `db:"type_name"`
	TypeBaseRate decimal.Decimal `db:"base_daily_rate"`
}

// EffectiveDailyRate is the vehicle-specific rate when set, otherwise the
// base rate of its type.
func (v *Vehicle) EffectiveDailyRate() decimal.Decimal {
	if v.DailyRate != nil && v.DailyRate.IsPositive() {
		return *v.DailyRate
	}
	return v.TypeBaseRate
}

// IsBookable is false for vehicles withdrawn from the fleet.
func (v *Vehicle) IsBookable() bool {
	return v.Status != VehicleStatusMaintenance && v.Status != VehicleStatusOutOfService && v.DeletedAt == nil
}

// Info formats the vehicle as "Brand Model (Plate)".
func (v *Vehicle) Info() string {
	return fmt.Sprintf("%s %s (%s)", v.Brand, v.Model, v.LicensePlate)
}
