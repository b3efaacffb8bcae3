package response

import (
	"time"

	"car-rental/internal/data/entity"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type ReservationResponse struct {
	ID           string                   `json:"id"`
	CustomerID   string                   `json:"customer_id"`
	VehicleID    string                   `json:"vehicle_id"`
	StartDate    string                   `json:"start_date"`
	EndDate      string                   `json:"end_date"`
	RentalDays   int                      `json:"rental_days"`
	DailyRate    decimal.Decimal          `json:"daily_rate"`
	TotalAmount  decimal.Decimal          `json:"total_amount"`
	Status       entity.ReservationStatus `json:"status"`
	QRCode       *string                  `json:"qr_code,omitempty"`
	Notes        *string                  `json:"notes,omitempty"`
	FinalMileage *int                     `json:"final_mileage,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

type ReservationDetailResponse struct {
	ReservationResponse
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	VehicleInfo   string `json:"vehicle_info"`
}

type ReservationSummaryResponse struct {
	ID           string                   `json:"id"`
	CustomerName string                   `json:"customer_name"`
	VehicleInfo  string                   `json:"vehicle_info"`
	StartDate    string                   `json:"start_date"`
	EndDate      string                   `json:"end_date"`
	TotalAmount  decimal.Decimal          `json:"total_amount"`
	Status       entity.ReservationStatus `json:"status"`
	CreatedAt    time.Time                `json:"created_at"`
}

type QRCodeResponse struct {
	ReservationID string `json:"reservation_id"`
	QRCode        string `json:"qr_code"`
}

type AvailabilityResponse struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

// Helper converters
func ReservationToResponse(r *entity.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:           r.ID.String(),
		CustomerID:   r.CustomerID.String(),
		VehicleID:    r.VehicleID.String(),
		StartDate:    r.StartDate.Format(dateLayout),
		EndDate:      r.EndDate.Format(dateLayout),
		RentalDays:   r.RentalDays(),
		DailyRate:    r.DailyRate,
		TotalAmount:  r.TotalAmount,
		Status:       r.Status,
		QRCode:       r.QRCode,
		Notes:        r.Notes,
		FinalMileage: r.FinalMileage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ReservationDetailToResponse(d *entity.ReservationDetail) *ReservationDetailResponse {
	return &ReservationDetailResponse{
		ReservationResponse: *ReservationToResponse(&d.Reservation),
		CustomerName:        d.CustomerName,
		CustomerEmail:       d.CustomerEmail,
		VehicleInfo:         d.VehicleInfo(),
	}
}

func ReservationToSummary(d *entity.ReservationDetail) ReservationSummaryResponse {
	return ReservationSummaryResponse{
		ID:           d.ID.String(),
		CustomerName: d.CustomerName,
		VehicleInfo:  d.VehicleInfo(),
		StartDate:    d.StartDate.Format(dateLayout),
		EndDate:      d.EndDate.Format(dateLayout),
		TotalAmount:  d.TotalAmount,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
	}
}
