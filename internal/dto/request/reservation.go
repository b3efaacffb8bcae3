package request

type CreateReservationRequest struct {
	CustomerID string  `json:"customer_id" validate:"required,uuid"`
	VehicleID  string  `json:"vehicle_id" validate:"required,uuid"`
	StartDate  string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type CompleteReservationRequest struct {
	FinalMileage *int `json:"final_mileage" validate:"required,gte=0"`
}

type ListReservationsRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
}

type SearchReservationsRequest struct {
	PaginatedRequest
	Search        string `json:"search" validate:"omitempty,max=100"`
	Status        string `json:"status" validate:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
	StartDateFrom string `json:"start_date_from" validate:"omitempty,datetime=2006-01-02"`
	StartDateTo   string `json:"start_date_to" validate:"omitempty,datetime=2006-01-02"`
	MinAmount     string `json:"min_amount" validate:"omitempty,numeric"`
	MaxAmount     string `json:"max_amount" validate:"omitempty,numeric"`
	SortBy        string `json:"sort_by" validate:"omitempty,oneof=start_date total_amount created_at"`
	SortOrder     string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type AvailabilityRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}
