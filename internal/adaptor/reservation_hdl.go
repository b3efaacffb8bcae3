package adaptor

import (
	"context"
	"encoding/json"
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// CreateReservation handles POST /api/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "Reservation created successfully", reservation)
}

// ListReservations handles GET /api/reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListReservationsRequest{
		PaginatedRequest: pageFromQuery(r),
		Status:           query.Get("status"),
	}

	result, err := h.service.ListReservations(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list reservations")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// SearchReservations handles GET /api/reservations/search
func (h *ReservationHandler) SearchReservations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchReservationsRequest{
		PaginatedRequest: pageFromQuery(r),
		Search:           query.Get("search"),
		Status:           query.Get("status"),
		StartDateFrom:    query.Get("start_date_from"),
		StartDateTo:      query.Get("start_date_to"),
		MinAmount:        query.Get("min_amount"),
		MaxAmount:        query.Get("max_amount"),
		SortBy:           query.Get("sort_by"),
		SortOrder:        query.Get("sort_order"),
	}

	result, err := h.service.SearchReservations(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search reservations")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// GetReservationByID handles GET /api/reservations/{id}
func (h *ReservationHandler) GetReservationByID(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.service.GetReservationByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get reservation")
		return
	}

	utils.ResponseSuccess(w, "Reservation retrieved successfully", reservation)
}

// GetCustomerReservations handles GET /api/customers/{id}/reservations
func (h *ReservationHandler) GetCustomerReservations(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	result, err := h.service.GetCustomerReservations(r.Context(), chi.URLParam(r, "id"), &page)
	if err != nil {
		handleServiceError(w, h.log, err, "get customer reservations")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// ConfirmReservation handles POST /api/reservations/{id}/confirm
func (h *ReservationHandler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "confirm reservation", "Reservation confirmed", h.service.ConfirmReservation)
}

// StartReservation handles POST /api/reservations/{id}/start
func (h *ReservationHandler) StartReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start reservation", "Reservation started", h.service.StartReservation)
}

// CancelReservation handles POST /api/reservations/{id}/cancel
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel reservation", "Reservation cancelled", h.service.CancelReservation)
}

// CompleteReservation handles POST /api/reservations/{id}/complete
func (h *ReservationHandler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CompleteReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	reservation, err := h.service.CompleteReservation(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "complete reservation")
		return
	}

	utils.ResponseSuccess(w, "Reservation completed", reservation)
}

// GenerateQRCode handles POST /api/reservations/{id}/qrcode
func (h *ReservationHandler) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.GenerateQRCode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "generate QR code")
		return
	}

	utils.ResponseSuccess(w, "QR code generated", code)
}

// CheckAvailability handles GET /api/vehicles/{id}/availability
func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.AvailabilityRequest{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}

	result, err := h.service.CheckAvailability(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

type transitionCall func(ctx context.Context, reservationID string) (*response.ReservationResponse, error)

func (h *ReservationHandler) transition(w http.ResponseWriter, r *http.Request, operation, message string, call transitionCall) {
	reservation, err := call(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, reservation)
}

func pageFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
}
