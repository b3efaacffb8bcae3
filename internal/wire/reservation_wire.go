package wire

import (
	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReservation(r chi.Router, handler *adaptor.Handler) {
	h := handler.Reservation

	r.Route("/api/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListReservations)
		r.Get("/search", h.SearchReservations)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetReservationByID)
			r.Post("/confirm", h.ConfirmReservation)
			r.Post("/start", h.StartReservation)
			r.Post("/complete", h.CompleteReservation)
			r.Post("/cancel", h.CancelReservation)
			r.Post("/qrcode", h.GenerateQRCode)

			wirePayment(r, handler.Payment)
		})
	})

	r.Get("/api/customers/{id}/reservations", h.GetCustomerReservations)
	r.Get("/api/vehicles/{id}/availability", h.CheckAvailability)
}
