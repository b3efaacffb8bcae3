package wire

import (
	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wirePayment mounts payment routes under /api/reservations/{id}.
func wirePayment(r chi.Router, h *adaptor.PaymentHandler) {
	r.Post("/payments", h.RecordPayment)
	r.Get("/payments", h.GetPayments)
}
