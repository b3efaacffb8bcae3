package wire

import (
	"context"
	"net/http"
	"time"

	"car-rental/internal/adaptor"
	"car-rental/internal/usecase"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Router *chi.Mux
}

// Wiring builds the handlers over service and mounts every route.
func Wiring(service *usecase.Service, db Pinger, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, db, config, logger),
	}
}

func setupRouter(handler *adaptor.Handler, db Pinger, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(config.RateLimit.RPS, config.RateLimit.Burst, logger))

	wireReservation(r, handler)

	r.Get("/health", health(db, logger))

	return r
}

func health(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Database unavailable", nil, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
