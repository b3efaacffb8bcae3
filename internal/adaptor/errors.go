package adaptor

import (
	"errors"
	"net/http"

	"car-rental/internal/errs"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps a service error onto the response envelope. The
// classification only looks at error kinds, never at message text.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		stateErr      *errs.StateError
		validationErr *errs.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Any("errors", validationErr.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, errs.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.As(err, &stateErr):
		log.Warn(operation+" rejected - invalid state", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), map[string]any{
			"current_status":  stateErr.Current,
			"expected_status": stateErr.Expected,
		})

	case errors.Is(err, errs.ErrInvalidInput):
		log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, errs.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, errs.ErrConcurrencyConflict):
		log.Warn(operation+" failed - concurrent update", zap.Error(err))
		utils.ResponseConflict(w, "The reservation was modified concurrently, please retry")

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
