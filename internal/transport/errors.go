package transport

import (
	"errors"
	"net/http"

	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusFor maps service and repository errors to an HTTP status and a
// client facing message. Unknown errors are persistence failures and get a
// generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidStock),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrOrderTotalTooLarge),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, repository.ErrUserAlreadyExists):
		return http.StatusConflict, repository.ErrUserAlreadyExists.Error()
	case errors.Is(err, repository.ErrProductNotFound):
		return http.StatusNotFound, repository.ErrProductNotFound.Error()
	case errors.Is(err, repository.ErrCategoryNotFound):
		return http.StatusNotFound, repository.ErrCategoryNotFound.Error()
	case errors.Is(err, repository.ErrOrderNotFound):
		return http.StatusNotFound, repository.ErrOrderNotFound.Error()
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, repository.ErrUserNotFound.Error()
	case errors.Is(err, service.ErrOrderCreation):
		return http.StatusInternalServerError, service.ErrOrderCreation.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondWithError writes the envelope for err. Server side failures are
// logged with their full chain; the client only sees the mapped message.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Debug(msg, zap.Error(err))
	}
	middleware.RespondWithError(w, status, message)
}

// pathID parses the named URL parameter as an id, writing a 400 when it is
// malformed.
func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+resource+" id")
		return uuid.Nil, false
	}
	return id, true
}

// countResponse is the payload of the /get/count endpoints.
type countResponse struct {
	Count int `json:"count"`
}
