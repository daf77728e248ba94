package controllers

import (
	"errors"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"net/http"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidUserId), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to its status code. Details of
// storage failures are logged, not returned to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger providers.Logger, err error) {
	status := statusFor(err)
	t := providers.GetLogTypeByRequestType(r.Method)
	switch {
	case status == http.StatusInternalServerError:
		logger.Errorf(t, "%s %s: %s", r.Method, r.URL.Path, err)
		providers.WriteJSONError(w, status, "Internal Server Error")
		return
	case status == http.StatusServiceUnavailable:
		logger.Warnf(t, "%s %s: %s", r.Method, r.URL.Path, err)
		w.Header().Set("Retry-After", "1")
	default:
		logger.Debugf(t, "%s %s: %s", r.Method, r.URL.Path, err)
	}
	providers.WriteJSONError(w, status, err.Error())
}
