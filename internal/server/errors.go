package server

import (
	"errors"
	"net/http"

	"github.com/joseph-ayodele/purchase-orders/internal/async"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDocumentEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, async.ErrQueueClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := http.StatusText(status)
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("http.request.failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func badRequest(msg string) error {
	return common.NewAppError("INVALID_ARGUMENT", msg, common.ErrInvalidInput)
}
