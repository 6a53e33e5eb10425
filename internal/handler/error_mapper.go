package handler

import (
	"errors"
	"log/slog"

	"github.com/forgo/jobs/api/internal/model"
	"github.com/forgo/jobs/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Known errors keep their message; anything else becomes a generic 500
// and the cause is only logged.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var svcErr *service.Error
	message := ""
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	// ===== Validation → 400 =====
	case errors.Is(err, service.ErrValidation):
		return model.NewValidationError(message, nil)

	// ===== Authentication → 401 =====
	case errors.Is(err, service.ErrUnauthenticated):
		return model.NewUnauthorizedError(message)

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrNotFound):
		p := model.NewNotFoundError("Resource")
		if message != "" {
			p.Message = message
		}
		return p

	// ===== Default → 500 =====
	default:
		slog.Error("unhandled service error", slog.Any("error", err))
		return model.NewInternalError()
	}
}
