package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/extraction"
	"github.com/poiesic/concierge/storage"
)

// statusFor maps an error to an HTTP status and a short machine-readable code.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, codeForStatus(fe.Code)
	}

	switch {
	case errors.Is(err, core.ErrSessionCompleted):
		return fiber.StatusGone, "session_completed"
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, extraction.ErrNotCanonical), errors.Is(err, extraction.ErrEmptyValue),
		errors.Is(err, storage.ErrInvalidQuery):
		return fiber.StatusBadRequest, "invalid"
	}

	kind := core.KindOf(err)
	switch kind {
	case core.KindSessionNotFound:
		return fiber.StatusNotFound, kind.String()
	case core.KindSessionExpired:
		return fiber.StatusGone, kind.String()
	case core.KindInvalid:
		return fiber.StatusBadRequest, kind.String()
	case core.KindUpstreamTimeout:
		return fiber.StatusGatewayTimeout, kind.String()
	case core.KindUpstreamUnavailable:
		return fiber.StatusServiceUnavailable, kind.String()
	default:
		return fiber.StatusInternalServerError, core.KindInternal.String()
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "invalid"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "error"
	}
}

// errorHandler renders errors as ErrorResponse JSON.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code := statusFor(err)
		msg := err.Error()
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "err", err)
			if status == fiber.StatusInternalServerError {
				msg = "internal error"
			}
		}
		return c.Status(status).JSON(ErrorResponse{Error: code, Message: msg})
	}
}
