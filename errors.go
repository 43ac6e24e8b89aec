package opalforge

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// apiError is the JSON body returned for every error response. The HTTP
// status code is the primary machine-readable signal; Error is a stable
// token, Message is human-readable.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorInvalidRequest(msg string) apiError {
	return apiError{Error: "invalid_request", Message: msg}
}

func errorNotFound(msg string) apiError {
	return apiError{Error: "not_found", Message: msg}
}

func errorConflict(msg string) apiError {
	return apiError{Error: "conflict", Message: msg}
}

func errorServerError(msg string) apiError {
	return apiError{Error: "server_error", Message: msg}
}

// handleError is the fiber.App ErrorHandler for errors that escape handlers.
func handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.WithError(err).Error("unhandled request error")
		return c.Status(code).JSON(errorServerError(err.Error()))
	}
	return c.Status(code).JSON(errorInvalidRequest(err.Error()))
}
