package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

func Health(c *fiber.Ctx) error {
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Message: "Server is running"})
}

// NotFound answers every request no route matched.
func NotFound(c *fiber.Ctx) error {
	return utils.RespondFail(c, fiber.StatusNotFound, "Can't find "+c.OriginalURL()+" on this server")
}

// ErrorHandler turns errors returned by handlers and middleware into the
// response envelope. Only fiber errors below 500 expose their message.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return utils.RespondFail(c, fiberErr.Code, fiberErr.Message)
		}

		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
		return utils.RespondError(c)
	}
}
