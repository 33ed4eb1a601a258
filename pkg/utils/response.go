package utils

import "github.com/gofiber/fiber/v2"

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the body of every JSON response. Status is "fail" for client
// errors and "error" for server faults.
type Envelope struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func RespondOK(c *fiber.Ctx, code int, body Envelope) error {
	body.Status = StatusSuccess
	body.Success = true
	return c.Status(code).JSON(body)
}

// RespondList is RespondOK with the item count filled in.
func RespondList[T any](c *fiber.Ctx, items []T) error {
	count := len(items)
	return RespondOK(c, fiber.StatusOK, Envelope{Count: &count, Data: items})
}

func RespondFail(c *fiber.Ctx, code int, message string) error {
	return RespondFailWith(c, code, message, nil)
}

// RespondFailWith attaches field-level errors to a failure response.
func RespondFailWith(c *fiber.Ctx, code int, message string, errs any) error {
	status := StatusFail
	if code >= fiber.StatusInternalServerError {
		status = StatusError
	}
	return c.Status(code).JSON(Envelope{
		Status:  status,
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// RespondError reports an internal fault without leaking its cause.
func RespondError(c *fiber.Ctx) error {
	return RespondFail(c, fiber.StatusInternalServerError, "Server Error")
}
