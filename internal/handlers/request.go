package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cabiir/FianlFitnessGym/internal/validation"
	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

var errEmptyBody = errors.New("request body is empty")

// decodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing data.
func decodeJSON(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func respondInvalidBody(c *fiber.Ctx, err error) error {
	message := "Invalid request body"
	if strings.HasPrefix(err.Error(), "json: unknown field") {
		message = "Unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	}
	return utils.RespondFail(c, fiber.StatusBadRequest, message)
}

// respondValidation writes the 400 for a validation error. It reports false
// when err carries no field errors.
func respondValidation(c *fiber.Ctx, err error) (bool, error) {
	fields, ok := validation.Fields(err)
	if !ok {
		return false, nil
	}
	return true, utils.RespondFailWith(c, fiber.StatusBadRequest, "Validation failed", fields)
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optionalFormValue returns the submitted form field, or nil when the field
// was not sent at all.
func optionalFormValue(c *fiber.Ctx, key string) *string {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return nil
		}
		value := values[0]
		return &value
	}

	args := c.Request().PostArgs()
	if !args.Has(key) {
		return nil
	}
	value := string(args.Peek(key))
	return &value
}
