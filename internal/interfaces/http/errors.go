package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/dto"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
)

// writeError maps a domain error to its HTTP status and JSON body. Anything
// that is not a domain error is a 500 with a generic code.
func writeError(c *fiber.Ctx, err error) error {
	var status int
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = fiber.StatusBadRequest
	case domain.KindNotFound:
		status = fiber.StatusNotFound
	case domain.KindAuthorization:
		status = fiber.StatusForbidden
	case domain.KindConflict:
		status = fiber.StatusConflict
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "INTERNAL",
			Message: err.Error(),
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Code:    domain.CodeOf(err),
		Message: err.Error(),
	})
}

// writeBadRequest shortcut for body/query parse and struct validation errors.
func writeBadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}
