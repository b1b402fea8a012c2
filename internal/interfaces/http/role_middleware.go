package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/dto"
)

// Roles carried in the JWT. Station users are bound to one station; office
// and admin users operate across the whole network.
const (
	RoleAdmin   = "admin"
	RoleOffice  = "office"
	RoleStation = "station"
)

// RequireRole returns a middleware that admits only the listed roles. Must
// run after AuthMiddleware, which puts the role into c.Locals.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "role not found in token",
			})
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "role '" + role + "' is not allowed on this endpoint",
		})
	}
}
