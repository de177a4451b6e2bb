package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the Fiber app's centralized error handler, grounded
// on the teacher's convention of a single handler translating any
// returned error into a response, adapted here to OAI-PMH's one-route
// surface: any error surviving OAIHandler.Dispatch is an infrastructure
// failure, not a protocol error, so it renders as plain text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
	}
	return c.Status(code).SendString(err.Error())
}
