package web

import (
	"github.com/dukex/formflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func problem(c fiber.Ctx, status int, kind, detail string) error {
	return c.Status(status).JSON(problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail))
}

func badRequest(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusBadRequest, "validation_error", detail)
}

// handleServiceError maps service errors onto problem responses. Unclassified
// errors become a 500 without their message.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsNotFoundError(err):
		return problem(c, fiber.StatusNotFound, "not_found", err.Error())
	case services.IsConflictError(err):
		return problem(c, fiber.StatusConflict, "conflict", err.Error())
	case services.IsValidationError(err):
		return badRequest(c, err.Error())
	default:
		return problem(c, fiber.StatusInternalServerError, "internal_error", "unexpected error while handling "+c.Method()+" "+c.Path())
	}
}
