package handlers

import (
	"errors"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"moves/config"
	"moves/services"
)

type Handler struct {
	svc      *services.Service
	cfg      *config.Config
	validate *validator.Validate
}

func New(svc *services.Service, cfg *config.Config) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Handler{
		svc:      svc,
		cfg:      cfg,
		validate: v,
	}
}

// ErrorHandler renders errors that escape a handler as {"error": msg}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// respondError maps a service error to its HTTP status. Anything that is not
// a *services.Error is logged and reported as a generic 500.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var se *services.Error
	if errors.As(err, &se) {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(se, services.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(se, services.ErrConflict):
			status = fiber.StatusConflict
		case errors.Is(se, services.ErrForbidden):
			status = fiber.StatusForbidden
		case errors.Is(se, services.ErrInvalid):
			status = fiber.StatusBadRequest
		case errors.Is(se, services.ErrUnauthorized):
			status = fiber.StatusUnauthorized
		}
		return c.Status(status).JSON(fiber.Map{"error": se.Message})
	}

	slog.Error(fallback, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// parseID reads a positive integer path parameter
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	return parseUint(c.Params(name))
}

// queryID is parseID for query string values.
func queryID(c *fiber.Ctx, name string) (uint, bool) {
	return parseUint(c.Query(name))
}

func parseUint(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bind decodes the JSON body into dst and validates it. On failure the 400
// response has already been written and ok is false.
func (h *Handler) bind(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, badRequest(c, "Invalid request body")
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	return true, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func (h *Handler) actor(c *fiber.Ctx, userID uint) services.Actor {
	return services.Actor{UserID: userID, IPAddress: c.IP()}
}
