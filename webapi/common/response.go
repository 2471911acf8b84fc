// Package common holds the HTTP envelope shared by every route group: problem details,
// error to status mapping and request binding.
package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ErrorToStatusCode maps ledger errors to HTTP status codes. A nil error is 200.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, account.ErrAccountNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, account.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, account.ErrCannotTransferToSameAccount),
		errors.Is(err, account.ErrInvalidRequest),
		errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes an RFC 9457 response. The status is taken from an int in
// opts when present, otherwise derived from err. A string in opts overrides the detail;
// any other value is reported under "errors".
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, opts ...any) error {
	status := ErrorToStatusCode(err)
	if err == nil {
		status = fiber.StatusInternalServerError
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	for _, opt := range opts {
		switch v := opt.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		case nil:
		default:
			pd.Errors = v
		}
	}
	pd.Status = status
	return c.Status(status).JSON(pd, "application/problem+json")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. decimal.Decimal fields validate as float64 so
// tags like gt=0 apply to amounts.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// BindAndValidate parses the request body and validates it. On failure it writes a 400
// problem response and returns a nil input together with the write error.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		// BodyParser reports an unsupported content type as a 422 fiber.Error.
		return nil, ProblemDetailsJSON(c, "Invalid request body", fmt.Errorf("%w: %w", domain.ErrValidation, err),
			fiber.StatusBadRequest)
	}
	if err := Validator().Struct(input); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrValidation, err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			return nil, ProblemDetailsJSON(c, "Validation failed", err, "One or more fields are invalid.", fields)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", err)
	}
	return &input, nil
}
