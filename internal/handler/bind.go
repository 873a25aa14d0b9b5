package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.Exponent() >= -2
	})
	_ = v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})

	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// A nil AppError with fields set means the body was well formed but invalid.
func decodeAndValidate(r *http.Request, dst any) ([]FieldError, *AppError) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return nil, ErrInvalidRequest
	}
	if err := validate.Struct(dst); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, ErrInvalidRequest
		}
		return toFieldErrors(verrs), nil
	}
	return nil, nil
}

func toFieldErrors(verrs validator.ValidationErrors) []FieldError {
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain only digits"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "cents":
		return "must have at most 2 decimal places"
	case "nonnegative":
		return "must not be negative"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(r *http.Request, name string) (*time.Time, *FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, &FieldError{Field: name, Message: "must be a date in YYYY-MM-DD format"}
	}
	return &t, nil
}

// dateRangeQuery reads start_date and end_date. ok is false when neither is set.
func dateRangeQuery(r *http.Request) (start, end time.Time, ok bool, fields []FieldError) {
	s, fe := dateQuery(r, "start_date")
	if fe != nil {
		fields = append(fields, *fe)
	}
	e, fe := dateQuery(r, "end_date")
	if fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, false, fields
	}

	switch {
	case s == nil && e == nil:
		return time.Time{}, time.Time{}, false, nil
	case s == nil:
		return time.Time{}, time.Time{}, false, []FieldError{{Field: "start_date", Message: "required with end_date"}}
	case e == nil:
		return time.Time{}, time.Time{}, false, []FieldError{{Field: "end_date", Message: "required with start_date"}}
	}
	return *s, *e, true, nil
}
