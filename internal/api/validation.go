package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"kvgateway/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// engine returns the shared validator, creating it on first use
func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report JSON field names instead of Go field names
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// maxBodyBytes caps the size of a JSON request body
const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON value from the body into dst and validates
// it. Anything after that value is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return decodeError(err)
		}
		return apperr.Validation("invalid JSON body")
	}
	return validateStruct(dst)
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Wrap(apperr.KindValidation, "request body is required", err)
	case errors.As(err, &tooLarge):
		return apperr.Wrap(apperr.KindValidation, "request body too large", err)
	default:
		return apperr.Wrap(apperr.KindValidation, "invalid JSON body", err)
	}
}

// validateStruct runs the struct tag rules on v
func validateStruct(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, "invalid request", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldMessage(fe))
	}
	return apperr.Wrap(apperr.KindValidation, strings.Join(fields, "; "), err)
}

// fieldMessage returns the message for one failed rule
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
