package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sakif/devconnector/internal/apperror"
)

// maxBodyBytes caps request bodies. Profiles and experience entries are small.
const maxBodyBytes = 1 << 20

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON name, which is what the client sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank rejects strings that are empty after trimming whitespace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// fieldMessages holds the client message for each "field.tag" failure.
var fieldMessages = map[string]string{
	"name.notblank":     "Name is required",
	"email.required":    "Please include a valid email",
	"email.email":       "Please include a valid email",
	"password.required": "Password is required",
	"password.min":      "Please enter a password with 6 or more characters",
	"password.max":      "Password must be 72 bytes or fewer",
	"status.notblank":   "Status is required",
	"skills.notblank":   "Skills is required",
	"title.notblank":    "Title is required",
	"company.notblank":  "Company is required",
	"from.required":     "From date is required",
	"from.datetime":     "From date must be a date (YYYY-MM-DD)",
	"to.datetime":       "To date must be a date (YYYY-MM-DD)",
}

// validateRequest checks req's `validate` tags and converts every failure into
// an apperror.FieldError.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("handler: validating request: %w", err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: msg})
	}
	return apperror.Invalid(fields...)
}

// decodeJSON reads the request body into dst. An empty body decodes to the zero
// value so that missing fields are reported by validation, not as bad JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ValidationFailed("body", "Request body too large")
	}
	return apperror.ValidationFailed("body", "Invalid JSON body")
}

// decodeAndValidate is decodeJSON followed by validateRequest.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return validateRequest(dst)
}
