package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes one invalid request field.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// decodeAndValidate decodes the JSON body into req, applies struct
// defaults and validates. A nil return means req is ready to use.
func decodeAndValidate(r *http.Request, req interface{}) []ValidationError {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return []ValidationError{{
			Code:    "ERR_DECODE",
			Message: fmt.Sprintf("invalid request body: %v", err),
		}}
	}

	if err := defaults.Set(req); err != nil {
		return []ValidationError{{
			Code:    "ERR_DEFAULTS",
			Message: err.Error(),
		}}
	}

	if err := validate.StructCtx(r.Context(), req); err != nil {
		return validationErrors(err)
	}

	return nil
}

func validationErrors(err error) []ValidationError {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: err.Error(),
		}}
	}

	errs := make([]ValidationError, 0, len(fieldErrors))
	for _, e := range fieldErrors {
		errs = append(errs, ValidationError{
			Code:    "ERR_" + strings.ToUpper(e.Tag()),
			Field:   e.Field(),
			Message: fieldErrorMessage(e),
		})
	}
	return errs
}

func fieldErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
