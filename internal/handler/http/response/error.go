package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// HandleError maps engine errors to HTTP responses by kind
func HandleError(w http.ResponseWriter, err error) {
	// Field errors carry their details
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		ValidationError(w, map[string]string{"error": err.Error()})
	case apperror.KindInvalidMonth:
		InvalidMonth(w, err.Error())
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	case apperror.KindInvalidState:
		InvalidState(w, err.Error())
	case apperror.KindTransient:
		ServiceUnavailable(w, "A downstream store did not respond, try again")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
