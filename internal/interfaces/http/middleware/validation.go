package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
)

// indonesianPhone accepts mobile numbers written as 08xx, 628xx or +628xx,
// with optional spaces or dashes between digit groups
var indonesianPhone = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,11}$`)

// SetupValidator configures the validator with custom tags
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone_id", validatePhone)

		// Use JSON tag names for field names in errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(fl.Field().String())
	return indonesianPhone.MatchString(phone)
}

// ValidationDetails turns binding errors into per-field details. Errors that
// are not validator errors, such as malformed JSON, yield no details.
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: getValidationMessage(e),
		})
	}
	return details
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	return dto.NewValidationErrorResponse("Request validation failed", requestID, ValidationDetails(err))
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	requestID := getRequestIDFromContext(c)
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

// getRequestIDFromContext extracts request ID from gin context
func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	case "url":
		return "Invalid URL format"
	case "numeric":
		return "Must be numeric"
	case "alphanum":
		return "Must be alphanumeric"
	case "alpha":
		return "Must contain only letters"
	case "phone_id":
		return "Must be an Indonesian mobile number, e.g. 081234567890"
	default:
		return "Invalid value"
	}
}
