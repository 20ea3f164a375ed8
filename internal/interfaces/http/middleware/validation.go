package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/dto"
)

var (
	setupOnce sync.Once
	setupErr  error
)

// SetupValidator configures gin's validator: JSON field names in errors and
// the asset_status / loan_status tags. Safe to call more than once.
func SetupValidator() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

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

		if err := v.RegisterValidation("asset_status", validateAssetStatus); err != nil {
			setupErr = fmt.Errorf("register asset_status: %w", err)
			return
		}
		if err := v.RegisterValidation("loan_status", validateLoanStatus); err != nil {
			setupErr = fmt.Errorf("register loan_status: %w", err)
		}
	})
	return setupErr
}

func validateAssetStatus(fl validator.FieldLevel) bool {
	_, err := lending.ParseAssetStatus(fl.Field().String())
	return err == nil
}

func validateLoanStatus(fl validator.FieldLevel) bool {
	_, err := lending.ParseLoanStatus(fl.Field().String())
	return err == nil
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError writes the response for a failed bind. Field errors
// get ERR_VALIDATION with details, a body cut off by BodyLimit gets 413 and
// anything else (bad JSON, bad types) gets ERR_BAD_REQUEST.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString(logger.GinRequestIDKey)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortTooLarge(c, tooLarge.Limit)
		return
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, "Invalid request body", requestID))
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
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "asset_status":
		return "Must be one of: AVAILABLE DAMAGED OUT_OF_STOCK"
	case "loan_status":
		return "Must be one of: PENDING APPROVED REJECTED RETURNED"
	default:
		return "Invalid value"
	}
}
