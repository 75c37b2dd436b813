package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ledgerbook/ledger/shared/utils"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// newValidator reports fields by their wire names (json, then uri tag) so
// details match what the client sent. The uuid tag accepts any spelling
// uuid.Parse does; handlers canonicalise afterwards. max_decimals=N limits a
// number to N fractional digits.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("uuid", func(fl validator.FieldLevel) bool {
		_, ok := utils.NormalizeUUID(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("max_decimals", maxDecimals)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

func maxDecimals(fl validator.FieldLevel) bool {
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	var value decimal.Decimal
	switch fl.Field().Kind() {
	case reflect.Float32:
		value = decimal.NewFromFloat32(float32(fl.Field().Float()))
	case reflect.Float64:
		value = decimal.NewFromFloat(fl.Field().Float())
	default:
		return false
	}
	return value.Exponent() >= -int32(places)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type BadRequestErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details"`
}

func ValidateRequest(obj any) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []ValidationError{{Message: err.Error(), Type: "invalid"}}
	}

	for _, err := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	case "lte":
		return "Value must be less than or equal to " + err.Param()
	case "max_decimals":
		return "Value must have at most " + err.Param() + " decimal places"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "uuid":
		return "Value must be a valid UUID"
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, BadRequestErrorResponse{
		Error:   "Invalid request data",
		Details: validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"error": message,
	})
}
