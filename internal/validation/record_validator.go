package validation

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "salespipe/internal/errors"
	"salespipe/pkg/contracts/domain"
)

// RecordValidator validates cleaned transactions against their struct
// tags. Rows that fail are malformed and get dropped by the caller.
type RecordValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewRecordValidator creates a new record validator
func NewRecordValidator(logger *slog.Logger) *RecordValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()

	// Register custom validators
	v.RegisterValidation("month_bucket", isMonthBucket)
	v.RegisterValidation("product_category", isProductCategory)
	v.RegisterValidation("tax_jurisdiction", isTaxJurisdiction)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RecordValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "record_validator")),
	}
}

// ValidateTransaction validates a single cleaned transaction and returns
// a validation error describing every failing field
func (rv *RecordValidator) ValidateTransaction(tx *domain.Transaction) error {
	err := rv.validator.Struct(tx)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationError, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, ferr := range fieldErrs {
		msg := formatValidationError(ferr)
		details = append(details, apperrors.ValidationError{
			Field:   ferr.Field(),
			Message: msg,
		})
		messages = append(messages, msg)
	}

	return apperrors.NewValidationError(strings.Join(messages, "; ")).
		WithContext("fields", details)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "month_bucket":
		return fmt.Sprintf("%s must be a YYYY-MM month", field)
	case "product_category":
		return fmt.Sprintf("%s must be a known product category", field)
	case "tax_jurisdiction":
		return fmt.Sprintf("%s must be a known tax jurisdiction", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// Custom validators

// isMonthBucket validates the YYYY-MM month format
func isMonthBucket(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01", fl.Field().String())
	return err == nil
}

// isProductCategory validates the product category enum
func isProductCategory(fl validator.FieldLevel) bool {
	switch domain.ProductCategory(fl.Field().String()) {
	case domain.CategoryElectronics, domain.CategoryClothing,
		domain.CategoryGroceries, domain.CategoryOther,
		domain.CategoryUncategorized:
		return true
	}
	return false
}

// isTaxJurisdiction validates the tax jurisdiction enum
func isTaxJurisdiction(fl validator.FieldLevel) bool {
	switch domain.TaxJurisdiction(fl.Field().String()) {
	case domain.JurisdictionStandard, domain.JurisdictionGroceryExempt,
		domain.JurisdictionReducedRate:
		return true
	}
	return false
}
