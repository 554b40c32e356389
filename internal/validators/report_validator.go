package validators

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"safeher/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("report_category", validateReportCategory)
}

var (
	ErrInvalidCoordinates = errors.New("invalid GPS coordinates")
	ErrInvalidCategory    = errors.New("unknown report category")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct runs tag-based validation and flattens the result.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}

	out := make(ValidationErrors, 0, len(invalid))
	for _, fieldErr := range invalid {
		out = append(out, ValidationError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Message: fmt.Sprintf("failed on %q validation", fieldErr.Tag()),
		})
	}

	return out
}

// ValidateCoordinates rejects out-of-range and non-finite coordinates
// before they reach the scoring or clustering code.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// ValidateReport checks a danger zone submission's required fields.
func ValidateReport(report *models.DangerZoneReport) error {
	if err := ValidateCoordinates(report.Lat, report.Lng); err != nil {
		return err
	}
	if !report.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func validateReportCategory(fl validator.FieldLevel) bool {
	return models.ReportCategory(fl.Field().String()).Valid()
}
