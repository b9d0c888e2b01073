// Package validation checks stock and category payloads before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// DefaultLocations is the location allow-list used when none is configured.
var DefaultLocations = []string{
	"Maharashtra", "Karnataka", "Gujarat", "Punjab", "Tamil Nadu",
	"Uttar Pradesh", "Madhya Pradesh", "Rajasthan", "West Bengal", "Haryana",
}

// Validator normalizes payloads and reports every violation at once.
type Validator struct {
	validate  *validator.Validate
	locations []string
	allowed   map[string]struct{}
}

// New builds a validator accepting the given location tags.
func New(locations []string) *Validator {
	if len(locations) == 0 {
		locations = DefaultLocations
	}

	v := &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		locations: append([]string(nil), locations...),
		allowed:   make(map[string]struct{}, len(locations)),
	}
	for _, loc := range locations {
		v.allowed[loc] = struct{}{}
	}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	// Registration only fails on empty tags or nil funcs.
	_ = v.validate.RegisterValidation("location", v.isAllowedLocation)
	_ = v.validate.RegisterValidation("finite", isFinite)
	_ = v.validate.RegisterValidation("maxbytes", maxBytes)

	return v
}

// Locations returns a copy of the allow-list.
func (v *Validator) Locations() []string {
	return append([]string(nil), v.locations...)
}

// ValidateCreate returns the normalized input or a *models.ValidationError.
func (v *Validator) ValidateCreate(in models.StockInput) (models.StockInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.LocationTag = strings.TrimSpace(in.LocationTag)
	in.Notes = strings.TrimSpace(in.Notes)
	in.CategoryID = strings.TrimSpace(in.CategoryID)

	if err := v.validate.Struct(in); err != nil {
		return models.StockInput{}, v.translate(err)
	}
	return in, nil
}

// ValidatePatch applies the create rules to the fields present in the patch only.
func (v *Validator) ValidatePatch(p models.StockPatch) (models.StockPatch, error) {
	if p.IsEmpty() {
		return models.StockPatch{}, &models.ValidationError{Violations: []models.FieldViolation{
			{Field: "body", Message: "at least one field must be provided"},
		}}
	}

	var (
		in     models.StockInput
		fields []string
	)
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name, in.Name = &name, name
		fields = append(fields, "Name")
	}
	if p.LocationTag != nil {
		loc := strings.TrimSpace(*p.LocationTag)
		p.LocationTag, in.LocationTag = &loc, loc
		fields = append(fields, "LocationTag")
	}
	if p.Quantity != nil {
		in.Quantity = *p.Quantity
		fields = append(fields, "Quantity")
	}
	if p.UnitPrice != nil {
		in.UnitPrice = *p.UnitPrice
		fields = append(fields, "UnitPrice")
	}
	if p.Notes != nil {
		notes := strings.TrimSpace(*p.Notes)
		p.Notes, in.Notes = &notes, notes
		fields = append(fields, "Notes")
	}
	if p.CategoryID != nil {
		id := strings.TrimSpace(*p.CategoryID)
		p.CategoryID, in.CategoryID = &id, id
		fields = append(fields, "CategoryID")
	}

	if err := v.validate.StructPartial(in, fields...); err != nil {
		return models.StockPatch{}, v.translate(err)
	}
	return p, nil
}

// ValidateCategory trims and checks a category payload.
func (v *Validator) ValidateCategory(in models.CategoryInput) (models.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if err := v.validate.Struct(in); err != nil {
		return models.CategoryInput{}, v.translate(err)
	}
	return in, nil
}

// ValidateCredentials checks a registration payload. Passwords are limited to
// the 72 bytes bcrypt reads.
func (v *Validator) ValidateCredentials(in models.Credentials) (models.Credentials, error) {
	in.Username = strings.TrimSpace(in.Username)

	if err := v.validate.Struct(in); err != nil {
		return models.Credentials{}, v.translate(err)
	}
	return in, nil
}

func (v *Validator) translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate payload: %w", err)
	}

	out := &models.ValidationError{Violations: make([]models.FieldViolation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, models.FieldViolation{
			Field:   fe.Field(),
			Message: v.message(fe),
		})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "finite":
		return "must be a finite number"
	case "location":
		return "must be one of: " + strings.Join(v.locations, ", ")
	case "mongodb":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func (v *Validator) isAllowedLocation(fl validator.FieldLevel) bool {
	_, ok := v.allowed[fl.Field().String()]
	return ok
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
