package validator

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"

	"studyzone_backend/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-role", validateRole)
	mustRegister("max-bytes", validateMaxBytes)
}

// validateRole accepts any known role tag. Empty values are left to 'required'.
func validateRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseRole(value)
	return ok
}

// validateMaxBytes limits the encoded length of a string, e.g. max-bytes=72 for bcrypt input.
func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
