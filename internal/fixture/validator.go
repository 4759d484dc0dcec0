package fixture

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var localNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the package-wide validator, lazily registering
// the "local_name" tag exactly once.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("local_name", func(fl validator.FieldLevel) bool {
			return localNamePattern.MatchString(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}
