package middleware

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	appvalidator "github.com/fajrglobal/clinic-api/pkg/validator"
)

var (
	validationOnce sync.Once
	validationErr  error
)

// SetupValidation registers the custom binding tags on gin's validator.
// It is safe to call more than once.
func SetupValidation() error {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validationErr = fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
			return
		}
		validationErr = appvalidator.Register(v)
	})
	return validationErr
}
