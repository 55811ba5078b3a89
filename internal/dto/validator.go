package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var langCodePattern = regexp.MustCompile(`^[a-z]{2}$`)

// RegisterValidators adds the custom binding rules used by the request
// types. It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
		return langCodePattern.MatchString(fl.Field().String())
	})
}
