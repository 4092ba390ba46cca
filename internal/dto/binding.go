package dto

import (
	"errors"

	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the custom binding rules used by request DTOs to
// Gin's validator engine. Call once at startup before serving requests.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator engine is not *validator.Validate")
	}
	return v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return domain.IsValidCurrencyCode(fl.Field().String())
	})
}
