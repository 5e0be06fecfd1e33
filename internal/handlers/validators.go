package handlers

import (
	"github.com/SscSPs/fx_reference_rates/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidators adds the custom binding tags used by the request DTOs.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// currency accepts a 3-letter code in any case, surrounding spaces allowed.
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return utils.IsCurrencyCode(utils.NormalizeCurrencyCode(fl.Field().String()))
	})
}
