package httpapi

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"incident-portal/internal/incidents"
)

// RegisterValidations installs custom binding rules on gin's validator
// engine. Call once from main before serving.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		return incidents.ValidSeverity(incidents.Severity(fl.Field().String()))
	})
}
