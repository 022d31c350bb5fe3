package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustom installs the custom binding rules used by request DTOs.
// Called once at startup; gin's binding engine is process-global.
func RegisterCustom() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("hhmm", validHHMM); err != nil {
		return err
	}
	if err := v.RegisterValidation("tzname", validTimezone); err != nil {
		return err
	}
	return nil
}

// validHHMM accepts zero-padded 24-hour wall clock strings such as "09:00".
func validHHMM(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true // optional fields fall back to defaults
	}
	// time.Parse alone accepts "9:00"; the tick gate compares against the
	// zero-padded Format("15:04") output, so require that form exactly.
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// validTimezone accepts IANA zone names loadable on this host.
func validTimezone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.LoadLocation(s)
	return err == nil
}
