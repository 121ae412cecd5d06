package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/academy/backend/internal/domain/attendance"
)

// SetupValidator configures gin's validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// clock validates an HH:MM wall-clock string
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return attendance.ValidClock(fl.Field().String())
	})

	// attendance_status validates the attendance status enum
	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return attendance.Status(fl.Field().String()).Valid()
	})
}
