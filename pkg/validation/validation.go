// Package validation registers the custom binding rules used by request DTOs.
package validation

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var clockLayouts = []string{"15:04", "15:04:05"}

// Register installs the custom rules on gin's validator
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom rules on v
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("decimal_gte0", decimalNonNegative); err != nil {
		return err
	}
	return v.RegisterValidation("clock", clock)
}

// decimalNonNegative accepts decimal.Decimal values >= 0
func decimalNonNegative(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !d.IsNegative()
}

// clock accepts a time of day as HH:MM or HH:MM:SS
func clock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, layout := range clockLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
