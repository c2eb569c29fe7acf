package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator adapts validator/v10 to echo.Validator.
type Validator struct {
	v *validator.Validate
}

var dateValidator validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("date", dateValidator)
	return &Validator{v: v}
}

// Validate returns the first failing field as "field: rule" so handlers can
// pass it to the client unchanged.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "date":
		return fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	}
	return fmt.Errorf("%s failed %s", field, fe.Tag())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
