package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("survey_type", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "app", "website", "link":
			return true
		}
		return false
	})

	_ = v.RegisterValidation("rating_range", func(fl validator.FieldLevel) bool {
		switch fl.Field().Int() {
		case 5, 7, 10:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("not_placeholder", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return !(strings.HasPrefix(value, "YOUR_") && strings.HasSuffix(value, "_HERE"))
	})

	return v
}

func ValidateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err != nil {
		return err
	}
	return nil
}

// DescribeValidation flattens validator errors into a single readable message.
func DescribeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed on %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
