package utils

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs the struct's validate tags and returns field-level
// detail suitable for the error response's details object.
func ValidateStruct(v interface{}) (map[string]interface{}, error) {
	err := getValidator().Struct(v)
	if err == nil {
		return nil, nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}

	details := make(map[string]interface{}, len(invalid))
	for _, fieldErr := range invalid {
		details[strings.ToLower(fieldErr.Field())] = fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
	return details, fmt.Errorf("validation failed on %d field(s)", len(invalid))
}

// ValidateRequired returns an error when the value is empty.
func ValidateRequired(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
