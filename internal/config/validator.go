package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Validator returns the shared options validator. Failed validations name
// fields by their env var, or by their YAML key for channel metadata,
// instead of the Go field name.
func Validator() *validator.Validate {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
	}
	return validate
}

func fieldName(fld reflect.StructField) string {
	if name := tagName(fld.Tag.Get("env")); name != "" {
		return name
	}
	return tagName(fld.Tag.Get("yaml"))
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
