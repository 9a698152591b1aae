package config

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report TOML key names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field. It returns the first failure as an
// INVALID_CONFIG error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s", formatFieldError(verrs[0]))
}

func formatFieldError(e validator.FieldError) string {
	// Namespace is Config.section.key
	key := e.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}
	switch e.Tag() {
	case "required", "required_if":
		return key + " is required"
	case "oneof":
		return key + " must be one of: " + e.Param()
	case "url":
		return key + " must be a URL"
	case "hexcolor":
		return key + " must be a hex color like #121214"
	case "gt":
		return key + " must be greater than " + e.Param()
	case "gte":
		return key + " must be at least " + e.Param()
	case "lte":
		return key + " must be at most " + e.Param()
	default:
		return key + " is invalid"
	}
}
