package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct validation tags
// and flattens validator errors into one readable message.
func Validate(cfg *Config) error {
	v := validator.New()
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of: %s (got %q)",
				fe.Namespace(), fe.Param(), fe.Value()))
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s validation (got %v)",
				fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
