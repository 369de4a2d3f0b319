package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their mapstructure key so messages match the YAML.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config validation failed: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if c.Generator.IDScheme == "yearly" && c.Generator.YearTag == "" {
		problems = append(problems, "generator.year_tag is required for the yearly id scheme")
	}
	switch c.Output.Format {
	case "sql":
		if c.Output.ResolvedDSN() == "" {
			problems = append(problems, "output.sql.dsn is required for driver "+c.Output.SQL.Driver)
		}
	case "redis":
		if c.Output.Redis.Addr == "" || c.Output.Redis.Stream == "" {
			problems = append(problems, "output.redis.addr and output.redis.stream are required")
		}
	default:
		if c.Output.Path == "" {
			problems = append(problems, "output.path is required for format "+c.Output.Format)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
