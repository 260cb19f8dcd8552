package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the cross-field rules that tags cannot express
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})
	v.RegisterStructValidation(validateRateLimit, RateLimitConfig{})
	return v
}

// A sqlite cache needs a file, a postgres cache needs a URL or a host and database name
func validateDatabase(sl validator.StructLevel) {
	db := sl.Current().Interface().(DatabaseConfig)
	switch db.Type {
	case "sqlite":
		if db.Path == "" {
			sl.ReportError(db.Path, "Path", "path", "sqlite_path", "")
		}
	case "postgres":
		if db.URL == "" && (db.Host == "" || db.Name == "") {
			sl.ReportError(db.URL, "URL", "url", "postgres_dsn", "")
		}
	}
}

// The bucket cannot hold more tokens than one period refills
func validateRateLimit(sl validator.StructLevel) {
	rl := sl.Current().Interface().(RateLimitConfig)
	if rl.Burst > rl.Requests {
		sl.ReportError(rl.Burst, "Burst", "burst", "lte_requests", "")
	}
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s: failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}
