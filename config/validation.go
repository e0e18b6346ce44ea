package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every problem found in a configuration
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	strict := cfg.Environment == Production || cfg.Environment == CI

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required"})
		}
		if strict && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required in " + string(cfg.Environment)})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required with the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if strict && cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required in " + string(cfg.Environment)})
	}
	if cfg.LLM.APIURL == "" {
		errs = append(errs, ValidationError{"LLM_API_URL", "is required"})
	}
	if cfg.LLM.MaxAttempts < 1 {
		errs = append(errs, ValidationError{"LLM_MAX_ATTEMPTS", "must be at least 1"})
	}
	if cfg.LLM.RequestsPerSecond <= 0 {
		errs = append(errs, ValidationError{"LLM_REQUESTS_PER_SECOND", "must be positive"})
	}
	if cfg.LLM.Timeout <= 0 {
		errs = append(errs, ValidationError{"LLM_TIMEOUT", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidationError reports whether err carries configuration validation problems
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
