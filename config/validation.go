package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every value the pipeline cannot run without is
// present. Missing credentials are fatal at startup, before any unit of work.
func ValidateConfig(cfg *Config) error {
	required := []struct {
		field string
		value string
	}{
		{"DB_USER", cfg.DBUser},
		{"DB_PASSWORD", cfg.DBPassword},
		{"DB_NAME", cfg.DBName},
		{"NUTRITION_API_APP_ID", cfg.APIAppID},
		{"NUTRITION_API_APP_KEY", cfg.APIAppKey},
	}
	for _, r := range required {
		if r.value == "" {
			return ValidationError{Field: r.field, Message: "required environment variable is not set"}
		}
	}

	if cfg.BatchSize <= 0 {
		return ValidationError{Field: "PULL_BATCH", Message: "batch size must be positive"}
	}
	if cfg.CallTimeout <= 0 {
		return ValidationError{Field: "CALL_TIMEOUT", Message: "timeout must be positive"}
	}
	if cfg.CallDelay < 0 {
		return ValidationError{Field: "CALL_DELAY", Message: "delay must not be negative"}
	}

	return nil
}
