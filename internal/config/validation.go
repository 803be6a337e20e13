// Package config provides configuration management for the prop evaluator.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("secondary_cache", validateSecondaryCache)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSecondaryCache(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "none", "sqlite", "redis":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	m := cfg.Model
	if sum := m.WeightModel + m.WeightMarket + m.WeightSharp; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("fusion weights must sum to 1, got %.4f", sum)
	}
	if m.WeightMarket < m.WeightModel {
		return fmt.Errorf("weight_market (%.2f) must not be below weight_model (%.2f)", m.WeightMarket, m.WeightModel)
	}

	d := cfg.Decision
	if !(d.Lock >= d.StrongLean && d.StrongLean >= d.Lean && d.Lean >= d.LowConfidence) {
		return fmt.Errorf("decision thresholds must satisfy lock >= strong_lean >= lean >= low_confidence")
	}
	if d.GateCap >= d.LowConfidence {
		return fmt.Errorf("gate_cap must be below low_confidence")
	}

	if cfg.Collector.MinSample > cfg.Collector.TargetSample {
		return fmt.Errorf("min_sample cannot exceed target_sample")
	}

	if cfg.IsProduction() && cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte", "gtefield":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "secondary_cache":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: none, sqlite, redis\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
