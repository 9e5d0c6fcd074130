package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a threshold outside its valid domain.
// It is raised before any mining work starts.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Thresholds are the user-supplied mining parameters.
type Thresholds struct {
	MinSupport    float64 `json:"min_support" yaml:"min_support" toml:"min_support"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence" toml:"min_confidence"`
	MinLift       float64 `json:"min_lift" yaml:"min_lift" toml:"min_lift"`
	TopN          int     `json:"top_n" yaml:"top_n" toml:"top_n"`
}

// DefaultThresholds mirror the values the incident analysis has always used.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSupport:    0.05,
		MinConfidence: 0.6,
		MinLift:       1.2,
		TopN:          5,
	}
}

// Validate checks every threshold and returns the first violation.
func (t Thresholds) Validate() error {
	if err := ValidateMinSupport(t.MinSupport); err != nil {
		return err
	}
	if err := ValidateMinConfidence(t.MinConfidence); err != nil {
		return err
	}
	if err := ValidateMinLift(t.MinLift); err != nil {
		return err
	}
	if t.TopN < 0 {
		return &ConfigError{Field: "top_n", Value: t.TopN, Reason: "must be >= 0"}
	}
	return nil
}

// ValidateMinSupport requires v in (0, 1].
func ValidateMinSupport(v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return &ConfigError{Field: "min_support", Value: v, Reason: "must be in (0, 1]"}
	}
	return nil
}

// ValidateMinConfidence requires v in [0, 1].
func ValidateMinConfidence(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &ConfigError{Field: "min_confidence", Value: v, Reason: "must be in [0, 1]"}
	}
	return nil
}

// ValidateMinLift requires v >= 0.
func ValidateMinLift(v float64) error {
	if math.IsNaN(v) || v < 0 {
		return &ConfigError{Field: "min_lift", Value: v, Reason: "must be >= 0"}
	}
	return nil
}
