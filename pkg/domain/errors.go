package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration and model access failures.
var (
	ErrRulesetNotFound = errors.New("ruleset file not found")
	ErrRulesetParse    = errors.New("ruleset parse error")
	ErrUnknownRuleType = errors.New("unknown rule type")
	ErrModelNotFound   = errors.New("model file not found")
)

// RulesetValidationError reports a structurally invalid ruleset or rule spec.
type RulesetValidationError struct {
	Reason string
	Err    error
}

// NewRulesetValidationError formats a validation failure.
func NewRulesetValidationError(format string, args ...any) *RulesetValidationError {
	return &RulesetValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *RulesetValidationError) Error() string {
	return "ruleset validation failed: " + e.Reason
}

func (e *RulesetValidationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err stems from a missing, malformed,
// or invalid ruleset.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var verr *RulesetValidationError
	return errors.As(err, &verr) || errors.Is(err, ErrRulesetNotFound) || errors.Is(err, ErrRulesetParse)
}
