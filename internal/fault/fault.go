// Package fault defines the structured error taxonomy shared by the
// simulation core. Configuration problems and trigger rejections are
// recoverable by the caller; invariant violations are programming defects.
package fault

import (
	"errors"
	"fmt"
)

// ConfigError reports malformed or missing configuration, including an
// effect referencing an axis with no registered bounds. The operation that
// raised it performed no mutation.
type ConfigError struct {
	File string // Originating config file, when known.
	Key  string // Offending key or token.
	Msg  string
}

func (e *ConfigError) Error() string {
	switch {
	case e.File != "" && e.Key != "":
		return fmt.Sprintf("config: %s (file %s, key %s)", e.Msg, e.File, e.Key)
	case e.Key != "":
		return fmt.Sprintf("config: %s (key %s)", e.Msg, e.Key)
	default:
		return "config: " + e.Msg
	}
}

// Config builds a ConfigError for the given key.
func Config(key, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Msg: fmt.Sprintf(format, args...)}
}

// ConfigFile builds a ConfigError carrying the originating file.
func ConfigFile(file, key, format string, args ...any) *ConfigError {
	return &ConfigError{File: file, Key: key, Msg: fmt.Sprintf(format, args...)}
}

// TriggerValidationError reports a trigger rejected at the intake: an
// unregistered kind, a disallowed source, or a payload shape mismatch.
// Relationship state is untouched by a rejected trigger.
type TriggerValidationError struct {
	Kind   string
	Reason string
}

func (e *TriggerValidationError) Error() string {
	return fmt.Sprintf("trigger %q rejected: %s", e.Kind, e.Reason)
}

// RejectTrigger builds a TriggerValidationError.
func RejectTrigger(kind, format string, args ...any) *TriggerValidationError {
	return &TriggerValidationError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// InvariantError reports a component breaking an ownership boundary, such
// as requesting axis write access after the registry is sealed. Never
// swallowed.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Msg
}

// Invariant builds an InvariantError.
func Invariant(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsTriggerRejection reports whether err is (or wraps) a TriggerValidationError.
func IsTriggerRejection(err error) bool {
	var te *TriggerValidationError
	return errors.As(err, &te)
}
