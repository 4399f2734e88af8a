package settings

import "fmt"

// ErrorKind classifies configuration errors.
type ErrorKind int

const (
	// KindUnknownField indicates an overlay mapping contained a field name
	// that does not exist on the target record.
	KindUnknownField ErrorKind = iota + 1
	// KindInvalidConfig indicates a field value violates the record's
	// constraints or carries the wrong type.
	KindInvalidConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownField:
		return "unknown_field"
	case KindInvalidConfig:
		return "invalid_config"
	default:
		return "unknown"
	}
}

// ConfigError is a user-correctable misconfiguration. It is surfaced to the
// caller of Validate/Apply and never retried automatically.
type ConfigError struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error (%s): field %q: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("config error (%s): %s", e.Kind, e.Reason)
}

// NewUnknownFieldError reports an overlay key that matches no record field.
func NewUnknownFieldError(field string) *ConfigError {
	return &ConfigError{Kind: KindUnknownField, Field: field, Reason: "no such field"}
}

// NewInvalidConfigError reports a constraint or type violation.
func NewInvalidConfigError(field, reason string) *ConfigError {
	return &ConfigError{Kind: KindInvalidConfig, Field: field, Reason: reason}
}
