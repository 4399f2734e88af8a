// Package settings holds the framework's configuration records: exchange
// credentials and limits, portfolio risk thresholds, and learning-loop
// hyperparameters. Records are plain value containers built from defaults
// and overlaid field by field from external mappings; unknown field names
// are rejected rather than silently dropped.
package settings

// ExchangeSettings holds one venue's credentials and limits.
type ExchangeSettings struct {
	Name      string   `json:"name"`
	APIKey    string   `json:"api_key,omitempty"`
	APISecret string   `json:"api_secret,omitempty"`
	Sandbox   bool     `json:"sandbox"`
	RateLimit int      `json:"rate_limit"` // requests per second
	Symbols   []string `json:"symbols"`
}

// DefaultExchangeSettings returns the defaults for a named venue.
// Sandbox is on by default so a fresh configuration never points at a
// live venue by accident.
func DefaultExchangeSettings(name string) ExchangeSettings {
	return ExchangeSettings{
		Name:      name,
		Sandbox:   true,
		RateLimit: 10,
		Symbols:   []string{"BTC/USDT", "ETH/USDT"},
	}
}

// Apply overlays the supplied fields onto the record. Unknown field names
// return a ConfigError with KindUnknownField; wrong types return
// KindInvalidConfig. The record is modified in place, so callers that need
// all-or-nothing semantics should apply onto a copy first.
func (s *ExchangeSettings) Apply(fields map[string]interface{}) error {
	for key, val := range fields {
		switch key {
		case "name":
			v, ok := asString(val)
			if !ok {
				return NewInvalidConfigError(key, "expected string")
			}
			s.Name = v
		case "api_key":
			v, ok := asString(val)
			if !ok {
				return NewInvalidConfigError(key, "expected string")
			}
			s.APIKey = v
		case "api_secret":
			v, ok := asString(val)
			if !ok {
				return NewInvalidConfigError(key, "expected string")
			}
			s.APISecret = v
		case "sandbox":
			v, ok := asBool(val)
			if !ok {
				return NewInvalidConfigError(key, "expected bool")
			}
			s.Sandbox = v
		case "rate_limit":
			v, ok := asInt(val)
			if !ok {
				return NewInvalidConfigError(key, "expected integer")
			}
			s.RateLimit = v
		case "symbols":
			v, ok := asStringSlice(val)
			if !ok {
				return NewInvalidConfigError(key, "expected list of strings")
			}
			s.Symbols = v
		default:
			return NewUnknownFieldError(key)
		}
	}
	return nil
}

// Document returns the wire representation for the remote store. The name
// is the document key in the exchanges sub-map, so it is not repeated here.
func (s ExchangeSettings) Document() map[string]interface{} {
	symbols := make([]interface{}, len(s.Symbols))
	for i, sym := range s.Symbols {
		symbols[i] = sym
	}
	return map[string]interface{}{
		"api_key":    s.APIKey,
		"api_secret": s.APISecret,
		"sandbox":    s.Sandbox,
		"rate_limit": s.RateLimit,
		"symbols":    symbols,
	}
}

// HasCredentials reports whether both the API key and secret are present.
func (s ExchangeSettings) HasCredentials() bool {
	return s.APIKey != "" && s.APISecret != ""
}
