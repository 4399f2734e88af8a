package settings

// RiskSettings holds portfolio-wide risk limits. All fractional fields are
// expressed as fractions of portfolio value in (0, 1].
type RiskSettings struct {
	MaxPositionSize      float64 `json:"max_position_size"` // fraction of portfolio per position
	MaxDailyLoss         float64 `json:"max_daily_loss"`    // fraction lost in a day before halting
	MaxDrawdown          float64 `json:"max_drawdown"`      // peak-to-trough fraction
	StopLoss             float64 `json:"stop_loss"`
	TakeProfit           float64 `json:"take_profit"`
	MinSharpeRatio       float64 `json:"min_sharpe_ratio"`      // minimum acceptable Sharpe for deployment
	CorrelationThreshold float64 `json:"correlation_threshold"` // max pairwise strategy correlation
}

// DefaultRiskSettings returns conservative portfolio limits.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		MaxPositionSize:      0.1,
		MaxDailyLoss:         0.05,
		MaxDrawdown:          0.2,
		StopLoss:             0.02,
		TakeProfit:           0.05,
		MinSharpeRatio:       1.0,
		CorrelationThreshold: 0.7,
	}
}

// Apply overlays the supplied fields onto the record, rejecting unknown
// field names and non-numeric values.
func (r *RiskSettings) Apply(fields map[string]interface{}) error {
	for key, val := range fields {
		target := r.fieldTarget(key)
		if target == nil {
			return NewUnknownFieldError(key)
		}
		v, ok := asFloat(val)
		if !ok {
			return NewInvalidConfigError(key, "expected number")
		}
		*target = v
	}
	return nil
}

func (r *RiskSettings) fieldTarget(key string) *float64 {
	switch key {
	case "max_position_size":
		return &r.MaxPositionSize
	case "max_daily_loss":
		return &r.MaxDailyLoss
	case "max_drawdown":
		return &r.MaxDrawdown
	case "stop_loss":
		return &r.StopLoss
	case "take_profit":
		return &r.TakeProfit
	case "min_sharpe_ratio":
		return &r.MinSharpeRatio
	case "correlation_threshold":
		return &r.CorrelationThreshold
	default:
		return nil
	}
}

// Document returns the wire representation for the remote store.
func (r RiskSettings) Document() map[string]interface{} {
	return map[string]interface{}{
		"max_position_size":     r.MaxPositionSize,
		"max_daily_loss":        r.MaxDailyLoss,
		"max_drawdown":          r.MaxDrawdown,
		"stop_loss":             r.StopLoss,
		"take_profit":           r.TakeProfit,
		"min_sharpe_ratio":      r.MinSharpeRatio,
		"correlation_threshold": r.CorrelationThreshold,
	}
}
