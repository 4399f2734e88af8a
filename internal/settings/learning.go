package settings

// LearningSettings holds hyperparameters for the reinforcement-learning
// loop. The loop itself runs elsewhere; this record only stores and
// persists its tuning knobs.
type LearningSettings struct {
	LearningRate     float64 `json:"learning_rate"`
	DiscountFactor   float64 `json:"discount_factor"`   // gamma, in [0,1]
	ExplorationRate  float64 `json:"exploration_rate"`  // epsilon, in [0,1]
	ExplorationDecay float64 `json:"exploration_decay"` // multiplicative decay per update
	BatchSize        int     `json:"batch_size"`
	MemorySize       int     `json:"memory_size"` // replay buffer capacity
	UpdateFrequency  int     `json:"update_frequency"`
}

// DefaultLearningSettings returns standard starting hyperparameters.
func DefaultLearningSettings() LearningSettings {
	return LearningSettings{
		LearningRate:     0.001,
		DiscountFactor:   0.99,
		ExplorationRate:  1.0,
		ExplorationDecay: 0.995,
		BatchSize:        64,
		MemorySize:       10000,
		UpdateFrequency:  100,
	}
}

// Apply overlays the supplied fields onto the record, rejecting unknown
// field names and mistyped values.
func (l *LearningSettings) Apply(fields map[string]interface{}) error {
	for key, val := range fields {
		switch key {
		case "learning_rate", "discount_factor", "exploration_rate", "exploration_decay":
			v, ok := asFloat(val)
			if !ok {
				return NewInvalidConfigError(key, "expected number")
			}
			switch key {
			case "learning_rate":
				l.LearningRate = v
			case "discount_factor":
				l.DiscountFactor = v
			case "exploration_rate":
				l.ExplorationRate = v
			case "exploration_decay":
				l.ExplorationDecay = v
			}
		case "batch_size", "memory_size", "update_frequency":
			v, ok := asInt(val)
			if !ok {
				return NewInvalidConfigError(key, "expected integer")
			}
			switch key {
			case "batch_size":
				l.BatchSize = v
			case "memory_size":
				l.MemorySize = v
			case "update_frequency":
				l.UpdateFrequency = v
			}
		default:
			return NewUnknownFieldError(key)
		}
	}
	return nil
}

// Document returns the wire representation for the remote store.
func (l LearningSettings) Document() map[string]interface{} {
	return map[string]interface{}{
		"learning_rate":     l.LearningRate,
		"discount_factor":   l.DiscountFactor,
		"exploration_rate":  l.ExplorationRate,
		"exploration_decay": l.ExplorationDecay,
		"batch_size":        l.BatchSize,
		"memory_size":       l.MemorySize,
		"update_frequency":  l.UpdateFrequency,
	}
}
