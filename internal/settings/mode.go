package settings

import "fmt"

// Mode is the system operating posture. It is chosen once at startup and
// is read-only for the lifetime of the configuration manager. Live mode
// imposes stricter validation than backtest or paper.
type Mode string

const (
	ModeBacktest Mode = "backtest"
	ModePaper    Mode = "paper"
	ModeLive     Mode = "live"
)

// Modes lists every valid operating mode.
var Modes = []Mode{ModeBacktest, ModePaper, ModeLive}

// ParseMode converts a string to a Mode, rejecting anything outside the
// closed set.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBacktest, ModePaper, ModeLive:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown operating mode %q (want backtest, paper or live)", s)
	}
}

// Valid reports whether the mode is one of the closed set.
func (m Mode) Valid() bool {
	switch m {
	case ModeBacktest, ModePaper, ModeLive:
		return true
	}
	return false
}

func (m Mode) String() string {
	return string(m)
}
