package progress

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Mode picks how the progress bar is rendered.
type Mode int

const (
	// Determinate shows Value as a percentage.
	Determinate Mode = iota
	// Indeterminate shows a busy animation, Value is kept but not shown.
	Indeterminate
)

func (m Mode) String() string {
	switch m {
	case Determinate:
		return "determinate"
	case Indeterminate:
		return "indeterminate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "determinate" or "indeterminate" (case-insensitive).
// Some bootstrappers say "marquee" for indeterminate, so that works too.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "determinate", "continuous", "blocks":
		return Determinate, nil
	case "indeterminate", "marquee":
		return Indeterminate, nil
	}
	return Determinate, errors.Errorf("unknown progress mode %q", s)
}

const (
	MinValue = 0
	MaxValue = 100
)

// State is what the view currently displays. It is only ever
// mutated on the surface's UI thread.
type State struct {
	Message       string
	Value         int
	Mode          Mode
	CancelVisible bool
	CancelEnabled bool
}

// Fraction returns Value in [0,1], for toolkits that want that.
func (s State) Fraction() float64 {
	return float64(s.Value) / float64(MaxValue)
}

func clampValue(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

// Phase is fixed when the view is built.
type Phase int

const (
	// Standalone views have no controller, cancel just closes them.
	Standalone Phase = iota
	// Driven views are pushed state by a Controller.
	Driven
)

func (p Phase) String() string {
	if p == Driven {
		return "driven"
	}
	return "standalone"
}

// Outcome tracks where a driven view is in its lifecycle.
type Outcome int

const (
	Running Outcome = iota
	UserCancelled
	Completed
	Faulted
	ForceClosed
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case UserCancelled:
		return "user-cancelled"
	case Completed:
		return "completed"
	case Faulted:
		return "faulted"
	case ForceClosed:
		return "force-closed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
