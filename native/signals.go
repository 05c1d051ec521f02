package native

import (
	"log"
	"os"

	"github.com/itchio/itch-bootstrap/progress"
)

// Canceler is implemented by surfaces that can be told the user asked
// to cancel, as if they had clicked the cancel button.
type Canceler interface {
	Cancel()
}

// ForwardSignals turns the first signal into a cancel gesture on the
// surface, so the controller gets to wind down on its own terms.
// Signals after that, or any signal when the surface has no cancel
// gesture, call abort. It returns when signals is closed.
func ForwardSignals(signals <-chan os.Signal, surface progress.Surface, abort func()) {
	c, canCancel := surface.(Canceler)
	for sig := range signals {
		if canCancel {
			log.Printf("Got %v, cancelling", sig)
			c.Cancel()
			canCancel = false
			continue
		}
		log.Printf("Got %v, aborting", sig)
		abort()
	}
}
