package native

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/itchio/itch-bootstrap/progress"
)

type signalSurface struct {
	progress.Surface
	cancels int
}

func (s *signalSurface) Cancel() {
	s.cancels++
}

func TestForwardSignals_CancelsThenAborts(t *testing.T) {
	defer goleak.VerifyNone(t)

	surface := &signalSurface{}
	aborts := 0

	signals := make(chan os.Signal, 3)
	signals <- os.Interrupt
	signals <- syscall.SIGTERM
	signals <- os.Interrupt
	close(signals)

	ForwardSignals(signals, surface, func() { aborts++ })

	assert.Equal(t, 1, surface.cancels)
	assert.Equal(t, 2, aborts)
}

type plainSurface struct {
	progress.Surface
}

func TestForwardSignals_NoGestureAborts(t *testing.T) {
	aborts := 0

	signals := make(chan os.Signal, 1)
	signals <- os.Interrupt
	close(signals)

	ForwardSignals(signals, plainSurface{}, func() { aborts++ })

	assert.Equal(t, 1, aborts)
}
