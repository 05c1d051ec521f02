package native

import (
	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/native/nwin"
	"github.com/itchio/itch-bootstrap/progress"
)

func newGUISurface(cli cl.CLI) (progress.Surface, error) {
	return nwin.NewWalkSurface(cli)
}
