//go:build !linux && !windows

package native

import (
	"github.com/pkg/errors"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/progress"
)

func newGUISurface(cli cl.CLI) (progress.Surface, error) {
	return nil, errors.New("no native window support on this platform")
}
