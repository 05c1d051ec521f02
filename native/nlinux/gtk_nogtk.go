//go:build linux && nogtk

package nlinux

import (
	"github.com/pkg/errors"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/progress"
)

// NewGtkSurface always fails when built without GTK support, callers
// fall back to a terminal surface.
func NewGtkSurface(cli cl.CLI) (progress.Surface, error) {
	return nil, errors.New("GTK support not built in")
}
