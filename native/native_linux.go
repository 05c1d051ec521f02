package native

import (
	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/native/nlinux"
	"github.com/itchio/itch-bootstrap/progress"
)

// GTK3 on Linux, unless built with `-tags nogtk`.
func newGUISurface(cli cl.CLI) (progress.Surface, error) {
	return nlinux.NewGtkSurface(cli)
}
