package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/data"
	"github.com/itchio/itch-bootstrap/localize"
	"github.com/itchio/itch-bootstrap/native/ntext"
)

func testCLI(t *testing.T, ui string) cl.CLI {
	t.Helper()
	l, err := localize.NewLocalizer(data.Asset)
	require.NoError(t, err)

	return cl.CLI{
		AppName:     "itch",
		ProjectName: "itch",
		Localizer:   l,
		UI:          ui,
	}
}

func TestNewSurface_Explicit(t *testing.T) {
	s, err := NewSurface(testCLI(t, UIHeadless))
	require.NoError(t, err)
	assert.IsType(t, &ntext.Headless{}, s)
	assert.Implements(t, (*Canceler)(nil), s)

	s, err = NewSurface(testCLI(t, UITUI))
	require.NoError(t, err)
	assert.IsType(t, &ntext.TUI{}, s)
	assert.Implements(t, (*Releaser)(nil), s)
	assert.Implements(t, (*Canceler)(nil), s)
}

func TestNewSurface_AutoWithJSON(t *testing.T) {
	cli := testCLI(t, UIAuto)
	cli.JSON = true

	s, err := NewSurface(cli)
	require.NoError(t, err)
	assert.IsType(t, &ntext.Headless{}, s)
}

func TestNewSurface_Unknown(t *testing.T) {
	_, err := NewSurface(testCLI(t, "hologram"))
	assert.Error(t, err)
}
