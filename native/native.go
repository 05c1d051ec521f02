package native

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/native/ntext"
	"github.com/itchio/itch-bootstrap/progress"
)

const (
	UIAuto     = "auto"
	UIGUI      = "gui"
	UITUI      = "tui"
	UIHeadless = "headless"
)

// Releaser is implemented by surfaces that take over the terminal.
// Release must be called before exiting the process under them.
type Releaser interface {
	Release()
}

// NewSurface picks where the progress view renders. In `auto` mode
// it tries a native window, then the terminal, then plain output.
func NewSurface(cli cl.CLI) (progress.Surface, error) {
	switch cli.UI {
	case UIGUI:
		return newGUISurface(cli)
	case UITUI:
		return newTUISurface(cli), nil
	case UIHeadless:
		return newHeadlessSurface(cli), nil
	case UIAuto, "":
		if cli.JSON {
			return newHeadlessSurface(cli), nil
		}

		s, err := newGUISurface(cli)
		if err == nil {
			return s, nil
		}
		log.Printf("No native window (%v), trying the terminal", err)

		if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
			return newTUISurface(cli), nil
		}
		log.Printf("Not a terminal, falling back to headless output")
		return newHeadlessSurface(cli), nil
	}

	return nil, errors.Errorf("unknown UI (%s), expected one of auto, gui, tui, headless", cli.UI)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newTUISurface(cli cl.CLI) progress.Surface {
	l := cli.Localizer
	return ntext.NewTUI(ntext.TUISettings{
		Title: l.T("bootstrap.window.title", map[string]string{"project_name": cli.ProjectName}),
		Texts: ntext.TUITexts{
			CancelHint:  l.T("bootstrap.text.cancel_hint"),
			ConfirmHint: l.T("bootstrap.text.confirm_hint"),
			AckHint:     l.T("bootstrap.text.ack_hint"),
		},
	})
}

func newHeadlessSurface(cli cl.CLI) progress.Surface {
	return ntext.NewHeadless(ntext.HeadlessSettings{
		Title:     cli.Localizer.T("bootstrap.window.title", map[string]string{"project_name": cli.ProjectName}),
		AssumeYes: cli.AssumeYes,
		JSON:      cli.JSON,
		// without a bootstrapper, a closed stdin is the only way out
		CancelOnEOF: cli.Standalone,
		Input:       os.Stdin,
		Output:      os.Stdout,
	})
}
