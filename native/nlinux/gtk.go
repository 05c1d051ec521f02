//go:build linux && !nogtk

package nlinux

import (
	"log"
	"sync"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/pkg/errors"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/progress"
)

const pulseIntervalMs = 100

// gtk surface implementation

type gtkSurface struct {
	cli cl.CLI

	win *gtk.Window
	l   *gtk.Label
	pb  *gtk.ProgressBar
	btn *gtk.Button

	onCancel func()
	state    progress.State
	pulsing  bool
	closed   bool
}

var _ progress.Surface = (*gtkSurface)(nil)

var (
	gtkOnce sync.Once
	gtkErr  error
)

// NewGtkSurface creates a GTK3 window for the progress view. It fails
// when there's no display to open it on.
func NewGtkSurface(cli cl.CLI) (progress.Surface, error) {
	gtkOnce.Do(func() {
		gtkErr = gtk.InitCheck(nil)
	})
	if gtkErr != nil {
		return nil, errors.WithMessage(gtkErr, "initializing GTK")
	}

	s := &gtkSurface{cli: cli}
	err := s.create()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *gtkSurface) create() error {
	var err error
	cli := s.cli

	s.win, err = gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return errors.WithMessage(err, "create GTK window")
	}
	s.win.SetTitle(cli.Localizer.T("bootstrap.window.title", map[string]string{"project_name": cli.ProjectName}))
	s.win.SetDefaultSize(500, -1)
	s.win.Connect("destroy", func() {
		gtk.MainQuit()
	})
	// closing the window is the same gesture as the cancel button
	s.win.Connect("delete-event", func() bool {
		if s.closed {
			return false
		}
		s.cancelClicked()
		return true
	})

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 18)
	if err != nil {
		return errors.WithMessage(err, "create box")
	}
	box.SetMarginTop(24)
	box.SetMarginBottom(18)
	s.win.Add(box)

	s.l, err = gtk.LabelNew(cli.Localizer.T("bootstrap.status.preparing"))
	if err != nil {
		return errors.WithMessage(err, "create label")
	}
	s.l.SetLineWrap(true)
	box.Add(s.l)

	s.pb, err = gtk.ProgressBarNew()
	if err != nil {
		return errors.WithMessage(err, "create progress bar")
	}
	s.pb.SetMarginStart(30)
	s.pb.SetMarginEnd(30)
	s.pb.SetPulseStep(0.05)
	box.Add(s.pb)

	hbox, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 10)
	if err != nil {
		return errors.WithMessage(err, "create button box")
	}
	hbox.SetMarginEnd(30)
	box.Add(hbox)

	s.btn, err = gtk.ButtonNewWithLabel(cli.Localizer.T("bootstrap.action.cancel"))
	if err != nil {
		return errors.WithMessage(err, "create cancel button")
	}
	s.btn.Connect("clicked", func() {
		s.cancelClicked()
	})
	// visibility is ours to manage, ShowAll must not override it
	s.btn.SetNoShowAll(true)
	hbox.PackEnd(s.btn, false, false, 0)

	log.Printf("Positioning and showing window...")

	s.win.SetResizable(false)
	s.win.SetPosition(gtk.WIN_POS_CENTER)
	s.win.ShowAll()

	return nil
}

func (s *gtkSurface) cancelClicked() {
	if s.onCancel != nil {
		s.onCancel()
	}
}

// Cancel behaves like a click on the cancel button.
func (s *gtkSurface) Cancel() {
	s.Post(s.cancelClicked)
}

func (s *gtkSurface) Post(f func()) {
	glib.IdleAdd(f)
}

func (s *gtkSurface) OnCancel(f func()) {
	s.onCancel = f
}

func (s *gtkSurface) Render(st progress.State) {
	s.state = st

	s.l.SetText(st.Message)
	s.btn.SetVisible(st.CancelVisible)
	s.btn.SetSensitive(st.CancelEnabled)

	switch st.Mode {
	case progress.Indeterminate:
		s.startPulsing()
	default:
		s.pb.SetFraction(st.Fraction())
	}
}

func (s *gtkSurface) startPulsing() {
	if s.pulsing {
		return
	}
	s.pulsing = true

	glib.TimeoutAdd(pulseIntervalMs, func() bool {
		if s.closed || s.state.Mode != progress.Indeterminate {
			s.pulsing = false
			s.pb.SetFraction(s.state.Fraction())
			return false
		}
		s.pb.Pulse()
		return true
	})
}

func (s *gtkSurface) Hide() {
	s.win.Hide()
}

func (s *gtkSurface) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.win.Destroy()
}

func (s *gtkSurface) Confirm(title, message string, done func(ok bool)) {
	dialog := gtk.MessageDialogNew(s.win, gtk.DIALOG_MODAL, gtk.MESSAGE_WARNING, gtk.BUTTONS_OK_CANCEL, "%s", message)
	dialog.SetTitle(title)
	res := dialog.Run()
	dialog.Destroy()

	done(res == gtk.RESPONSE_OK)
}

func (s *gtkSurface) Inform(title, message string, done func()) {
	dialog := gtk.MessageDialogNew(s.win, gtk.DIALOG_MODAL, gtk.MESSAGE_INFO, gtk.BUTTONS_OK, "%s", message)
	dialog.SetTitle(title)
	dialog.Run()
	dialog.Destroy()

	done()
}

func (s *gtkSurface) ShowError(title, message string, done func()) {
	cli := s.cli

	dialog := gtk.MessageDialogNewWithMarkup(s.win, gtk.DIALOG_MODAL, gtk.MESSAGE_ERROR, gtk.BUTTONS_OK, "")
	dialog.SetTitle(title)

	dialog.SetMarkup(errorMarkup(errorDetails{
		Heading:  cli.Localizer.T("bootstrap.error_dialog.title"),
		AppName:  cli.AppName,
		Version:  cli.VersionString,
		LinkURL:  cli.IssueTrackerURL,
		LinkText: cli.Localizer.T("bootstrap.error_dialog.issue_tracker"),
		Message:  message,
	}))
	dialog.Run()
	dialog.Destroy()

	done()
}

func (s *gtkSurface) Main() {
	gtk.Main()
}
