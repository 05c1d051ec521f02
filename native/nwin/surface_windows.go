package nwin

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/lxn/walk"
	ui "github.com/lxn/walk/declarative"
	"github.com/lxn/win"
	"github.com/pkg/errors"
	"github.com/scjalliance/comshim"
	"github.com/skratchdot/open-golang/open"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/progress"
)

type walkSurface struct {
	cli cl.CLI

	mainWindow *walk.MainWindow
	label      *walk.Label
	pb         *walk.ProgressBar
	btn        *walk.PushButton

	onCancel func()
	state    progress.State
	closing  bool
}

var _ progress.Surface = (*walkSurface)(nil)

// NewWalkSurface creates the progress window. It must be called from
// the thread that will call Main.
func NewWalkSurface(cli cl.CLI) (progress.Surface, error) {
	s := &walkSurface{cli: cli}
	err := s.create()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *walkSurface) create() error {
	cli := s.cli

	windowSize := ui.Size{
		Width:  500,
		Height: 160,
	}

	err := ui.MainWindow{
		Title:   cli.Localizer.T("bootstrap.window.title", map[string]string{"project_name": cli.ProjectName}),
		MinSize: windowSize,
		MaxSize: windowSize,
		Size:    windowSize,
		Layout: ui.VBox{
			Margins: ui.Margins{
				Left:   30,
				Right:  30,
				Top:    18,
				Bottom: 12,
			},
		},
		Children: []ui.Widget{
			ui.Label{
				Text:     cli.Localizer.T("bootstrap.status.preparing"),
				AssignTo: &s.label,
			},
			ui.VSpacer{Size: 10},
			ui.ProgressBar{
				MinValue: progress.MinValue,
				MaxValue: progress.MaxValue,
				AssignTo: &s.pb,
			},
			ui.VSpacer{},
			ui.Composite{
				Layout: ui.HBox{
					MarginsZero: true,
				},
				Children: []ui.Widget{
					ui.HSpacer{},
					ui.PushButton{
						Text:     cli.Localizer.T("bootstrap.action.cancel"),
						AssignTo: &s.btn,
						Visible:  false,
						OnClicked: func() {
							s.cancelClicked()
						},
					},
				},
			},
		},
		AssignTo: &s.mainWindow,
	}.Create()
	if err != nil {
		return errors.WithMessage(err, "creating progress window")
	}

	RemoveMaximizeBox(s.mainWindow)

	// closing the window is the same gesture as the cancel button
	s.mainWindow.Closing().Attach(func(canceled *bool, reason walk.CloseReason) {
		if s.closing {
			return
		}
		*canceled = true
		s.cancelClicked()
	})

	ic, err := walk.NewIconFromResourceId(101)
	if err != nil {
		log.Println("Could not load icon, oh well")
	} else {
		s.mainWindow.SetIcon(ic)
	}

	CenterWindow(s.mainWindow.AsFormBase())
	return nil
}

func (s *walkSurface) cancelClicked() {
	if s.onCancel != nil {
		s.onCancel()
	}
}

// Cancel behaves like a click on the cancel button.
func (s *walkSurface) Cancel() {
	s.Post(s.cancelClicked)
}

func (s *walkSurface) Post(f func()) {
	s.mainWindow.Synchronize(f)
}

func (s *walkSurface) OnCancel(f func()) {
	s.onCancel = f
}

func (s *walkSurface) Render(st progress.State) {
	prev := s.state
	s.state = st

	s.label.SetText(st.Message)
	s.btn.SetVisible(st.CancelVisible)
	s.btn.SetEnabled(st.CancelEnabled)

	if st.Mode != prev.Mode {
		err := s.pb.SetMarqueeMode(st.Mode == progress.Indeterminate)
		if err != nil {
			log.Printf("Could not switch progress bar mode: %v", err)
		}
	}
	if st.Mode == progress.Determinate {
		s.pb.SetValue(st.Value)
	}
}

func (s *walkSurface) Hide() {
	s.mainWindow.SetVisible(false)
}

func (s *walkSurface) Close() {
	if s.closing {
		return
	}
	s.closing = true
	err := s.mainWindow.Close()
	if err != nil {
		log.Printf("While closing window: %v", err)
	}
}

func (s *walkSurface) Confirm(title, message string, done func(ok bool)) {
	res := walk.MsgBox(s.mainWindow, title, message, walk.MsgBoxOKCancel|walk.MsgBoxIconWarning)
	done(res == win.IDOK)
}

func (s *walkSurface) Inform(title, message string, done func()) {
	walk.MsgBox(s.mainWindow, title, message, walk.MsgBoxOK|walk.MsgBoxIconInformation)
	done()
}

func (s *walkSurface) ShowError(title, message string, done func()) {
	cli := s.cli

	var dlg *walk.Dialog
	var te *walk.TextEdit

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, `%s`, cli.Localizer.T("bootstrap.error_dialog.title"))
	buf.WriteString("\n\n")
	fmt.Fprintf(buf, `%s-bootstrap, %s`, cli.AppName, cli.VersionString)
	buf.WriteString("\n\n")
	buf.WriteString(message)

	dlgDecl := ui.Dialog{
		Title:    title,
		MinSize:  ui.Size{Width: 600, Height: 400},
		Layout:   ui.VBox{},
		AssignTo: &dlg,
		Children: []ui.Widget{
			ui.TextEdit{
				Text:          strings.Replace(buf.String(), "\n", "\r\n", -1),
				StretchFactor: 2,
				ReadOnly:      true,
				VScroll:       true,
				MaxSize: ui.Size{
					Width:  0,
					Height: 600,
				},
				AssignTo: &te,
			},
			ui.Composite{
				Layout: ui.HBox{
					MarginsZero: true,
				},
				Children: []ui.Widget{
					ui.LinkLabel{
						Text: fmt.Sprintf(`<a href="%s">%s</a>`, cli.IssueTrackerURL, cli.Localizer.T("bootstrap.error_dialog.issue_tracker")),
						OnLinkActivated: func(link *walk.LinkLabelLink) {
							err := open.Start(link.URL())
							if err != nil {
								log.Printf("Could not open issue tracker: %v", err)
							}
						},
					},
					ui.HSpacer{},
				},
			},
			ui.VSpacer{Size: 10},
			ui.Composite{
				Layout: ui.HBox{
					MarginsZero: true,
				},
				Children: []ui.Widget{
					ui.HSpacer{},
					ui.PushButton{
						Text: cli.Localizer.T("prompt.action.ok"),
						OnClicked: func() {
							dlg.Close(0)
						},
					},
					ui.HSpacer{},
				},
			},
		},
	}

	err := dlgDecl.Create(s.mainWindow)
	if err != nil {
		log.Printf("Error in dialog: %+v", err)
		done()
		return
	}

	CenterWindow(dlg.AsFormBase())
	// deselect everything, the text is read-only
	te.SetTextSelection(-1, 0)

	dlg.Run()
	done()
}

func (s *walkSurface) Main() {
	comshim.Add(1)
	defer comshim.Done()

	s.mainWindow.Run()
}
