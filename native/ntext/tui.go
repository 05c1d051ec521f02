package ntext

import (
	"io"
	"log"
	"strings"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/itchio/itch-bootstrap/progress"
)

// TUITexts are the localized hints shown under the progress bar and
// in dialogs.
type TUITexts struct {
	CancelHint  string
	ConfirmHint string
	AckHint     string
}

type TUISettings struct {
	Title  string
	Texts  TUITexts
	Input  io.Reader
	Output io.Writer
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FA5C5C"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle   = dialogStyle.BorderForeground(lipgloss.Color("#FF5F87"))
	messageStyle = lipgloss.NewStyle().PaddingLeft(1)
)

// postMsg carries a function to run on the event loop.
type postMsg func()

type dialogKind int

const (
	dialogConfirm dialogKind = iota
	dialogInform
	dialogError
)

type dialog struct {
	kind    dialogKind
	title   string
	message string
	confirm func(ok bool)
	ack     func()
}

// tuiModel is only touched from the bubbletea event loop, which is
// the UI thread of this surface.
type tuiModel struct {
	title string
	texts TUITexts

	state    progress.State
	bar      bprogress.Model
	spinner  spinner.Model
	spinning bool

	dialog   *dialog
	onCancel func()
	hidden   bool
	quitting bool
}

func newTUIModel(title string, texts TUITexts) *tuiModel {
	return &tuiModel{
		title:   title,
		texts:   texts,
		bar:     bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Line)),
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		msg()
		return m, m.afterChange()

	case tea.KeyMsg:
		m.handleKey(msg.String())
		return m, m.afterChange()

	case spinner.TickMsg:
		if m.state.Mode != progress.Indeterminate {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 60 {
			width = 60
		}
		if width > 10 {
			m.bar.Width = width
		}
	}

	return m, nil
}

func (m *tuiModel) afterChange() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	if m.state.Mode == progress.Indeterminate && !m.spinning {
		m.spinning = true
		return m.spinner.Tick
	}
	return nil
}

func (m *tuiModel) handleKey(key string) {
	if d := m.dialog; d != nil {
		switch d.kind {
		case dialogConfirm:
			switch key {
			case "enter", "y", "o":
				m.dialog = nil
				d.confirm(true)
			case "esc", "n", "q", "ctrl+c":
				m.dialog = nil
				d.confirm(false)
			}
		default:
			switch key {
			case "enter", "esc", " ", "q", "ctrl+c":
				m.dialog = nil
				d.ack()
			}
		}
		return
	}

	switch key {
	case "esc", "c", "ctrl+c":
		if m.onCancel != nil && m.state.CancelVisible {
			m.onCancel()
		}
	}
}

func (m *tuiModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	// a hidden window can still pop dialogs
	if !m.hidden {
		m.viewProgress(&b)
	}

	if d := m.dialog; d != nil {
		style := dialogStyle
		hint := m.texts.AckHint
		switch d.kind {
		case dialogError:
			style = errorStyle
		case dialogConfirm:
			hint = m.texts.ConfirmHint
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(d.title),
			"",
			d.message,
			"",
			hintStyle.Render(hint),
		)
		b.WriteString("\n")
		b.WriteString(style.Render(body))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *tuiModel) viewProgress(b *strings.Builder) {
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.state.Mode == progress.Indeterminate {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	}
	b.WriteString(messageStyle.Render(m.state.Message))
	b.WriteString("\n")

	if m.state.Mode == progress.Determinate {
		b.WriteString(m.bar.ViewAs(m.state.Fraction()))
		b.WriteString("\n")
	}

	if m.state.CancelVisible {
		b.WriteString(hintStyle.Render(m.texts.CancelHint))
		b.WriteString("\n")
	}
}

// TUI renders the progress window in a terminal with bubbletea.
type TUI struct {
	model   *tuiModel
	program *tea.Program
	mb      *progress.Mailbox
}

var _ progress.Surface = (*TUI)(nil)

func NewTUI(settings TUISettings) *TUI {
	model := newTUIModel(settings.Title, settings.Texts)

	opts := []tea.ProgramOption{}
	if settings.Input != nil {
		opts = append(opts, tea.WithInput(settings.Input))
	}
	if settings.Output != nil {
		opts = append(opts, tea.WithOutput(settings.Output))
	}

	return &TUI{
		model:   model,
		program: tea.NewProgram(model, opts...),
		mb:      progress.NewMailbox(),
	}
}

// Post goes through a mailbox: Program.Send blocks until the event
// loop picks the message up, and Post must not.
func (t *TUI) Post(f func()) {
	t.mb.Post(f)
}

func (t *TUI) pump() {
	for {
		f, ok := t.mb.Next()
		if !ok {
			return
		}
		t.program.Send(postMsg(f))
	}
}

// Cancel behaves like the cancel key, dialogs included.
func (t *TUI) Cancel() {
	t.Post(func() { t.model.handleKey("esc") })
}

func (t *TUI) OnCancel(f func()) {
	t.model.onCancel = f
}

func (t *TUI) Render(s progress.State) {
	t.model.state = s
}

func (t *TUI) Hide() {
	t.model.hidden = true
}

func (t *TUI) Close() {
	t.model.quitting = true
	t.mb.Close()
}

func (t *TUI) Confirm(title, message string, done func(ok bool)) {
	t.model.dialog = &dialog{kind: dialogConfirm, title: title, message: message, confirm: done}
}

func (t *TUI) Inform(title, message string, done func()) {
	t.model.dialog = &dialog{kind: dialogInform, title: title, message: message, ack: done}
}

func (t *TUI) ShowError(title, message string, done func()) {
	t.model.dialog = &dialog{kind: dialogError, title: title, message: message, ack: done}
}

// Release gives the terminal back (cooked mode, cursor shown), for
// when the process is about to exit under our feet.
func (t *TUI) Release() {
	err := t.program.ReleaseTerminal()
	if err != nil {
		log.Printf("While releasing terminal: %v", err)
	}
}

func (t *TUI) Main() {
	go t.pump()

	_, err := t.program.Run()
	if err != nil {
		log.Printf("Terminal UI error: %+v", err)
	}
	t.mb.Close()
}
