package ntext

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/itchio/itch-bootstrap/progress"
	"github.com/itchio/itch-bootstrap/setup"
)

var printIncrement = 1 * time.Second

type HeadlessSettings struct {
	Title string
	// Answer yes to every confirmation without reading Input
	AssumeYes bool
	// Report as JSON lines on Output instead of colored text
	JSON bool

	// Treat the end of Input like a click on cancel
	CancelOnEOF bool

	Input  io.Reader
	Output io.Writer
}

// Headless has no window: it reports what a window would show. Its
// UI thread is whoever calls Main.
type Headless struct {
	settings HeadlessSettings
	mb       *progress.Mailbox
	emitter  *setup.Emitter

	// input state, UI thread only
	lines    []string
	eof      bool
	question string
	answer   func(ok bool)

	onCancel  func()
	last      progress.State
	rendered  bool
	lastPrint time.Time

	title *color.Color
	info  *color.Color
	warn  *color.Color
	fatal *color.Color
}

var _ progress.Surface = (*Headless)(nil)

func NewHeadless(settings HeadlessSettings) *Headless {
	h := &Headless{
		settings: settings,
		mb:       progress.NewMailbox(),
		emitter:  setup.NewEmitter(settings.Output),
		title:    color.New(color.FgHiRed, color.Bold),
		info:     color.New(color.FgCyan),
		warn:     color.New(color.FgYellow),
		fatal:    color.New(color.FgRed, color.Bold),
	}
	return h
}

func (h *Headless) Post(f func()) {
	h.mb.Post(f)
}

// OnCancel keeps f for Cancel, there's no button to click.
func (h *Headless) OnCancel(f func()) {
	h.onCancel = f
}

// Cancel behaves like a click on the cancel button. It is ignored
// while no cancel button would be shown.
func (h *Headless) Cancel() {
	h.Post(h.cancelClicked)
}

func (h *Headless) cancelClicked() {
	if h.onCancel == nil || !h.last.CancelVisible {
		log.Printf("Nothing to cancel right now")
		return
	}
	h.onCancel()
}

// readInput forwards Input line by line to the UI thread, until it
// runs dry.
func (h *Headless) readInput() {
	scanner := bufio.NewScanner(h.settings.Input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		h.Post(func() { h.handleLine(line) })
	}
	if err := scanner.Err(); err != nil {
		log.Printf("While reading input: %v", err)
	}
	h.Post(h.handleEOF)
}

func (h *Headless) handleLine(line string) {
	if h.answer != nil {
		h.settle(isYes(line))
		return
	}
	if strings.EqualFold(line, "cancel") {
		h.cancelClicked()
		return
	}
	// an answer typed ahead of its prompt
	h.lines = append(h.lines, line)
}

func (h *Headless) handleEOF() {
	h.eof = true
	if h.answer != nil {
		log.Printf("Input closed, no answer to prompt")
		h.settle(false)
	}
	if h.settings.CancelOnEOF {
		log.Printf("Input closed, cancelling")
		h.cancelClicked()
	}
}

func (h *Headless) emit(p setup.Payload) {
	err := h.emitter.Emit(p)
	if err != nil {
		log.Printf("Could not report (%s): %v", p.GetType(), err)
	}
}

func (h *Headless) Render(s progress.State) {
	prev := h.last
	first := !h.rendered
	h.last = s
	h.rendered = true

	if h.settings.JSON {
		if first || s.Message != prev.Message {
			h.emit(setup.StatusMessage{Message: s.Message})
		}
		if first || s.Mode != prev.Mode {
			h.emit(setup.ProgressMode{Mode: s.Mode.String()})
		}
		if first || s.Value != prev.Value {
			h.emit(setup.Progress{Value: s.Value})
		}
		if first || s.CancelEnabled != prev.CancelEnabled {
			h.emit(setup.CancelAvailable{Enabled: s.CancelEnabled})
		}
		return
	}

	if first {
		h.title.Fprintln(h.settings.Output, h.settings.Title)
	}
	// message changes always print, value changes are throttled
	if first || s.Message != prev.Message || s.Mode != prev.Mode || time.Since(h.lastPrint) > printIncrement {
		h.lastPrint = time.Now()
		h.info.Fprintf(h.settings.Output, "%s %s\n", textBar(s), s.Message)
	}
}

func textBar(s progress.State) string {
	if s.Mode == progress.Indeterminate {
		return "[~~~~~~~~~~]"
	}

	barWidth := 10
	sharps := int(s.Fraction() * float64(barWidth))
	dots := barWidth - sharps
	return "[" + strings.Repeat("#", sharps) + strings.Repeat(".", dots) + "]"
}

func (h *Headless) Hide() {
	if h.settings.JSON {
		h.emit(setup.Hidden{})
		return
	}
	log.Printf("Window hidden")
}

func (h *Headless) Close() {
	if h.settings.JSON {
		h.emit(setup.Closed{})
	}
	log.Printf("Window closed")
	h.mb.Close()
}

// Confirm waits for a line of Input. Closed or missing Input counts
// as a no.
func (h *Headless) Confirm(title, message string, done func(ok bool)) {
	h.question = message
	h.answer = done

	switch {
	case h.settings.AssumeYes:
		h.settle(true)
	case len(h.lines) > 0:
		line := h.lines[0]
		h.lines = h.lines[1:]
		h.settle(isYes(line))
	case h.eof || h.settings.Input == nil:
		h.settle(false)
	default:
		if !h.settings.JSON {
			h.warn.Fprintf(h.settings.Output, "%s\n%s [y/N] ", title, message)
		}
	}
}

func (h *Headless) settle(ok bool) {
	done := h.answer
	h.answer = nil

	if h.settings.JSON {
		h.emit(setup.Prompted{Message: h.question, Answer: ok})
	} else {
		fmt.Fprintf(h.settings.Output, "%s: %v\n", h.question, ok)
	}
	done(ok)
}

func isYes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "o", "oui", "ok":
		return true
	}
	return false
}

func (h *Headless) Inform(title, message string, done func()) {
	if h.settings.JSON {
		h.emit(setup.Informed{Message: message})
	} else {
		h.title.Fprintln(h.settings.Output, title)
		fmt.Fprintln(h.settings.Output, message)
	}
	done()
}

func (h *Headless) ShowError(title, message string, done func()) {
	if h.settings.JSON {
		h.emit(setup.Failed{Message: message})
	} else {
		h.fatal.Fprintln(h.settings.Output, title)
		h.fatal.Fprintln(h.settings.Output, message)
	}
	done()
}

func (h *Headless) Main() {
	if h.settings.Input != nil {
		go h.readInput()
	}
	h.mb.Run()
}
