package progress

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Texts are the already-localized strings the view shows.
type Texts struct {
	// Title of every dialog the view opens
	Title string
	// Shown when there's no controller
	Standalone string
	// Shown until the controller says something
	Preparing string
	// Asked before the controller closes a running client
	ShutdownPrompt string
	// Formats the fatal error dialog from the full error description
	ErrorMessage func(details string) string
}

type ExitFunc func(code int)
type FaultHandler func(err error)

type ViewSettings struct {
	Surface Surface
	Texts   Texts

	// Terminates the process, defaults to os.Exit
	Exit ExitFunc
	// Called once, before the fatal error dialog is shown
	OnFault FaultHandler
}

const (
	exitCodeDeclined = 0
	exitCodeFatal    = 1
)

// View renders a State and forwards the cancel gesture.
// It owns no business state: a Controller pushes everything.
type View struct {
	settings   ViewSettings
	surface    Surface
	phase      Phase
	controller Controller

	// only touched on the UI thread
	state State

	outcomeLock sync.Mutex
	outcome     Outcome

	faulted   atomic.Bool
	faultOnce sync.Once
	runDone   chan struct{}
}

// NewStandalone builds a view with no controller. It shows the
// standalone text and its cancel button simply closes it.
func NewStandalone(settings ViewSettings) *View {
	v := newView(settings, Standalone)
	v.state = State{
		Message:       settings.Texts.Standalone,
		Mode:          Determinate,
		CancelVisible: true,
		CancelEnabled: true,
	}
	close(v.runDone)

	v.surface.OnCancel(v.onCancelClicked)
	v.surface.Post(v.render)
	return v
}

// NewDriven subscribes to the controller and starts its Run on a
// separate goroutine. It returns right away.
func NewDriven(ctx context.Context, settings ViewSettings, controller Controller) *View {
	v := newView(settings, Driven)
	v.controller = controller
	v.state = State{
		Message: settings.Texts.Preparing,
		Mode:    Determinate,
	}

	v.surface.OnCancel(v.onCancelClicked)
	v.surface.Post(v.render)

	controller.Subscribe(Handlers{
		OnCloseRequested:            v.CloseRequested,
		OnShutdownPrompt:            v.ShutdownPrompt,
		OnCompletionMessage:         v.CompletionMessage,
		OnMessageChanged:            v.MessageChanged,
		OnProgressValueChanged:      v.ProgressValueChanged,
		OnProgressModeChanged:       v.ProgressModeChanged,
		OnCancelAvailabilityChanged: v.CancelAvailabilityChanged,
	})

	go v.run(ctx)
	return v
}

func newView(settings ViewSettings, phase Phase) *View {
	if settings.Surface == nil {
		panic("progress: ViewSettings.Surface cannot be nil")
	}
	if settings.Exit == nil {
		settings.Exit = os.Exit
	}
	if settings.Texts.ErrorMessage == nil {
		settings.Texts.ErrorMessage = func(details string) string { return details }
	}

	return &View{
		settings: settings,
		surface:  settings.Surface,
		phase:    phase,
		runDone:  make(chan struct{}),
	}
}

func (v *View) Phase() Phase {
	return v.phase
}

func (v *View) Outcome() Outcome {
	v.outcomeLock.Lock()
	defer v.outcomeLock.Unlock()
	return v.outcome
}

// Done is closed once the controller's Run has returned (right
// away for standalone views).
func (v *View) Done() <-chan struct{} {
	return v.runDone
}

// transition only moves away from Running, except that a fault
// always wins.
func (v *View) transition(to Outcome) {
	v.outcomeLock.Lock()
	defer v.outcomeLock.Unlock()

	if v.outcome == Running || to == Faulted {
		log.Printf("View outcome: %s -> %s", v.outcome, to)
		v.outcome = to
	}
}

func (v *View) run(ctx context.Context) {
	defer close(v.runDone)

	log.Printf("Starting controller run...")
	err := v.controller.Run(ctx)
	if err != nil {
		v.fault(err)
		return
	}

	log.Printf("Controller run finished (outcome: %s), closing view", v.Outcome())
	v.surface.Post(v.surface.Close)
}

func (v *View) fault(err error) {
	v.faultOnce.Do(func() {
		v.faulted.Store(true)
		v.transition(Faulted)

		details := fmt.Sprintf("%+v", err)
		log.Printf("Fatal error: %s", details)

		if v.settings.OnFault != nil {
			v.settings.OnFault(err)
		}

		texts := v.settings.Texts
		v.surface.Post(func() {
			v.surface.ShowError(texts.Title, texts.ErrorMessage(details), func() {
				v.settings.Exit(exitCodeFatal)
			})
		})
	})
}

// post drops updates once the view has faulted: the error dialog
// is the last thing the user sees.
func (v *View) post(f func()) {
	if v.faulted.Load() {
		return
	}
	v.surface.Post(func() {
		if v.faulted.Load() {
			return
		}
		f()
	})
}

func (v *View) render() {
	v.surface.Render(v.state)
}

func (v *View) MessageChanged(text string) {
	v.post(func() {
		v.state.Message = text
		v.render()
	})
}

func (v *View) ProgressValueChanged(value int) {
	clamped := clampValue(value)
	if clamped != value {
		log.Printf("Progress value %d out of range, using %d", value, clamped)
	}

	v.post(func() {
		v.state.Value = clamped
		v.render()
	})
}

func (v *View) ProgressModeChanged(mode Mode) {
	v.post(func() {
		v.state.Mode = mode
		v.render()
	})
}

// CancelAvailabilityChanged shows and enables (or hides and
// disables) the cancel button. Those two never differ.
func (v *View) CancelAvailabilityChanged(enabled bool) {
	v.post(func() {
		v.state.CancelVisible = enabled
		v.state.CancelEnabled = enabled
		v.render()
	})
}

// CloseRequested hides the view, it stays alive until the
// controller's run is over.
func (v *View) CloseRequested() {
	if v.phase != Driven {
		log.Printf("Close requested on a standalone view, ignoring")
		return
	}
	v.post(v.surface.Hide)
}

// ShutdownPrompt asks the user whether the running client may be
// closed, and blocks until they answer. Anything but OK exits the
// whole process with a success code. Must not be called on the UI
// thread.
func (v *View) ShutdownPrompt() {
	if v.faulted.Load() {
		return
	}

	answer := make(chan bool, 1)
	texts := v.settings.Texts
	v.surface.Post(func() {
		v.surface.Confirm(texts.Title, texts.ShutdownPrompt, func(ok bool) {
			answer <- ok
		})
	})

	if ok := <-answer; !ok {
		log.Printf("Shutdown prompt declined, exiting")
		v.transition(ForceClosed)
		v.settings.Exit(exitCodeDeclined)
		return
	}
	log.Printf("Shutdown prompt confirmed")
}

// CompletionMessage shows text and blocks until acknowledged. It
// does not close the view. Must not be called on the UI thread.
func (v *View) CompletionMessage(text string) {
	if v.faulted.Load() {
		return
	}
	v.transition(Completed)

	acked := make(chan struct{})
	title := v.settings.Texts.Title
	v.surface.Post(func() {
		v.surface.Inform(title, text, func() {
			close(acked)
		})
	})
	<-acked
}

func (v *View) onCancelClicked() {
	if v.phase == Standalone {
		log.Printf("Cancel clicked, closing standalone view")
		v.surface.Close()
		return
	}

	if !v.state.CancelEnabled {
		return
	}

	log.Printf("Cancel clicked, notifying controller")
	v.transition(UserCancelled)
	go v.controller.RequestCancel()
}
