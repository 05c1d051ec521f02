package progress

import "context"

type CloseRequestedHandler func()
type ShutdownPromptHandler func()
type CompletionMessageHandler func(text string)
type MessageChangedHandler func(text string)
type ProgressValueChangedHandler func(value int)
type ProgressModeChangedHandler func(mode Mode)
type CancelAvailabilityChangedHandler func(enabled bool)

// Handlers are the notification channels a Controller raises.
// Any of them may be called from any goroutine. ShutdownPrompt
// and CompletionMessage block the caller until the user answers.
type Handlers struct {
	OnCloseRequested            CloseRequestedHandler
	OnShutdownPrompt            ShutdownPromptHandler
	OnCompletionMessage         CompletionMessageHandler
	OnMessageChanged            MessageChangedHandler
	OnProgressValueChanged      ProgressValueChangedHandler
	OnProgressModeChanged       ProgressModeChangedHandler
	OnCancelAvailabilityChanged CancelAvailabilityChangedHandler
}

// A Controller does the actual bootstrapping work (download,
// install, launch). The view only shows what it's told.
type Controller interface {
	// Register the view's handlers. Called once, before Run.
	Subscribe(h Handlers)

	// Long-lived operation, called once on its own goroutine.
	// Any error returned is fatal.
	Run(ctx context.Context) error

	// The user clicked cancel. Advisory: the controller decides
	// whether and when to actually stop.
	RequestCancel()
}

// Notify helpers, so controllers don't have to nil-check every field.

func (h Handlers) CloseRequested() {
	if h.OnCloseRequested != nil {
		h.OnCloseRequested()
	}
}

func (h Handlers) ShutdownPrompt() {
	if h.OnShutdownPrompt != nil {
		h.OnShutdownPrompt()
	}
}

func (h Handlers) CompletionMessage(text string) {
	if h.OnCompletionMessage != nil {
		h.OnCompletionMessage(text)
	}
}

func (h Handlers) MessageChanged(text string) {
	if h.OnMessageChanged != nil {
		h.OnMessageChanged(text)
	}
}

func (h Handlers) ProgressValueChanged(value int) {
	if h.OnProgressValueChanged != nil {
		h.OnProgressValueChanged(value)
	}
}

func (h Handlers) ProgressModeChanged(mode Mode) {
	if h.OnProgressModeChanged != nil {
		h.OnProgressModeChanged(mode)
	}
}

func (h Handlers) CancelAvailabilityChanged(enabled bool) {
	if h.OnCancelAvailabilityChanged != nil {
		h.OnCancelAvailabilityChanged(enabled)
	}
}
