package progress

// Surface is the toolkit side of the progress window. It doesn't
// have to be an actual window: it can be a terminal, or log lines.
//
// Everything except Post must be called on the UI thread.
type Surface interface {
	// Queue f to run on the UI thread. Must never block, and must
	// run queued functions in the order they were posted.
	Post(f func())

	// Register what happens when the user clicks cancel. The
	// callback runs on the UI thread.
	OnCancel(f func())

	// Render a full snapshot of the state
	Render(s State)

	// Hide the window without tearing it down
	Hide()
	// Tear the window down and make Main return
	Close()

	// Modal OK/Cancel question, done gets true only for OK
	Confirm(title, message string, done func(ok bool))
	// Modal informational message, done is called once acknowledged
	Inform(title, message string, done func())
	// Modal error message, done is called once dismissed
	ShowError(title, message string, done func())

	// Blocks until Close is called
	Main()
}
