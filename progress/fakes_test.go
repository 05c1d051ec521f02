package progress

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSurface runs posted functions on its own goroutine, like a
// toolkit main loop would, and records what it was asked to do.
type fakeSurface struct {
	mb *Mailbox

	mu         sync.Mutex
	renders    []State
	hidden     int
	closed     bool
	confirms   int
	informs    []string
	errors     []string
	cancelFunc func()

	confirmAnswer bool
	mainDone      chan struct{}
}

var _ Surface = (*fakeSurface)(nil)

func newFakeSurface(t *testing.T) *fakeSurface {
	s := &fakeSurface{
		mb:       NewMailbox(),
		mainDone: make(chan struct{}),
	}
	go func() {
		defer close(s.mainDone)
		s.Main()
	}()
	t.Cleanup(func() {
		s.mb.Close()
		<-s.mainDone
	})
	return s
}

func (s *fakeSurface) Post(f func()) { s.mb.Post(f) }

func (s *fakeSurface) OnCancel(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFunc = f
}

func (s *fakeSurface) Render(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders = append(s.renders, st)
}

func (s *fakeSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden++
}

func (s *fakeSurface) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.mb.Close()
}

func (s *fakeSurface) Confirm(title, message string, done func(ok bool)) {
	s.mu.Lock()
	s.confirms++
	answer := s.confirmAnswer
	s.mu.Unlock()
	done(answer)
}

func (s *fakeSurface) Inform(title, message string, done func()) {
	s.mu.Lock()
	s.informs = append(s.informs, message)
	s.mu.Unlock()
	done()
}

func (s *fakeSurface) ShowError(title, message string, done func()) {
	s.mu.Lock()
	s.errors = append(s.errors, message)
	s.mu.Unlock()
	done()
}

func (s *fakeSurface) Main() { s.mb.Run() }

// flush waits until everything posted so far has run.
func (s *fakeSurface) flush(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	s.Post(func() { close(done) })
	select {
	case <-done:
	case <-s.mainDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the UI loop")
	}
}

// clickCancel simulates the gesture on the UI thread.
func (s *fakeSurface) clickCancel(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	f := s.cancelFunc
	s.mu.Unlock()
	if f == nil {
		t.Fatal("no cancel handler registered")
	}
	s.Post(f)
	s.flush(t)
}

func (s *fakeSurface) lastRender() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.renders) == 0 {
		return State{}
	}
	return s.renders[len(s.renders)-1]
}

func (s *fakeSurface) snapshotRenders() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.renders...)
}

func (s *fakeSurface) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeController struct {
	runCalls    atomic.Int32
	cancelCalls atomic.Int32
	cancelled   chan struct{}
	cancelOnce  sync.Once

	handlers Handlers
	run      func(ctx context.Context, h Handlers) error
}

var _ Controller = (*fakeController)(nil)

func newFakeController(run func(ctx context.Context, h Handlers) error) *fakeController {
	return &fakeController{
		run:       run,
		cancelled: make(chan struct{}),
	}
}

func (c *fakeController) Subscribe(h Handlers) { c.handlers = h }

func (c *fakeController) Run(ctx context.Context) error {
	c.runCalls.Add(1)
	if c.run == nil {
		<-ctx.Done()
		return nil
	}
	return c.run(ctx, c.handlers)
}

func (c *fakeController) RequestCancel() {
	c.cancelCalls.Add(1)
	c.cancelOnce.Do(func() { close(c.cancelled) })
}

type exitRecorder struct {
	mu    sync.Mutex
	codes []int
}

func (e *exitRecorder) Exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

func (e *exitRecorder) snapshot() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.codes...)
}

func testTexts() Texts {
	return Texts{
		Title:          "Bootstrapper",
		Standalone:     "Click the Cancel button to return to preferences",
		Preparing:      "Please wait...",
		ShutdownPrompt: "itch is currently running, but needs to close.",
		ErrorMessage: func(details string) string {
			return "An error occurred while starting itch\n\nDetails: " + details
		},
	}
}
