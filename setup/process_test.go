package setup

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchio/itch-bootstrap/progress"
)

// recorder collects notifications as strings, in arrival order.
type recorder struct {
	lock   sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) snapshot() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) handlers() progress.Handlers {
	return progress.Handlers{
		OnCloseRequested:            func() { r.add("close") },
		OnShutdownPrompt:            func() { r.add("shutdown-prompt") },
		OnCompletionMessage:         func(text string) { r.add("success %s", text) },
		OnMessageChanged:            func(text string) { r.add("message %s", text) },
		OnProgressValueChanged:      func(value int) { r.add("progress %d", value) },
		OnProgressModeChanged:       func(mode progress.Mode) { r.add("mode %s", mode) },
		OnCancelAvailabilityChanged: func(enabled bool) { r.add("cancel %v", enabled) },
	}
}

func helperController(t *testing.T, scenario string) *ProcessController {
	t.Helper()
	pc, err := NewProcessController(ProcessSettings{
		Command:   []string{os.Args[0], "-test.run=TestHelperProcess", "--"},
		Env:       []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_SCENARIO=" + scenario},
		SessionID: "session-1234",
	})
	require.NoError(t, err)
	return pc
}

func runWithTimeout(t *testing.T, pc *ProcessController) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return pc.Run(ctx)
}

func TestProcessController_ForwardsNotifications(t *testing.T) {
	pc := helperController(t, "script")
	rec := &recorder{}
	pc.Subscribe(rec.handlers())

	err := runWithTimeout(t, pc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"message session session-1234",
		"message Downloading itch...",
		"progress 40",
		"mode indeterminate",
		"cancel true",
		"success itch is ready",
		"close",
	}, rec.snapshot())
}

func TestProcessController_ExitFailureIncludesStderr(t *testing.T) {
	pc := helperController(t, "fail")
	pc.Subscribe(progress.Handlers{})

	err := runWithTimeout(t, pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrapper failed")
	assert.Contains(t, err.Error(), "disk full")
}

func TestProcessController_BadPayloadIsReported(t *testing.T) {
	pc := helperController(t, "badpayload")
	rec := &recorder{}
	pc.Subscribe(rec.handlers())

	err := runWithTimeout(t, pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding progress payload")
	// later messages still went through
	assert.Equal(t, []string{"message still alive"}, rec.snapshot())
}

func TestProcessController_CancelIsForwarded(t *testing.T) {
	pc := helperController(t, "cancel")
	rec := &recorder{}
	h := rec.handlers()
	h.OnCancelAvailabilityChanged = func(enabled bool) {
		rec.add("cancel %v", enabled)
		if enabled {
			go pc.RequestCancel()
		}
	}
	pc.Subscribe(h)

	err := runWithTimeout(t, pc)
	require.NoError(t, err)
	assert.Equal(t, []string{"cancel true", "message cancelled by user"}, rec.snapshot())
}

func TestProcessController_ShutdownConfirmation(t *testing.T) {
	pc := helperController(t, "prompt")
	rec := &recorder{}
	pc.Subscribe(rec.handlers())

	err := runWithTimeout(t, pc)
	require.NoError(t, err)
	assert.Equal(t, []string{"shutdown-prompt", "message closing running client"}, rec.snapshot())
}

func TestProcessController_CancelAfterExit(t *testing.T) {
	pc := helperController(t, "script")
	pc.Subscribe(progress.Handlers{})

	pc.RequestCancel()
	assert.True(t, pc.cancelRequested, "remembered until the bootstrapper starts")

	pc.cancelRequested = false
	require.NoError(t, runWithTimeout(t, pc))

	pc.RequestCancel()
	assert.True(t, pc.exited)
	assert.False(t, pc.cancelRequested, "nobody left to forward it to")
}

func TestNewProcessController_EmptyCommand(t *testing.T) {
	_, err := NewProcessController(ProcessSettings{})
	assert.Error(t, err)
}

func TestTailWriter(t *testing.T) {
	tw := newTailWriter(2)
	fmt.Fprint(tw, "one\ntwo\nthr")
	fmt.Fprint(tw, "ee\nfour")

	assert.Equal(t, "two\nthree\nfour", tw.Tail())
}

func TestTailWriter_LongLinesAreSplit(t *testing.T) {
	tw := newTailWriter(3)
	for i := 0; i < 10; i++ {
		fmt.Fprint(tw, strings.Repeat("x", maxStderrLine/2+1))
		assert.LessOrEqual(t, len(tw.partial), maxStderrLine)
	}
	fmt.Fprint(tw, "\n")

	assert.Len(t, tw.lines, 3)
	for _, line := range tw.lines {
		assert.LessOrEqual(t, len(line), maxStderrLine)
	}
}

// TestHelperProcess isn't a real test, it's the fake bootstrapper the
// tests above run as a child process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	out := NewEmitter(os.Stdout)
	in := bufio.NewScanner(os.Stdin)
	waitFor := func(msgType string) {
		for in.Scan() {
			if msg, ok := ParseMessage(in.Text()); ok && msg.Type == msgType {
				return
			}
		}
		os.Exit(2)
	}

	switch os.Getenv("HELPER_SCENARIO") {
	case "script":
		out.Emit(StatusMessage{Message: "session " + os.Getenv(SessionIDEnv)})
		out.Emit(StatusMessage{Message: "Downloading itch..."})
		fmt.Println("this line is not JSON")
		out.Emit(Progress{Value: 40})
		out.Emit(ProgressMode{Mode: "marquee"})
		out.Emit(Log{Level: "info", Message: "verifying files"})
		out.Emit(CancelAvailable{Enabled: true})
		out.Emit(Success{Message: "itch is ready"})
		out.Emit(Close{})

	case "fail":
		fmt.Fprintln(os.Stderr, "writing app-25.4.0/itch.exe")
		fmt.Fprintln(os.Stderr, "disk full")
		os.Exit(3)

	case "badpayload":
		fmt.Println(`{"type":"progress","payload":{"value":"lots"}}`)
		out.Emit(StatusMessage{Message: "still alive"})

	case "cancel":
		out.Emit(CancelAvailable{Enabled: true})
		waitFor(Cancel{}.GetType())
		out.Emit(StatusMessage{Message: "cancelled by user"})

	case "prompt":
		out.Emit(ShutdownPrompt{})
		waitFor(ShutdownConfirmed{}.GetType())
		out.Emit(StatusMessage{Message: "closing running client"})
	}
}
