package test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchio/itch-bootstrap/test/harness"
)

func logResult(t *testing.T, result *harness.Result) {
	t.Helper()
	t.Logf("Exit code: %d", result.ExitCode)
	t.Logf("Stderr:\n%s", result.Stderr)
	for i, msg := range result.Messages {
		t.Logf("  [%d] type=%s payload=%s", i, msg.Type, msg.Payload)
	}
}

func TestScript_RunsToCompletion(t *testing.T) {
	h := harness.New(t)
	defer h.Cleanup()

	script := h.WriteScript("ok.yaml", `
steps:
  - message: Connecting...
  - progress: 40
  - mode: marquee
  - progress: 150
  - mode: determinate
  - success: itch is ready to play
  - close: true
`)

	result := h.Run("--script", script)
	logResult(t, result)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, []string{"Please wait...", "Connecting..."}, result.Texts())

	var values []int
	for _, msg := range result.GetAllMessagesOfType(harness.TypeProgress) {
		p, ok := msg.GetProgressPayload()
		require.True(t, ok)
		values = append(values, p.Value)
	}
	assert.Equal(t, []int{0, 40, 100}, values, "out of range values are clamped")

	informed := result.GetFirstMessageOfType(harness.TypeInformed)
	require.NotNil(t, informed)
	p, ok := informed.GetTextPayload()
	require.True(t, ok)
	assert.Equal(t, "itch is ready to play", p.Message)

	assert.True(t, result.HasMessageType(harness.TypeHidden))
	assert.True(t, result.HasMessageType(harness.TypeClosed))
	assert.False(t, result.HasMessageType(harness.TypeFailed))
}

func TestScript_FailureShowsOneErrorAndExitsOne(t *testing.T) {
	h := harness.New(t)
	defer h.Cleanup()

	script := h.WriteScript("fail.yaml", `
steps:
  - message: Verifying...
  - fail: checksum mismatch for itch.exe
  - message: never shown
`)

	result := h.Run("--script", script)
	logResult(t, result)

	assert.Equal(t, 1, result.ExitCode)

	failed := result.GetAllMessagesOfType(harness.TypeFailed)
	require.Len(t, failed, 1)
	p, ok := failed[0].GetTextPayload()
	require.True(t, ok)
	assert.Contains(t, p.Message, "An error occurred while starting itch")
	assert.Contains(t, p.Message, "checksum mismatch for itch.exe")

	assert.NotContains(t, result.Texts(), "never shown")
	assert.False(t, result.HasMessageType(harness.TypeClosed))

	report, err := os.ReadFile(filepath.Join(h.LogDir(), "last-error.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "checksum mismatch for itch.exe")
}

const promptScript = `
steps:
  - message: Checking for a running client...
  - shutdown-prompt: true
  - message: Closing itch...
  - close: true
`

func TestShutdownPrompt_DeclinedExitsZero(t *testing.T) {
	h := harness.New(t)
	defer h.Cleanup()

	script := h.WriteScript("prompt.yaml", promptScript)

	result := h.RunWithInput("n\n", "--script", script)
	logResult(t, result)

	assert.Equal(t, 0, result.ExitCode)

	prompted := result.GetFirstMessageOfType(harness.TypePrompted)
	require.NotNil(t, prompted)
	p, ok := prompted.GetPromptedPayload()
	require.True(t, ok)
	assert.False(t, p.Answer)
	assert.Equal(t, "itch is currently running, but needs to close. Would you like to close itch now?", p.Message)

	// the process exits on the spot, nothing after the prompt happens
	assert.NotContains(t, result.Texts(), "Closing itch...")
	assert.False(t, result.HasMessageType(harness.TypeClosed))
}

func TestShutdownPrompt_AssumeYes(t *testing.T) {
	h := harness.New(t)
	defer h.Cleanup()

	script := h.WriteScript("prompt.yaml", promptScript)

	result := h.Run("--assume-yes", "--script", script)
	logResult(t, result)

	assert.Equal(t, 0, result.ExitCode)

	prompted := result.GetFirstMessageOfType(harness.TypePrompted)
	require.NotNil(t, prompted)
	p, ok := prompted.GetPromptedPayload()
	require.True(t, ok)
	assert.True(t, p.Answer)

	assert.Contains(t, result.Texts(), "Closing itch...")
	assert.True(t, result.HasMessageType(harness.TypeClosed))
}

func TestBootstrapperProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	h := harness.New(t)
	defer h.Cleanup()

	result := h.Run("--", "sh", "-c", `
echo '{"type":"message","payload":{"message":"Downloading itch..."}}'
echo 'not json, just noise'
echo '{"type":"progress","payload":{"value":55}}'
echo '{"type":"close"}'
`)
	logResult(t, result)

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Texts(), "Downloading itch...")
	assert.True(t, result.HasMessageType(harness.TypeHidden))
	assert.True(t, result.HasMessageType(harness.TypeClosed))
}

func TestBootstrapperProcess_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	h := harness.New(t)
	defer h.Cleanup()

	result := h.Run("--", "sh", "-c", `echo 'could not reach broth.itch.zone' >&2; exit 3`)
	logResult(t, result)

	assert.Equal(t, 1, result.ExitCode)

	failed := result.GetAllMessagesOfType(harness.TypeFailed)
	require.Len(t, failed, 1)
	p, ok := failed[0].GetTextPayload()
	require.True(t, ok)
	assert.Contains(t, p.Message, "could not reach broth.itch.zone")
}

func TestStandalone_ClosedStdinExitsZero(t *testing.T) {
	h := harness.New(t)
	defer h.Cleanup()

	for _, args := range [][]string{{"--standalone"}, {}} {
		result := h.Run(args...)
		logResult(t, result)

		assert.Equal(t, 0, result.ExitCode, "args: %v", args)
		assert.Equal(t, []string{"Click the Cancel button to return to preferences"}, result.Texts())
		assert.True(t, result.HasMessageType(harness.TypeClosed))
		assert.False(t, result.HasMessageType(harness.TypeFailed))
	}
}

func TestInterrupt_CancelsInsteadOfFailing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no SIGINT to send")
	}

	h := harness.New(t)
	defer h.Cleanup()

	script := h.WriteScript("slow.yaml", `
cancel-message: Cancelled by user
steps:
  - message: Downloading itch...
  - cancel: true
  - sleep: 30s
  - message: never shown
`)

	running := h.Start("--script", script)
	cancellable := running.WaitFor(10*time.Second, func(msg harness.Message) bool {
		p, ok := msg.GetCancelAvailablePayload()
		return ok && p.Enabled
	})
	require.True(t, cancellable, "cancel never became available")

	running.Signal(os.Interrupt)
	result := running.Wait(20 * time.Second)
	logResult(t, result)

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Texts(), "Cancelled by user")
	assert.NotContains(t, result.Texts(), "never shown")
	assert.True(t, result.HasMessageType(harness.TypeClosed))
	assert.False(t, result.HasMessageType(harness.TypeFailed))

	_, err := os.Stat(filepath.Join(h.LogDir(), "last-error.txt"))
	assert.True(t, os.IsNotExist(err), "no fault report for a cancel")
}
