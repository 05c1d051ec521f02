package harness

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Harness manages the test environment for itch-bootstrap
type Harness struct {
	t          *testing.T
	binaryPath string
	tempDir    string
}

// Result holds the output from running itch-bootstrap
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Messages []Message
}

// New creates a new test harness
func New(t *testing.T) *Harness {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "itch-bootstrap-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	h := &Harness{
		t:       t,
		tempDir: tempDir,
	}

	h.buildBinary()

	return h
}

// buildBinary builds itch-bootstrap for testing
func (h *Harness) buildBinary() {
	h.t.Helper()

	cwd, err := os.Getwd()
	if err != nil {
		h.t.Fatalf("Failed to get working directory: %v", err)
	}

	// Walk up to find go.mod
	projectRoot := cwd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			h.t.Fatalf("Could not find project root (go.mod)")
		}
		projectRoot = parent
	}

	h.binaryPath = filepath.Join(h.tempDir, "itch-bootstrap")
	goCache := filepath.Join(os.TempDir(), "itch-bootstrap-go-cache")

	// Build the binary without GTK to keep integration test builds fast.
	cmd := exec.Command("go", "build", "-tags", "nogtk", "-o", h.binaryPath, ".")
	cmd.Dir = projectRoot
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=0",
		fmt.Sprintf("GOCACHE=%s", goCache),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		h.t.Fatalf("Failed to build binary: %v\nOutput: %s", err, output)
	}
}

// TempDir returns the temporary directory for this test
func (h *Harness) TempDir() string {
	return h.tempDir
}

// LogDir is where runs write their logs and fault reports
func (h *Harness) LogDir() string {
	return filepath.Join(h.tempDir, "logs")
}

// WriteScript writes a YAML script into the temp dir and returns its path
func (h *Harness) WriteScript(name string, contents string) string {
	h.t.Helper()

	scriptPath := filepath.Join(h.tempDir, name)
	err := os.WriteFile(scriptPath, []byte(contents), 0644)
	if err != nil {
		h.t.Fatalf("Failed to write script: %v", err)
	}
	return scriptPath
}

// Run executes itch-bootstrap with the given arguments and no stdin.
// Always injects the headless JSON UI so no window or terminal is needed.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()
	return h.RunWithInput("", args...)
}

// RunWithInput executes itch-bootstrap, feeding input on stdin (prompt
// answers, for example).
func (h *Harness) RunWithInput(input string, args ...string) *Result {
	h.t.Helper()

	cmd := h.command(args)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return h.result(err, stdout.String(), stderr.String())
}

// command prepares a headless JSON run with a clean environment
func (h *Harness) command(args []string) *exec.Cmd {
	fullArgs := append([]string{"--ui", "headless", "--json", "--log-dir", h.LogDir()}, args...)
	cmd := exec.Command(h.binaryPath, fullArgs...)

	env := []string{
		fmt.Sprintf("HOME=%s", h.tempDir),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", filepath.Join(h.tempDir, "config")),
		"LANG=en_US.UTF-8",
	}

	// Copy minimal required environment variables
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "PATH=") {
			env = append(env, e)
		}
	}
	cmd.Env = env
	return cmd
}

func (h *Harness) result(err error, stdout, stderr string) *Result {
	result := &Result{
		Stdout: stdout,
		Stderr: stderr,
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			h.t.Logf("Run error: %v", err)
			result.ExitCode = -1
		}
	}

	result.Messages = ParseMessages(stdout)
	return result
}

// Running is an itch-bootstrap process started with Start
type Running struct {
	h        *Harness
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	stdout   bytes.Buffer
	lock     sync.Mutex
	messages chan Message
	readDone chan struct{}
}

// Start runs itch-bootstrap in the background. Its stdin stays open
// until Wait.
func (h *Harness) Start(args ...string) *Running {
	h.t.Helper()

	r := &Running{
		h:        h,
		cmd:      h.command(args),
		messages: make(chan Message, 256),
		readDone: make(chan struct{}),
	}
	r.cmd.Stderr = &r.stderr

	stdin, err := r.cmd.StdinPipe()
	if err != nil {
		h.t.Fatalf("Failed to open stdin: %v", err)
	}
	r.stdin = stdin

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		h.t.Fatalf("Failed to open stdout: %v", err)
	}

	if err := r.cmd.Start(); err != nil {
		h.t.Fatalf("Failed to start: %v", err)
	}

	go r.read(stdout)
	return r
}

func (r *Running) read(stdout io.Reader) {
	defer close(r.readDone)
	defer close(r.messages)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()

		r.lock.Lock()
		r.stdout.WriteString(line + "\n")
		r.lock.Unlock()

		if msg, ok := ParseMessage(line); ok {
			select {
			case r.messages <- msg:
			default:
				// nobody waiting for this many
			}
		}
	}
}

// WaitFor returns once a message matching match shows up, or false
// after timeout or when the process closes stdout.
func (r *Running) WaitFor(timeout time.Duration, match func(Message) bool) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-r.messages:
			if !ok {
				return false
			}
			if match(msg) {
				return true
			}
		case <-timer.C:
			return false
		}
	}
}

// Signal sends sig to the process
func (r *Running) Signal(sig os.Signal) {
	r.h.t.Helper()
	if err := r.cmd.Process.Signal(sig); err != nil {
		r.h.t.Fatalf("Failed to signal: %v", err)
	}
}

// Wait closes stdin and waits for the process to exit, killing it
// after timeout.
func (r *Running) Wait(timeout time.Duration) *Result {
	r.h.t.Helper()

	r.stdin.Close()
	killer := time.AfterFunc(timeout, func() {
		r.h.t.Logf("Process still running after %v, killing it", timeout)
		r.cmd.Process.Kill()
	})
	defer killer.Stop()

	<-r.readDone
	err := r.cmd.Wait()

	r.lock.Lock()
	defer r.lock.Unlock()
	return r.h.result(err, r.stdout.String(), r.stderr.String())
}

// ParseMessages extracts JSON messages from stdout
func ParseMessages(stdout string) []Message {
	var messages []Message
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if msg, ok := ParseMessage(line); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// Cleanup removes temporary files
func (h *Harness) Cleanup() {
	os.RemoveAll(h.tempDir)
}
