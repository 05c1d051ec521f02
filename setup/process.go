package setup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/itchio/itch-bootstrap/progress"
)

const (
	SessionIDEnv = "BOOTSTRAP_SESSION_ID"
	stderrTail   = 20
	maxLineSize  = 1024 * 1024
	// stderr lines longer than that are split
	maxStderrLine = 4 * 1024
)

type ProcessSettings struct {
	// Bootstrapper command line, the first element is the executable
	Command []string
	// Extra `KEY=value` pairs on top of our own environment
	Env       []string
	Dir       string
	SessionID string
}

// ProcessController drives the view from an external bootstrapper
// process, speaking JSON lines over its stdin/stdout.
type ProcessController struct {
	settings ProcessSettings
	handlers progress.Handlers

	lock            sync.Mutex
	requests        *Emitter
	cancelRequested bool
	exited          bool
}

var _ progress.Controller = (*ProcessController)(nil)

func NewProcessController(settings ProcessSettings) (*ProcessController, error) {
	if len(settings.Command) == 0 || settings.Command[0] == "" {
		return nil, errors.Errorf("ProcessSettings.Command cannot be empty")
	}

	return &ProcessController{settings: settings}, nil
}

func (pc *ProcessController) Subscribe(h progress.Handlers) {
	pc.handlers = h
}

func (pc *ProcessController) RequestCancel() {
	pc.lock.Lock()
	defer pc.lock.Unlock()

	if pc.exited {
		log.Printf("Cancel requested, but bootstrapper already exited")
		return
	}

	pc.cancelRequested = true
	if pc.requests == nil {
		log.Printf("Cancel requested before bootstrapper started, will forward it")
		return
	}

	log.Printf("Forwarding cancel request to bootstrapper")
	logEmitError(pc.requests.Emit(Cancel{}))
}

func (pc *ProcessController) Run(ctx context.Context) error {
	s := pc.settings
	log.Printf("Starting bootstrapper (%s)", strings.Join(s.Command, " "))

	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), s.Env...)
	if s.SessionID != "" {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", SessionIDEnv, s.SessionID))
	}

	stderr := newTailWriter(stderrTail)
	cmd.Stderr = stderr
	// a Ctrl-C in the terminal is ours to forward
	isolate(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.WithMessage(err, "while opening bootstrapper stdin")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.WithMessage(err, "while opening bootstrapper stdout")
	}

	err = cmd.Start()
	if err != nil {
		return errors.WithMessage(err, "while starting bootstrapper")
	}
	log.Printf("Bootstrapper running as PID %d", cmd.Process.Pid)

	pc.lock.Lock()
	pc.requests = NewEmitter(stdin)
	if pc.cancelRequested {
		logEmitError(pc.requests.Emit(Cancel{}))
	}
	pc.lock.Unlock()

	var result *multierror.Error
	if err := pc.consume(stdout); err != nil {
		result = multierror.Append(result, err)
	}

	waitErr := cmd.Wait()

	pc.lock.Lock()
	pc.requests = nil
	pc.exited = true
	pc.lock.Unlock()

	if waitErr != nil {
		msg := "bootstrapper failed"
		if tail := stderr.Tail(); tail != "" {
			msg = fmt.Sprintf("%s, last output:\n%s", msg, tail)
		}
		result = multierror.Append(result, errors.WithMessage(waitErr, msg))
	}

	return result.ErrorOrNil()
}

// consume dispatches notifications until stdout is closed. Malformed
// payloads don't stop the bootstrapper, but they are reported.
func (pc *ProcessController) consume(r io.Reader) error {
	var result *multierror.Error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		msg, ok := ParseMessage(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				log.Printf("[bootstrapper] %s", line)
			}
			continue
		}

		if err := pc.dispatch(msg); err != nil {
			log.Printf("While handling (%s) from bootstrapper: %v", msg.Type, err)
			result = multierror.Append(result, err)
		}
	}

	if err := scanner.Err(); err != nil {
		result = multierror.Append(result, errors.WithMessage(err, "while reading bootstrapper output"))
		// keep the pipe drained so the child doesn't block on a full pipe
		io.Copy(io.Discard, r)
	}

	return result.ErrorOrNil()
}

func (pc *ProcessController) dispatch(msg Message) error {
	h := pc.handlers

	switch msg.Type {
	case StatusMessage{}.GetType():
		var p StatusMessage
		if err := msg.DecodePayload(&p); err != nil {
			return err
		}
		h.MessageChanged(p.Message)

	case Progress{}.GetType():
		var p Progress
		if err := msg.DecodePayload(&p); err != nil {
			return err
		}
		h.ProgressValueChanged(p.Value)

	case ProgressMode{}.GetType():
		var p ProgressMode
		if err := msg.DecodePayload(&p); err != nil {
			return err
		}
		mode, err := progress.ParseMode(p.Mode)
		if err != nil {
			return err
		}
		h.ProgressModeChanged(mode)

	case CancelAvailable{}.GetType():
		var p CancelAvailable
		if err := msg.DecodePayload(&p); err != nil {
			return err
		}
		h.CancelAvailabilityChanged(p.Enabled)

	case Close{}.GetType():
		h.CloseRequested()

	case ShutdownPrompt{}.GetType():
		// blocks until the user answers. If they decline, we never
		// get past this line: the whole process exits.
		h.ShutdownPrompt()
		pc.lock.Lock()
		if pc.requests != nil {
			logEmitError(pc.requests.Emit(ShutdownConfirmed{}))
		}
		pc.lock.Unlock()

	case Success{}.GetType():
		var p Success
		if err := msg.DecodePayload(&p); err != nil {
			return err
		}
		h.CompletionMessage(p.Message)

	case Log{}.GetType():
		var p Log
		if err := msg.DecodePayload(&p); err != nil {
			return err
		}
		log.Printf("[bootstrapper] [%s] %s", p.Level, p.Message)

	default:
		log.Printf("Ignoring unknown message type (%s) from bootstrapper", msg.Type)
	}

	return nil
}

// tailWriter logs what the child writes to stderr and remembers
// the last few lines, for the error dialog.
type tailWriter struct {
	lock    sync.Mutex
	max     int
	partial string
	lines   []string
}

func newTailWriter(max int) *tailWriter {
	return &tailWriter{max: max}
}

func (tw *tailWriter) Write(p []byte) (int, error) {
	tw.lock.Lock()
	defer tw.lock.Unlock()

	tw.partial += string(p)
	for {
		i := strings.IndexByte(tw.partial, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(tw.partial[:i], "\r")
		tw.partial = tw.partial[i+1:]
		tw.push(line)
	}
	for len(tw.partial) > maxStderrLine {
		tw.push(tw.partial[:maxStderrLine])
		tw.partial = tw.partial[maxStderrLine:]
	}
	return len(p), nil
}

func (tw *tailWriter) push(line string) {
	log.Printf("[bootstrapper stderr] %s", line)
	tw.lines = append(tw.lines, line)
	if len(tw.lines) > tw.max {
		tw.lines = tw.lines[len(tw.lines)-tw.max:]
	}
}

func (tw *tailWriter) Tail() string {
	tw.lock.Lock()
	defer tw.lock.Unlock()

	lines := tw.lines
	if tw.partial != "" {
		lines = append(append([]string(nil), lines...), tw.partial)
	}
	return strings.Join(lines, "\n")
}
