package setup

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/itchio/itch-bootstrap/progress"
)

// Script is a canned sequence of notifications, for demos and for
// exercising a surface without a real bootstrapper.
type Script struct {
	// Keep going when the user clicks cancel
	IgnoreCancel bool `yaml:"ignore-cancel"`
	// Shown when the script stops because of a cancel
	CancelMessage string       `yaml:"cancel-message"`
	Steps         []ScriptStep `yaml:"steps"`
}

// ScriptStep holds exactly one action.
type ScriptStep struct {
	Message        *string `yaml:"message"`
	Progress       *int    `yaml:"progress"`
	Mode           *string `yaml:"mode"`
	Cancel         *bool   `yaml:"cancel"`
	Sleep          *string `yaml:"sleep"`
	Close          *bool   `yaml:"close"`
	ShutdownPrompt *bool   `yaml:"shutdown-prompt"`
	Success        *string `yaml:"success"`
	Fail           *string `yaml:"fail"`

	mode  progress.Mode
	sleep time.Duration
}

func (st *ScriptStep) actions() int {
	n := 0
	for _, set := range []bool{
		st.Message != nil,
		st.Progress != nil,
		st.Mode != nil,
		st.Cancel != nil,
		st.Sleep != nil,
		st.Close != nil,
		st.ShutdownPrompt != nil,
		st.Success != nil,
		st.Fail != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func ParseScript(data []byte) (*Script, error) {
	s := &Script{}
	err := yaml.UnmarshalWithOptions(data, s, yaml.Strict())
	if err != nil {
		return nil, errors.WithMessage(err, "parsing script")
	}

	for i := range s.Steps {
		st := &s.Steps[i]
		if n := st.actions(); n != 1 {
			return nil, errors.Errorf("script step %d: expected exactly one action, got %d", i+1, n)
		}

		// these are triggers, they have no "off" setting
		for key, flag := range map[string]*bool{"close": st.Close, "shutdown-prompt": st.ShutdownPrompt} {
			if flag != nil && !*flag {
				return nil, errors.Errorf("script step %d: %s can only be true, leave the step out instead", i+1, key)
			}
		}

		if st.Mode != nil {
			st.mode, err = progress.ParseMode(*st.Mode)
			if err != nil {
				return nil, errors.WithMessage(err, fmt.Sprintf("script step %d", i+1))
			}
		}

		if st.Sleep != nil {
			st.sleep, err = time.ParseDuration(*st.Sleep)
			if err != nil {
				return nil, errors.WithMessage(err, fmt.Sprintf("script step %d", i+1))
			}
		}
	}

	return s, nil
}

func LoadScript(fs afero.Fs, path string) (*Script, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.WithMessage(err, "reading script")
	}

	s, err := ParseScript(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return s, nil
}

// ScriptController replays a Script.
type ScriptController struct {
	script   *Script
	handlers progress.Handlers

	cancelOnce sync.Once
	cancelled  chan struct{}
}

var _ progress.Controller = (*ScriptController)(nil)

func NewScriptController(script *Script) *ScriptController {
	return &ScriptController{
		script:    script,
		cancelled: make(chan struct{}),
	}
}

func (sc *ScriptController) Subscribe(h progress.Handlers) {
	sc.handlers = h
}

func (sc *ScriptController) RequestCancel() {
	if sc.script.IgnoreCancel {
		log.Printf("Script ignores cancel requests")
		return
	}
	sc.cancelOnce.Do(func() {
		log.Printf("Script cancel requested")
		close(sc.cancelled)
	})
}

func (sc *ScriptController) isCancelled() bool {
	select {
	case <-sc.cancelled:
		return true
	default:
		return false
	}
}

// Run replays the steps. A cancel stops it cleanly between steps
// (or during a sleep), a `fail` step returns an error.
func (sc *ScriptController) Run(ctx context.Context) error {
	h := sc.handlers

	for i, st := range sc.script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sc.isCancelled() {
			return sc.stopCancelled(i)
		}

		switch {
		case st.Message != nil:
			h.MessageChanged(*st.Message)
		case st.Progress != nil:
			h.ProgressValueChanged(*st.Progress)
		case st.Mode != nil:
			h.ProgressModeChanged(st.mode)
		case st.Cancel != nil:
			h.CancelAvailabilityChanged(*st.Cancel)
		case st.Close != nil:
			h.CloseRequested()
		case st.ShutdownPrompt != nil:
			h.ShutdownPrompt()
		case st.Success != nil:
			h.CompletionMessage(*st.Success)
		case st.Fail != nil:
			return errors.Errorf("%s", *st.Fail)
		case st.Sleep != nil:
			timer := time.NewTimer(st.sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-sc.cancelled:
				timer.Stop()
				return sc.stopCancelled(i)
			case <-timer.C:
			}
		}
	}

	log.Printf("Script finished (%d steps)", len(sc.script.Steps))
	return nil
}

func (sc *ScriptController) stopCancelled(step int) error {
	log.Printf("Script cancelled at step %d", step+1)
	if sc.script.CancelMessage != "" {
		sc.handlers.MessageChanged(sc.script.CancelMessage)
	}
	return nil
}
