package setup

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Messages are exchanged as JSON lines: `{"type": ..., "payload": ...}`.
// The bootstrapper process writes notifications to its stdout, we
// write requests to its stdin. The headless UI uses the same envelope
// to report what it displays.

type Payload interface {
	GetType() string
}

type message struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

// Emitter writes one JSON message per line. Safe for concurrent use.
type Emitter struct {
	lock sync.Mutex
	w    io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(p Payload) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	m := &message{
		Type:    p.GetType(),
		Payload: p,
	}

	bs, err := json.Marshal(m)
	if err != nil {
		return errors.WithMessage(err, "marshalling message")
	}

	_, err = fmt.Fprintf(e.w, "%s\n", string(bs))
	return err
}

// Message is a decoded line whose payload hasn't been looked at yet.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseMessage parses a single line. Lines that aren't JSON objects
// return false: bootstrappers are allowed to print other things.
func ParseMessage(line string) (Message, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "{") {
		return Message{}, false
	}

	var msg Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return Message{}, false
	}
	if msg.Type == "" {
		return Message{}, false
	}

	return msg, true
}

// DecodePayload unmarshals the payload into p. An absent payload is
// fine for payloads without fields.
func (m Message) DecodePayload(p Payload) error {
	if len(m.Payload) == 0 || string(m.Payload) == "null" {
		return nil
	}
	err := json.Unmarshal(m.Payload, p)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("decoding %s payload", m.Type))
	}
	return nil
}

func logEmitError(err error) {
	if err != nil {
		log.Printf("Could not send JSON object: %+v", err)
	}
}

//------------------------------- bootstrapper -> view

type Log struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (p Log) GetType() string { return "log" }

//-------------------------------

type StatusMessage struct {
	Message string `json:"message"`
}

func (p StatusMessage) GetType() string { return "message" }

//-------------------------------

type Progress struct {
	Value int `json:"value"`
}

func (p Progress) GetType() string { return "progress" }

//-------------------------------

type ProgressMode struct {
	Mode string `json:"mode"`
}

func (p ProgressMode) GetType() string { return "progress-mode" }

//-------------------------------

type CancelAvailable struct {
	Enabled bool `json:"enabled"`
}

func (p CancelAvailable) GetType() string { return "cancel-available" }

//-------------------------------

type Close struct{}

func (p Close) GetType() string { return "close" }

//-------------------------------

type ShutdownPrompt struct{}

func (p ShutdownPrompt) GetType() string { return "shutdown-prompt" }

//-------------------------------

type Success struct {
	Message string `json:"message"`
}

func (p Success) GetType() string { return "success" }

//------------------------------- view -> bootstrapper

type Cancel struct{}

func (p Cancel) GetType() string { return "cancel" }

//-------------------------------

type ShutdownConfirmed struct{}

func (p ShutdownConfirmed) GetType() string { return "shutdown-confirmed" }

//------------------------------- headless UI reports

type Hidden struct{}

func (p Hidden) GetType() string { return "hidden" }

//-------------------------------

type Closed struct{}

func (p Closed) GetType() string { return "closed" }

//-------------------------------

type Prompted struct {
	Message string `json:"message"`
	Answer  bool   `json:"answer"`
}

func (p Prompted) GetType() string { return "prompted" }

//-------------------------------

type Informed struct {
	Message string `json:"message"`
}

func (p Informed) GetType() string { return "informed" }

//-------------------------------

type Failed struct {
	Message string `json:"message"`
}

func (p Failed) GetType() string { return "failed" }
