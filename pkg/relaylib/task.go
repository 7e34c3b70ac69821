// Package relaylib is the core library of relayq. It contains the task
// entity and its validating factory, the pending-task store, the
// dispatcher that executes due tasks, and the user-agent pool.
package relaylib

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/relayq/relayq/common"
)

// TargetKind tells the dispatcher how to deliver a task.
type TargetKind string

const (
	// KindHTTP delivers via an HTTP GET request.
	KindHTTP TargetKind = "http"
	// KindSocket delivers via a raw TCP write.
	KindSocket TargetKind = "socket"
)

// HeadersKey is the payload entry holding HTTP headers for a dispatch.
const HeadersKey = "headers"

// AutoHeadersSentinel is the one magic value for the headers entry: it
// asks the dispatcher to pick a random User-Agent. Any other string is a
// literal User-Agent value, never another sentinel.
const AutoHeadersSentinel = "auto"

// Task is one validated deferred network call. A Task is immutable after
// construction: the deadline and payload never change, and the store is
// the only component that owns it between submission and dispatch.
type Task struct {
	id       string
	title    string
	kind     TargetKind
	address  string
	deadline time.Time
	data     map[string]any
}

// NewTask validates an untrusted submission and builds a Task whose
// deadline is now plus the requested delay. It has no side effects: the
// caller decides whether the task enters the store.
func NewTask(sub *common.Submission, now time.Time) (*Task, error) {
	if sub == nil {
		return nil, &ValidationError{Field: "submission", Reason: "missing"}
	}
	if sub.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "missing or empty"}
	}
	if sub.Address == nil {
		return nil, &ValidationError{Field: "address", Reason: "missing"}
	}
	kind := TargetKind(sub.Address.Type)
	switch kind {
	case KindHTTP, KindSocket:
	case "":
		return nil, &ValidationError{Field: "address.type", Reason: "missing"}
	default:
		return nil, &ValidationError{Field: "address.type", Reason: "must be http or socket"}
	}
	link := sub.Address.Link
	if link == "" {
		return nil, &ValidationError{Field: "address.link", Reason: "missing"}
	}
	if err := checkLink(kind, link); err != nil {
		return nil, err
	}
	if sub.Settings == nil {
		return nil, &ValidationError{Field: "settings", Reason: "missing"}
	}
	if sub.Settings.Time == nil {
		return nil, &ValidationError{Field: "settings.time", Reason: "missing"}
	}
	delay := *sub.Settings.Time
	if math.IsNaN(delay) || math.IsInf(delay, 0) || delay < 0 {
		return nil, &ValidationError{Field: "settings.time", Reason: "must be a non-negative number of seconds"}
	}

	t := &Task{
		id:       newTaskID(),
		title:    sub.Title,
		kind:     kind,
		address:  link,
		deadline: now.Add(time.Duration(delay * float64(time.Second))),
	}
	if len(sub.Settings.Data) > 0 {
		t.data = make(map[string]any, len(sub.Settings.Data))
		for k, v := range sub.Settings.Data {
			t.data[k] = v
		}
	}
	return t, nil
}

func checkLink(kind TargetKind, link string) error {
	switch kind {
	case KindHTTP:
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			return &ValidationError{Field: "address.link", Reason: "http link must start with http:// or https://"}
		}
	case KindSocket:
		_, portStr, err := net.SplitHostPort(link)
		if err != nil {
			return &ValidationError{Field: "address.link", Reason: "socket link must be host:port"}
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return &ValidationError{Field: "address.link", Reason: "port must be an integer in [0,65535]"}
		}
	}
	return nil
}

// newTaskID returns a short random hex identifier.
func newTaskID() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// Title returns the display label.
func (t *Task) Title() string { return t.title }

// Kind returns the dispatch transport kind.
func (t *Task) Kind() TargetKind { return t.kind }

// Address returns the dispatch target address.
func (t *Task) Address() string { return t.address }

// Deadline returns the absolute instant at or after which the task fires.
func (t *Task) Deadline() time.Time { return t.deadline }

// Data returns the optional request payload. Callers must treat the
// returned map as read-only; nil means no payload.
func (t *Task) Data() map[string]any { return t.data }

// Due reports whether the task's deadline has been reached at now.
func (t *Task) Due(now time.Time) bool {
	return !t.deadline.After(now)
}

// String renders the task for the debug task listing.
func (t *Task) String() string {
	return "task " + t.id + " (" + t.title + ")"
}
