package relaylib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/relayq/relayq/pkg/logger"
)

// Default network timeouts for dispatch attempts.
const (
	DEF_HTTP_TIMEOUT = 30 * time.Second
	DEF_DIAL_TIMEOUT = 10 * time.Second
)

// Dispatcher executes due tasks against their targets. Dispatch is
// strictly fire-once: a network failure is reported but the task is
// never re-queued.
type Dispatcher struct {
	l           logger.Logger
	client      *http.Client
	uapool      *UserAgentPool
	dialTimeout time.Duration
}

// NewDispatcher creates a Dispatcher. A nil client gets a default one
// with DEF_HTTP_TIMEOUT.
func NewDispatcher(l logger.Logger, client *http.Client) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: DEF_HTTP_TIMEOUT}
	}
	return &Dispatcher{
		l:           l,
		client:      client,
		uapool:      NewUserAgentPool(),
		dialTimeout: DEF_DIAL_TIMEOUT,
	}
}

// Dispatch performs the single network action for a due task. The store
// lock is never held here: the caller removes the task first and hands
// over ownership.
func (d *Dispatcher) Dispatch(ctx context.Context, t *Task) error {
	switch t.Kind() {
	case KindHTTP:
		return d.sendHTTP(ctx, t)
	case KindSocket:
		return d.sendSocket(ctx, t)
	default:
		return &DispatchError{TaskID: t.ID(), Target: t.Address(), Err: ErrUnknownTargetKind}
	}
}

// sendHTTP issues a GET to the task's link. A payload, if present, is
// carried as a form-encoded body; its optional headers entry is applied
// to the request, with the "auto" sentinel replaced by a random
// User-Agent from the pool.
func (d *Dispatcher) sendHTTP(ctx context.Context, t *Task) error {
	var body io.Reader
	data := t.Data()
	if data != nil {
		body = strings.NewReader(encodeForm(data))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Address(), body)
	if err != nil {
		return &DispatchError{TaskID: t.ID(), Target: t.Address(), Err: err}
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		d.applyHeaders(req, data[HeadersKey])
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return &DispatchError{TaskID: t.ID(), Target: t.Address(), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DispatchError{
			TaskID: t.ID(),
			Target: t.Address(),
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return nil
}

// applyHeaders interprets the payload's headers entry. A map sets each
// header; the "auto" sentinel picks a random User-Agent; any other
// string is used as a literal User-Agent value. Other shapes are
// ignored.
func (d *Dispatcher) applyHeaders(req *http.Request, headers any) {
	switch h := headers.(type) {
	case map[string]any:
		for k, v := range h {
			req.Header.Set(k, formValue(v))
		}
	case string:
		if h == AutoHeadersSentinel {
			req.Header.Set(USER_AGENT_KEY, d.uapool.Pick())
		} else {
			req.Header.Set(USER_AGENT_KEY, h)
		}
	}
}

// sendSocket dials the task's host:port, writes the payload as UTF-8
// JSON text, and closes the connection. No length prefix, no response
// read.
func (d *Dispatcher) sendSocket(ctx context.Context, t *Task) error {
	payload := []byte("{}")
	if data := t.Data(); data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return &DispatchError{TaskID: t.ID(), Target: t.Address(), Err: err}
		}
		payload = b
	}

	dialer := net.Dialer{Timeout: d.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Address())
	if err != nil {
		return &DispatchError{TaskID: t.ID(), Target: t.Address(), Err: err}
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return &DispatchError{TaskID: t.ID(), Target: t.Address(), Err: err}
	}
	return nil
}

// encodeForm renders a payload map as a form-encoded string. Scalar
// values are stringified; nested values are carried as JSON text.
func encodeForm(data map[string]any) string {
	vals := make(url.Values, len(data))
	for k, v := range data {
		vals.Set(k, formValue(v))
	}
	return vals.Encode()
}

func formValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64, bool:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
