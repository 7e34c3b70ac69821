// Package relaycli is the client library for a running relayq daemon.
// It submits deferred tasks over the daemon's TCP or WebSocket
// transport and decodes the response. The relayq CLI is a thin wrapper
// around this package.
package relaycli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	cws "github.com/coder/websocket"

	"github.com/relayq/relayq/common"
)

// ErrRejected wraps the daemon-side error message when a submission is
// refused.
var ErrRejected = errors.New("submission rejected")

// Client talks to one relayq daemon.
type Client struct {
	addr string
}

// NewClient creates a client for the daemon's TCP transport at addr
// (host:port).
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Submit sends one submission over TCP: write the JSON payload,
// half-close, read the response.
func (c *Client) Submit(ctx context.Context, sub *common.Submission) (*common.SubmitResult, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encoding submission: %w", err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("writing submission: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err != nil {
			return nil, fmt.Errorf("closing write side: %w", err)
		}
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return decodeResponse(raw)
}

// SubmitWS sends one submission over the daemon's WebSocket transport.
// url is a ws:// or http:// URL of the websocket endpoint.
func (c *Client) SubmitWS(ctx context.Context, url string, sub *common.Submission) (*common.SubmitResult, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encoding submission: %w", err)
	}

	conn, _, err := cws.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	if err := conn.Write(ctx, cws.MessageText, payload); err != nil {
		return nil, fmt.Errorf("writing submission: %w", err)
	}
	_, raw, err := conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return decodeResponse(raw)
}

func decodeResponse(raw []byte) (*common.SubmitResult, error) {
	var resp common.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if !resp.Ok {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}
	return resp.Message, nil
}
