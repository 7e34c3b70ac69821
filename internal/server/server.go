// Package server holds the transport adapters feeding the relayq
// broker: a plain TCP listener and an optional WebSocket listener. Both
// decode the shared JSON submission payload, pass it to the broker, and
// answer with a JSON response. Framing and decoding live here; the
// scheduling semantics live entirely in the broker.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/relayq/relayq/common"
	"github.com/relayq/relayq/internal/broker"
	"github.com/relayq/relayq/pkg/logger"
	"github.com/relayq/relayq/pkg/relaylib"
)

// Server accepts producer connections over TCP. A producer writes one
// JSON submission, half-closes the write side, and reads one JSON
// response.
type Server struct {
	l        logger.Logger
	b        *broker.Broker
	addr     string
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a Server bound to host:port on Start.
func NewServer(l logger.Logger, b *broker.Broker, host string, port int) *Server {
	return &Server{
		l:    l,
		b:    b,
		addr: fmt.Sprintf("%s:%d", host, port),
	}
}

// Start binds the listener and accepts connections until ctx is
// cancelled, handling each one on its own goroutine. A bind failure is
// the only error that is fatal to the process.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.l.Info("listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			s.l.Error("error accepting: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown closes the listener. In-flight connections finish on their
// own goroutines.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.l.Error("error closing listener: %v", err)
		}
		s.listener = nil
	}
}

// handleConnection reads the submission bytes until the producer
// half-closes, decodes and submits them, and writes the response. Every
// failure is isolated to this one connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	buf, err := io.ReadAll(conn)
	if err != nil {
		s.l.Error("error reading: %v", err)
		return
	}

	resp := s.handleSubmission(buf)
	if _, err := conn.Write(resp); err != nil {
		s.l.Error("error writing response: %v", err)
	}
}

// handleSubmission turns raw submission bytes into a wire response. It
// is shared by the TCP and WebSocket adapters.
func (s *Server) handleSubmission(buf []byte) []byte {
	var sub common.Submission
	if err := json.Unmarshal(buf, &sub); err != nil {
		s.l.Error("%v: %v", relaylib.ErrDecode, err)
		return CreateError(relaylib.ErrDecode.Error())
	}

	task, err := s.b.Submit(&sub)
	if err != nil {
		s.l.Warning("submission rejected: %v", err)
		return InitError(err)
	}

	return MakeResult(&common.SubmitResult{
		ID:       task.ID(),
		Title:    task.Title(),
		Deadline: task.Deadline(),
		Pending:  s.b.PendingCount(),
	})
}
