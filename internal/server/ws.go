package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/relayq/relayq/pkg/logger"
)

// WebServer accepts producer submissions over WebSocket. Unlike the TCP
// adapter, one connection may stream any number of submissions; each
// message is answered with its own JSON response.
type WebServer struct {
	l      logger.Logger
	core   *Server
	addr   string
	server *http.Server
	mu     sync.Mutex
}

// NewWebServer creates a WebSocket adapter sharing the given Server's
// submission handling.
func NewWebServer(l logger.Logger, core *Server, host string, port int) *WebServer {
	return &WebServer{
		l:    l,
		core: core,
		addr: fmt.Sprintf("%s:%d", host, port),
	}
}

func (s *WebServer) handleConnection(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var data []byte
		err := websocket.Message.Receive(conn, &data)
		if err != nil {
			if err == io.EOF {
				return
			}
			s.l.Error("error receiving message: %v", err)
			return
		}
		resp := s.core.handleSubmission(data)
		if err := websocket.Message.Send(conn, string(resp)); err != nil {
			s.l.Error("error sending response: %v", err)
			return
		}
	}
}

func (s *WebServer) handler() http.Handler {
	// Producers are programs, not browsers, so the Origin check that
	// websocket.Handler enforces is skipped.
	return websocket.Server{Handler: websocket.Handler(s.handleConnection)}
}

// Start runs the WebSocket listener until Shutdown.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.handler(),
	}
	s.mu.Unlock()

	s.l.Info("websocket listening on %s", s.addr)

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the WebSocket listener.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
