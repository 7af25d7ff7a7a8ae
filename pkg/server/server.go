package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"httpfs/pkg/dispatch"
	"httpfs/pkg/http"
)

// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown or
// Close.
var ErrServerClosed = errors.New("server: closed")

// lingerTimeout bounds how long a closing connection waits for the peer to
// stop sending.
const lingerTimeout = 500 * time.Millisecond

// Dispatcher executes one parsed request.
type Dispatcher interface {
	Dispatch(*http.Request) (*http.Response, error)
}

// Config holds server configuration.
type Config struct {
	Addr       string
	Dispatcher Dispatcher

	// Minimal drops error page bodies and closes the connection without a
	// response when dispatch fails with an unexpected error.
	Minimal bool

	// ReadTimeout bounds reading the whole request. Zero means no limit.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the response. Zero means no limit.
	WriteTimeout time.Duration

	// ClassifyUserAgents adds browser family and version to access logs.
	ClassifyUserAgents bool

	// Logger receives access and error events. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Server represents a file server listening on a TCP address.
type Server struct {
	addr         string
	dispatcher   Dispatcher
	minimal      bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       zerolog.Logger
	agents       *userAgents

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// New creates a new server with the given configuration.
func New(cfg Config) *Server {
	s := &Server{
		addr:         cfg.Addr,
		dispatcher:   cfg.Dispatcher,
		minimal:      cfg.Minimal,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		logger:       zerolog.Nop(),
		conns:        make(map[net.Conn]struct{}),
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	}
	if cfg.ClassifyUserAgents {
		s.agents = &userAgents{}
	}
	return s
}

// Addr returns the bound listener address once serving, otherwise the
// configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ListenAndServe binds the configured address and serves it.
func (s *Server) ListenAndServe() error {
	addr := s.addr
	if addr == "" {
		addr = "localhost:3001"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts incoming connections and handles each on its own goroutine.
// It returns ErrServerClosed once the server is shut down.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			return err
		}
		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}
		go s.handleConn(conn)
	}
}

// Shutdown stops accepting connections and waits for in-flight exchanges to
// finish. If ctx ends first the remaining connections are closed and the
// context's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeListener()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.closeConns()
		<-done
		return ctx.Err()
	}
}

// Close closes the listener and all open connections immediately.
func (s *Server) Close() error {
	err := s.closeListener()
	s.closeConns()
	s.wg.Wait()
	return err
}

func (s *Server) closeListener() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

// handleConn runs one request/response exchange and closes the connection.
func (s *Server) handleConn(conn net.Conn) {
	defer s.untrack(conn)
	defer lingerClose(conn)

	start := time.Now()
	if s.readTimeout > 0 {
		conn.SetReadDeadline(start.Add(s.readTimeout))
	}

	req, err := http.ReadRequest(bufio.NewReader(conn))
	var resp *http.Response
	if err != nil {
		s.logger.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("malformed request")
		resp = dispatch.ErrBadRequest.Response(!s.minimal)
	} else {
		resp = s.respond(req)
	}
	if resp == nil {
		return
	}

	if s.writeTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	n, err := resp.WriteTo(conn)
	if errors.Is(err, http.ErrUnknownStatus) || errors.Is(err, http.ErrNonASCII) {
		s.logger.Error().Err(err).Int("status", resp.StatusCode).Msg("cannot construct response")
		return
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("write failed")
	}
	s.logAccess(conn, req, resp.StatusCode, n, time.Since(start))
}

// respond turns the dispatch outcome into the response to send. A nil
// response means the connection is closed without one.
func (s *Server) respond(req *http.Request) *http.Response {
	resp, err := s.dispatch(req)
	var se *dispatch.StatusError
	switch {
	case err == nil:
		return resp
	case errors.As(err, &se):
		return se.Response(!s.minimal)
	default:
		s.logger.Error().Err(err).
			Str("method", req.Method).
			Str("target", req.Target).
			Msg("unhandled fault")
		if s.minimal {
			return nil
		}
		return dispatch.ErrInternal.Response(true)
	}
}

// dispatch runs the dispatcher, reporting a panic as an error.
func (s *Server) dispatch(req *http.Request) (resp *http.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.dispatcher.Dispatch(req)
}

func (s *Server) logAccess(conn net.Conn, req *http.Request, status int, n int64, elapsed time.Duration) {
	ev := s.logger.Info()
	if !ev.Enabled() {
		return
	}
	ev = ev.Str("remote", conn.RemoteAddr().String()).
		Int("status", status).
		Int64("bytes", n).
		Dur("elapsed", elapsed)
	if req != nil {
		ev = ev.Str("method", req.Method).Str("target", req.Target)
		if s.agents != nil {
			if family, version := s.agents.classify(req.UserAgent()); family != "" {
				ev = ev.Str("ua_family", family).Str("ua_version", version)
			}
		}
	}
	ev.Msg("request")
}

// lingerClose half-closes a TCP connection and discards what the peer is
// still sending, so that unread request bytes do not reset the connection
// before the response reaches the client.
func lingerClose(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err == nil {
			tc.SetReadDeadline(time.Now().Add(lingerTimeout))
			io.Copy(io.Discard, io.LimitReader(tc, 1<<20))
		}
	}
	conn.Close()
}
