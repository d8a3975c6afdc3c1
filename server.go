package httpd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"runtime/debug"
	"time"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = 1 * time.Second
)

// Server accepts connections and answers one request line on each.
type Server struct {
	Addr    string
	Handler *Handler
	Logger  *log.Logger
}

// NewServer wires a Server, its Handler and a started Reaper for cfg,
// serving from the current directory.
func NewServer(cfg *Config) *Server {
	logger := cfg.NewLogger()
	reaper := NewReaper(logger)
	reaper.Start()
	return &Server{
		Addr: cfg.Address(),
		Handler: &Handler{
			Logger: logger,
			Reaper: reaper,
		},
		Logger: logger,
	}
}

// Listen binds s.Addr.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.Addr, err)
	}
	return ln, nil
}

// ListenAndServe binds s.Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done, handling every connection in its
// own goroutine. Accept errors are logged and do not stop the loop; repeated
// failures are retried with a delay that doubles up to maxAcceptDelay. ln is
// closed when Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		ln.Close()
	}()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else if delay *= 2; delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.logf("accept error: %v; retrying in %v", err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0
		go s.handle(conn)
	}
}

// handle owns conn. A panic is contained to this connection.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if v := recover(); v != nil {
			s.logf("panic serving %s: %v\n%s", conn.RemoteAddr(), v, debug.Stack())
		}
	}()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	line, err := ReadRequestLine(r)
	if err != nil {
		if err != io.EOF {
			s.logf("reading request from %s: %v", conn.RemoteAddr(), err)
		}
		return
	}

	if err := s.Handler.ServeLine(w, line); err != nil {
		s.logf("writing response to %s: %v", conn.RemoteAddr(), err)
		return
	}

	// Let the client close first so it sees a clean shutdown rather than a reset.
	io.Copy(io.Discard, r)
}

func (s *Server) logf(format string, v ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, v...)
	} else {
		log.Printf(format, v...)
	}
}
