package localserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// maxCommandLen bounds a command line.
const maxCommandLen = 1024

// commandTimeout bounds reading the command and writing the reply.
const commandTimeout = 10 * time.Second

// Server represents the control socket server.
type Server struct {
	listener net.Listener
	path     string
	handler  *Handler
	logger   logger.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// New creates a control server on socketPath.
func New(socketPath string, handler *Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		path:    socketPath,
		handler: handler,
		logger:  log,
	}
}

// Listen creates the socket. A stale socket left by a crashed gateway is
// replaced; a live one is an error.
func (s *Server) Listen() error {
	if conn, err := net.DialTimeout("unix", s.path, time.Second); err == nil {
		conn.Close()
		return fmt.Errorf("control socket %s is in use by another gateway", s.path)
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale control socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("restrict control socket: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until Shutdown. Listen must be called first.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("localserver: Serve called before Listen")
	}

	s.running.Store(true)
	s.logger.Debug("control socket listening", "path", s.path)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown stops accepting connections, waits for active ones and removes
// the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	var closeErr error
	if ln != nil {
		closeErr = ln.Close()
		os.Remove(s.path)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if errors.Is(closeErr, net.ErrClosed) {
			return nil
		}
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(commandTimeout))

	line, err := bufio.NewReader(&limitedConn{conn: conn, left: maxCommandLen}).ReadString('\n')
	if err != nil && line == "" {
		return
	}

	fields := strings.Fields(line)
	cmd, args := "", []string(nil)
	if len(fields) > 0 {
		cmd, args = fields[0], fields[1:]
	}

	s.logger.Debug("control command", "command", cmd)
	if err := s.handler.Execute(conn, cmd, args); err != nil {
		s.logger.Warn("control command failed", "command", cmd, "error", err)
	}
}

// limitedConn reads at most left bytes from conn.
type limitedConn struct {
	conn net.Conn
	left int
}

func (l *limitedConn) Read(p []byte) (int, error) {
	if l.left <= 0 {
		return 0, errors.New("command too long")
	}
	if len(p) > l.left {
		p = p[:l.left]
	}
	n, err := l.conn.Read(p)
	l.left -= n
	return n, err
}
