package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"fastcoding/internal/assist"
	"fastcoding/internal/logging"
	"fastcoding/internal/typing"
)

// maxLineSize bounds one request line; documents travel inline.
const maxLineSize = 16 * 1024 * 1024

// Settings is the persisted settings store.
type Settings interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Server runs one bridge session.
type Server struct {
	assistant *assist.Assistant
	settings  Settings
	detector  *typing.Detector

	in  io.Reader
	out io.Writer

	writeMu sync.Mutex
	wg      sync.WaitGroup

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// NewServer creates a session reading requests from in and writing to out.
func NewServer(assistant *assist.Assistant, settings Settings, detector *typing.Detector, in io.Reader, out io.Writer) *Server {
	if detector == nil {
		detector = typing.NewDetector(0, nil)
	}
	return &Server{
		assistant: assistant,
		settings:  settings,
		detector:  detector,
		in:        in,
		out:       out,
		shutdown:  make(chan struct{}),
	}
}

// Serve dispatches requests until the input ends, a shutdown request
// arrives or ctx is cancelled. In-flight requests finish before it returns.
func (s *Server) Serve(ctx context.Context) error {
	logging.Bridge("Bridge session started")

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case <-s.shutdown:
			break loop
		case err = <-readErr:
			break loop
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.handleLine(ctx, line)
			}()
		}
	}

	s.wg.Wait()
	logging.Bridge("Bridge session ended")
	if err != nil && err != context.Canceled {
		return fmt.Errorf("bridge: %w", err)
	}
	return nil
}

func (s *Server) handleLine(ctx context.Context, line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		logging.BridgeError("Failed to parse request: %v", err)
		s.write(Response{Error: &ResponseError{Message: fmt.Sprintf("invalid request: %v", err)}})
		return
	}

	log := logging.WithRequestID(logging.CategoryBridge, uuid.NewString()).WithField("method", req.Method)
	log.Debug("request received")

	result, err := s.dispatch(ctx, req)
	if err != nil {
		log.Warn("request rejected: %v", err)
		s.write(Response{ID: req.ID, Error: &ResponseError{Message: err.Error()}})
		return
	}
	s.write(Response{ID: req.ID, Result: result})
	log.Debug("request answered")
}

// Notify pushes a panel command to the host.
func (s *Server) Notify(command, text string) {
	s.write(Notification{Method: MethodNotify, Params: NotificationParams{Command: command, Text: text}})
}

func (s *Server) write(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.BridgeError("Failed to marshal message: %v", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		logging.BridgeError("Failed to write message: %v", err)
	}
}

func (s *Server) stop() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}
