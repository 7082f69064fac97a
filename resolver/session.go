package resolver

import (
	"context"
	"errors"
	"sync"
)

// State of a scanner session.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateResolving
	StateSuccess
	StateAlreadyCheckedIn
	StateIncomplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateResolving:
		return "resolving"
	case StateSuccess:
		return "success"
	case StateAlreadyCheckedIn:
		return "already_checked_in"
	case StateIncomplete:
		return "incomplete"
	case StateError:
		return "error"
	}
	return "unknown"
}

func (s State) IsTerminal() bool {
	return s >= StateSuccess
}

var (
	ErrNotScanning = errors.New("session is not scanning")
	ErrBusy        = errors.New("a check-in is already being resolved")
	ErrDiscarded   = errors.New("session was reset while resolving")
)

// Checker is the part of Resolver a session drives.
type Checker interface {
	Resolve(ctx context.Context, raw string) Result
	ResolveManual(ctx context.Context, code string, category Category) Result
}

// Session is the scanner screen: Idle → Scanning → Resolving → terminal.
// It accepts one decode per scan and never runs two resolutions at once.
type Session struct {
	mu          sync.Mutex
	checker     Checker
	state       State
	result      *Result
	generation  uint64
	resolving   bool
	stopCapture func()
}

type SessionOption func(*Session)

// WithCaptureStop registers a callback run when capture must stop: on the
// first decode, on manual entry while scanning, and on reset.
func WithCaptureStop(stop func()) SessionOption {
	return func(s *Session) {
		s.stopCapture = stop
	}
}

func NewSession(checker Checker, opts ...SessionOption) *Session {
	s := &Session{checker: checker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the last terminal result, if any.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// StartScan enters Scanning from Idle or from a terminal state, clearing
// the previous result.
func (s *Session) StartScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateResolving {
		return ErrBusy
	}
	s.generation++
	s.state = StateScanning
	s.result = nil
	return nil
}

// Decode delivers a decoded QR string. Only the first decode of a scan is
// resolved; capture is stopped before resolution begins.
func (s *Session) Decode(ctx context.Context, raw string) (Result, error) {
	s.mu.Lock()
	if s.resolving {
		s.mu.Unlock()
		return Result{}, ErrBusy
	}
	if s.state != StateScanning {
		s.mu.Unlock()
		return Result{}, ErrNotScanning
	}
	gen := s.begin()
	s.mu.Unlock()

	return s.finish(gen, s.checker.Resolve(ctx, raw))
}

// SubmitManual resolves a typed backup code. It is allowed from any state
// except Resolving.
func (s *Session) SubmitManual(ctx context.Context, code string, category Category) (Result, error) {
	s.mu.Lock()
	if s.resolving {
		s.mu.Unlock()
		return Result{}, ErrBusy
	}
	s.generation++
	gen := s.begin()
	s.mu.Unlock()

	return s.finish(gen, s.checker.ResolveManual(ctx, code, category))
}

// Reset returns to Idle from any state. A resolution in flight is allowed
// to finish but its result is discarded, and no new one starts until it has.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateScanning && s.stopCapture != nil {
		s.stopCapture()
	}
	s.generation++
	s.state = StateIdle
	s.result = nil
}

// begin must be called with mu held.
func (s *Session) begin() uint64 {
	if s.state == StateScanning && s.stopCapture != nil {
		s.stopCapture()
	}
	s.state = StateResolving
	s.resolving = true
	s.result = nil
	return s.generation
}

func (s *Session) finish(gen uint64, result Result) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolving = false
	if s.generation != gen {
		return result, ErrDiscarded
	}
	s.state = stateFor(result.Outcome)
	s.result = &result
	return result, nil
}

func stateFor(o Outcome) State {
	switch o {
	case OutcomeSuccess:
		return StateSuccess
	case OutcomeAlreadyCheckedIn:
		return StateAlreadyCheckedIn
	case OutcomeIncomplete:
		return StateIncomplete
	}
	return StateError
}
