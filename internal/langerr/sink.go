package langerr

import (
	"errors"

	"go.uber.org/multierr"
)

// A Sink decides what happens to an error raised while lowering a construct that supports recovery.
// In fail-fast mode Recover returns false and the caller propagates the error, in recovery mode the
// error is recorded and the caller substitutes a placeholder.
//
// A Sink belongs to a single lowering call and is not safe for concurrent use.
type Sink struct {
	recovery bool
	errors   []*Error
	onRecord func(*Error)
}

func NewFailFastSink() *Sink {
	return &Sink{}
}

func NewRecoverySink() *Sink {
	return &Sink{recovery: true}
}

// OnRecord sets a function called each time an error is recorded.
func (s *Sink) OnRecord(fn func(*Error)) {
	s.onRecord = fn
}

func (s *Sink) IsRecovery() bool {
	return s.recovery
}

// Recover records err and returns true if the sink is in recovery mode, it returns false otherwise.
// Errors that are not *Error are wrapped with the ParseError code.
func (s *Sink) Recover(err error) bool {
	if err == nil {
		return true
	}
	if !s.recovery {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(err, ParseError)
	}
	s.errors = append(s.errors, e)
	if s.onRecord != nil {
		s.onRecord(e)
	}
	return true
}

// Errors returns the recorded errors in the order they were recorded.
func (s *Sink) Errors() []*Error {
	return s.errors
}

func (s *Sink) Len() int {
	return len(s.errors)
}

// Err combines the recorded errors, nil is returned if there are none.
func (s *Sink) Err() error {
	return Combine(s.errors)
}

func Combine(errs []*Error) error {
	var combined error
	for _, err := range errs {
		combined = multierr.Append(combined, err)
	}
	return combined
}
