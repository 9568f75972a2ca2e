package langerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/weftlang/weft/internal/sourcecode"
)

type Code uint8

const (
	Unknown Code = iota
	ParseError
	AlreadyDefined
	IncompatibleTypes
	NumberOutOfBounds
	InvalidDateTime
	InvalidReferenceTarget
	DefaultPatternNotLast
	IllegalArgument
	NilError
	MultipleDefaultPatterns
	UnknownType
)

var codeNames = [...]string{
	Unknown:                 "UNKNOWN",
	ParseError:              "PARSE_ERROR",
	AlreadyDefined:          "ALREADY_DEFINED",
	IncompatibleTypes:       "INCOMPATIBLE_TYPES",
	NumberOutOfBounds:       "NUMBER_OUT_OF_BOUNDS",
	InvalidDateTime:         "INVALID_DATETIME",
	InvalidReferenceTarget:  "INVALID_REFERENCE_TARGET",
	DefaultPatternNotLast:   "DEFAULT_PATTERN_NOT_LAST",
	IllegalArgument:         "ILLEGAL_ARGUMENT",
	NilError:                "NIL_ERROR",
	MultipleDefaultPatterns: "MULTIPLE_DEFAULT_PATTERNS",
	UnknownType:             "UNKNOWN_TYPE",
}

func (c Code) String() string {
	if int(c) >= len(codeNames) {
		return codeNames[Unknown]
	}
	return codeNames[c]
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Error is the error type of all lowering operations. Src is nil for errors that are not
// attached to a location, for example errors raised by a literal parser called outside of a unit.
type Error struct {
	Code       Code
	Message    string
	Src        *sourcecode.Ref
	Cause      error
	Properties map[string]any
}

func New(code Code, message string, src sourcecode.Ref) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Src:     refPtr(src),
	}
}

func Newf(code Code, src sourcecode.Ref, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), src)
}

// Unlocated creates an error without location, Locate should be called by the caller once a reference is known.
func Unlocated(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns err unchanged if it is already an *Error with the given code (or if code is Unknown), otherwise it
// returns a new error with err as cause.
func Wrap(err error, code Code) *Error {
	if err == nil {
		return nil
	}
	var langErr *Error
	if errors.As(err, &langErr) && (code == Unknown || langErr.Code == code) {
		return langErr
	}
	return &Error{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// WrapAt is like Wrap but also sets the location if the resulting error has none.
func WrapAt(err error, code Code, src sourcecode.Ref) *Error {
	e := Wrap(err, code)
	if e != nil {
		e.Locate(src)
	}
	return e
}

func (e *Error) Error() string {
	if e.Src == nil || e.Src.IsZero() {
		return e.Code.String() + ": " + e.Message
	}
	return e.Src.Location() + ": " + e.Code.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Locate sets the location of the error if it has none, it returns the error.
func (e *Error) Locate(src sourcecode.Ref) *Error {
	if e.Src == nil || e.Src.IsZero() {
		e.Src = refPtr(src)
	}
	return e
}

func (e *Error) Put(key string, value any) *Error {
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}
	e.Properties[key] = value
	return e
}

func (e *Error) Get(key string) (any, bool) {
	v, ok := e.Properties[key]
	return v, ok
}

// Digest returns a human readable multi-line description of the error, with the source line it points to.
func (e *Error) Digest() string {
	w := &strings.Builder{}

	w.WriteString(e.Code.String())
	w.WriteString(": ")
	w.WriteString(e.Message)
	w.WriteByte('\n')

	if e.Src != nil && !e.Src.IsZero() {
		line := e.Src.SourceCodeLine()
		if line != "" {
			w.WriteString("  ")
			w.WriteString(line)
			w.WriteString("\n  ")

			column := int(e.Src.Column())
			lineRunes := []rune(line)
			for i := 1; i < column && i <= len(lineRunes); i++ {
				if lineRunes[i-1] == '\t' {
					w.WriteByte('\t')
				} else {
					w.WriteByte(' ')
				}
			}
			w.WriteString("^\n")
		}
		w.WriteString("  at ")
		w.WriteString(e.Src.Location())
		w.WriteByte('\n')
	}

	if len(e.Properties) > 0 {
		keys := make([]string, 0, len(e.Properties))
		for k := range e.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %v\n", k, e.Properties[k])
		}
	}

	if e.Cause != nil {
		w.WriteString("  caused by: ")
		w.WriteString(e.Cause.Error())
		w.WriteByte('\n')
	}

	return w.String()
}

func (e *Error) MarshalZerologObject(event *zerolog.Event) {
	event.Stringer("code", e.Code).Str("message", e.Message)
	if e.Src != nil && !e.Src.IsZero() {
		event.Str("location", e.Src.Location())
	}
	if len(e.Properties) > 0 {
		event.Fields(e.Properties)
	}
	if e.Cause != nil {
		event.AnErr("cause", e.Cause)
	}
}

// CodeOf returns the code of the first *Error in err's chain, Unknown is returned if there is none.
func CodeOf(err error) Code {
	var langErr *Error
	if errors.As(err, &langErr) {
		return langErr.Code
	}
	return Unknown
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func refPtr(src sourcecode.Ref) *sourcecode.Ref {
	if src.IsZero() {
		return nil
	}
	c := src.Copy()
	return &c
}
