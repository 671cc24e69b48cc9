// Package comserr defines the stable error taxonomy used across the
// communications driver and endpoint stations: parse errors, type errors,
// read errors and write errors. Each kind is a comparable Code so callers
// can match on it with errors.Is, and each carries an optional wrapped
// cause via E for errors.As / errors.Unwrap.
package comserr

import "errors"

// Code is a stable, comparable error identifier.
type Code string

func (c Code) Error() string { return string(c) }

const (
	Parse Code = "parse_error"
	Type  Code = "type_error"
	Read  Code = "read_error"
	Write Code = "write_error"
)

// E wraps a Code with an operation name and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s += " (" + e.Op + ")"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	} else if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }

// Is lets errors.Is(err, c) match an E by its Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

func newErr(c Code, op, msg string, err error) *E {
	return &E{C: c, Op: op, Msg: msg, Err: err}
}

// ParseError reports that message bytes/string/mapping could not be
// decoded into a Message.
func ParseError(op, msg string, err error) error { return newErr(Parse, op, msg, err) }

// TypeError reports a field with a value of a disallowed kind.
func TypeError(op, msg string, err error) error { return newErr(Type, op, msg, err) }

// ReadError reports a driver-level read failure or timeout.
func ReadError(op, msg string, err error) error { return newErr(Read, op, msg, err) }

// WriteError reports a driver-level write failure.
func WriteError(op, msg string, err error) error { return newErr(Write, op, msg, err) }

// Of extracts the Code carried by err, defaulting to the zero Code ("")
// if err is nil or wasn't produced by this package.
func Of(err error) Code {
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	return ""
}

// Is reports whether err carries the given Code.
func Is(err error, c Code) bool { return Of(err) == c }
