// Package dberr defines the error taxonomy shared by coi, tps, and catalog.
package dberr

import (
	"errors"
	"fmt"
)

// Kind classifies the cause of an Error so callers can branch on it without
// string-matching messages.
type Kind string

const (
	NotFound        Kind = "not_found"
	AlreadyExists   Kind = "already_exists"
	InvalidInput    Kind = "invalid_input"
	DataCorruption  Kind = "data_corruption"
	NoSuitableBackup Kind = "no_suitable_backup"
	IOError         Kind = "io_error"
	Internal        Kind = "internal"
)

// Error is the concrete error type returned by dbcore's storage packages.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, dberr.ErrNotFound)-style matching against sentinels
// defined below, since Kind itself does not implement error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons: dberr.Error{Kind: dberr.NotFound} et al.
var (
	ErrNotFound         = &Error{Kind: NotFound, Msg: "not found"}
	ErrAlreadyExists    = &Error{Kind: AlreadyExists, Msg: "already exists"}
	ErrInvalidInput     = &Error{Kind: InvalidInput, Msg: "invalid input"}
	ErrDataCorruption   = &Error{Kind: DataCorruption, Msg: "data corruption"}
	ErrNoSuitableBackup = &Error{Kind: NoSuitableBackup, Msg: "no suitable backup"}
	ErrIO               = &Error{Kind: IOError, Msg: "io error"}
	ErrInternal         = &Error{Kind: Internal, Msg: "internal error"}
)

// New constructs an Error of the given kind with an operation label and message.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap attaches an operation label to an existing error, preserving its kind
// if it is already a *dberr.Error, and otherwise classifying it Internal.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Op: op, Msg: e.Msg, Err: e.Err}
	}
	return &Error{Kind: Internal, Op: op, Err: err}
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// AlreadyExistsf builds an AlreadyExists error with a formatted message.
func AlreadyExistsf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: AlreadyExists, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds an InvalidInput error with a formatted message.
func InvalidInputf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidInput, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is or wraps a NotFound error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == NotFound
}

// IsAlreadyExists reports whether err is or wraps an AlreadyExists error.
func IsAlreadyExists(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == AlreadyExists
}

// IsNoSuitableBackup reports whether err is or wraps a NoSuitableBackup error.
func IsNoSuitableBackup(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == NoSuitableBackup
}
