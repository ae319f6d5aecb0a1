/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import "fmt"

// Kind classifies an Error so callers can branch on it with errors.Is
// without string-matching messages.
type Kind int

const (
	// ParseError is a malformed HTTP preamble (bad request line or
	// header line).
	ParseError Kind = iota
	// TooManyHeaders is a preamble with more headers than the
	// configured hard limit (default 1024).
	TooManyHeaders
	// BadRequestTarget is a request-target that is none of origin,
	// absolute, authority, or asterisk form.
	BadRequestTarget
	// DuplicateContentLength is a preamble with more than one
	// Content-Length header.
	DuplicateContentLength
	// ContentLengthInvalid is a Content-Length header that isn't a
	// valid unsigned 64-bit integer.
	ContentLengthInvalid
	// DuplicateHost is a preamble with more than one Host header.
	DuplicateHost
	// HostInvalid is a Host header that isn't valid utf-8.
	HostInvalid
	// ConnectionInvalid is a Connection header that isn't valid utf-8.
	ConnectionInvalid
	// Closed is returned when the peer closed the connection while an
	// exchange was still in flight.
	Closed
	// IOErr wraps a stream-layer read or write failure; always fatal to
	// the connection.
	IOErr
	// CustomEncoder wraps an error returned by the user-supplied codec's
	// response future; always fatal to the connection.
	CustomEncoder
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case TooManyHeaders:
		return "TooManyHeaders"
	case BadRequestTarget:
		return "BadRequestTarget"
	case DuplicateContentLength:
		return "DuplicateContentLength"
	case ContentLengthInvalid:
		return "ContentLengthInvalid"
	case DuplicateHost:
		return "DuplicateHost"
	case HostInvalid:
		return "HostInvalid"
	case ConnectionInvalid:
		return "ConnectionInvalid"
	case Closed:
		return "Closed"
	case IOErr:
		return "Io"
	case CustomEncoder:
		return "CustomEncoder"
	default:
		return "Unknown"
	}
}

// Error is the single error type surfaced across the pipeline engine,
// header scanner, and serializer. It carries a Kind for programmatic
// branching and wraps an underlying cause where one exists (an I/O
// error, or the user's codec error).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, target) report true when target is any *Error
// with the same Kind (ErrClosed, for example), whatever its Msg or Err.
// A bare Kind value is not an error and cannot be used as the target.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func wrapErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// ErrClosed is the sentinel delivered to every codec still queued when a
// connection drains (§3 Lifecycle, §5 Cancellation).
var ErrClosed = &Error{Kind: Closed, Msg: "connection closed with exchange in flight"}
