/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"bufio"
	"fmt"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/killercup/tk-http/hdr"
)

// stateTag is the Message-state FSM's position, per spec section 3:
// Start -> StatusWritten -> BodyInProgress -> Done. stateHeadersWritten
// is declared but never entered: DoneHeaders moves straight from
// StatusWritten to BodyInProgress or Done.
type stateTag int

const (
	stateStart stateTag = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyInProgress
	stateDone
)

// bodyFraming is the outgoing-message body discriminant: whether a body
// is suppressed regardless of headers (head requests and the
// suppressesBody status classes), undetermined (no add_length/add_chunked
// call yet), or one of the two concrete framings.
type bodyFraming int

const (
	framingUndetermined bodyFraming = iota
	framingSuppressed
	framingFixed
	framingChunked
)

// MessageState enforces the HTTP-grammar invariants of section 3 on an
// outgoing message: Content-Length and Transfer-Encoding: chunked are
// mutually exclusive, no header may follow done_headers, and body bytes
// written must match the declared framing exactly. Every method panics
// on a precondition violation — these are logic errors in the caller's
// own state machine, not values to recover from (spec section 4.2).
type MessageState struct {
	state    stateTag
	version  Version
	close    bool
	isHead   bool
	framing  bodyFraming
	fixedLen uint64
	written  uint64
}

// NewResponseState starts a server-side MessageState for a response to
// a request with the given ResponseConfig.
func NewResponseState(cfg ResponseConfig) *MessageState {
	framing := framingUndetermined
	if cfg.IsHead {
		framing = framingSuppressed
	}
	return &MessageState{
		version: cfg.Version,
		close:   cfg.DoClose || cfg.Version == HTTP10,
		isHead:  cfg.IsHead,
		framing: framing,
	}
}

// NewRequestState starts a client-side MessageState for an outgoing
// request.
func NewRequestState(version Version, close bool) *MessageState {
	return &MessageState{version: version, close: close}
}

// IsStarted reports whether at least the status/request line has been
// written.
func (m *MessageState) IsStarted() bool { return m.state != stateStart }

// IsComplete reports whether done() has already been called successfully.
func (m *MessageState) IsComplete() bool { return m.state == stateDone }

// IsAfterHeaders reports whether done_headers has already run — the
// precondition for the raw-body escape hatch (section 9).
func (m *MessageState) IsAfterHeaders() bool {
	return m.state == stateBodyInProgress || m.state == stateDone
}

// WriteContinue writes a 100 (Continue) interim response. Allowed only
// in Start; does not advance the state.
func (m *MessageState) WriteContinue(w *bufio.Writer) {
	if m.state != stateStart {
		panic("http: response_continue called after response already started")
	}
	w.WriteString(HTTP1_1 + " 100 Continue\r\n\r\n")
}

// WriteStatus writes the status line and advances Start -> StatusWritten.
func (m *MessageState) WriteStatus(w *bufio.Writer, code int, reason string) {
	if m.state != stateStart {
		panic("http: status written twice")
	}
	if code == StatusContinue {
		panic("http: 100 is not allowed as a final status code")
	}
	if reason == "" {
		reason = StatusText(code)
	}
	fmt.Fprintf(w, "%s %d %s\r\n", m.version, code, reason)
	if code == StatusNoContent || code == StatusNotModified || (code >= 100 && code < 200) {
		m.framing = framingSuppressed
	}
	m.state = stateStatusWritten
}

// WriteRequestLine writes the request line and advances
// Start -> StatusWritten (the client-side mirror of WriteStatus).
func (m *MessageState) WriteRequestLine(w *bufio.Writer, method, target string) {
	if m.state != stateStart {
		panic("http: request line written twice")
	}
	fmt.Fprintf(w, "%s %s %s\r\n", method, target, m.version)
	m.state = stateStatusWritten
}

// AddHeader appends an arbitrary header. Content-Length,
// Transfer-Encoding, and Connection must go through AddLength,
// AddChunked, and the close flag respectively — callers attempting to
// set them here get a HeaderError instead of corrupting framing.
func (m *MessageState) AddHeader(w *bufio.Writer, name, value string) error {
	if m.state != stateStatusWritten {
		panic("http: add_header called outside StatusWritten")
	}
	switch {
	case eqFold(name, hdr.ContentLength):
		return &HeaderError{Name: name, Reason: "use AddLength instead"}
	case eqFold(name, hdr.TransferEncoding):
		return &HeaderError{Name: name, Reason: "use AddChunked instead"}
	case eqFold(name, hdr.Connection):
		return &HeaderError{Name: name, Reason: "connection framing is managed by MessageState"}
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return &HeaderError{Name: name, Reason: "not a valid header field name"}
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return &HeaderError{Name: name, Reason: "not a valid header field value"}
	}
	writeHeaderLine(w, name, value)
	return nil
}

// excludedFramingHeaders is never mutated; AddHeaders uses it as the
// exclude set passed to hdr.Header.WriteSubset so accumulated headers
// can't smuggle in framing that bypasses AddLength/AddChunked.
var excludedFramingHeaders = map[string]bool{
	hdr.ContentLength:    true,
	hdr.TransferEncoding: true,
	hdr.Connection:       true,
}

// AddHeaders writes every header in h in one call, for callers who
// accumulate headers into an hdr.Header rather than calling AddHeader
// per pair. Headers are written in hdr.Header.WriteSubset's sorted
// order; framing headers are excluded (see excludedFramingHeaders).
func (m *MessageState) AddHeaders(w *bufio.Writer, h hdr.Header) error {
	if m.state != stateStatusWritten {
		panic("http: add_headers called outside StatusWritten")
	}
	return h.WriteSubset(w, excludedFramingHeaders)
}

// AddLength declares a Content-Length framing of n bytes and writes the
// header immediately. If chunked or another length was already set it
// writes nothing and returns a HeaderError; it does not panic in that
// case.
func (m *MessageState) AddLength(w *bufio.Writer, n uint64) error {
	if m.state != stateStatusWritten {
		panic("http: add_length called outside StatusWritten")
	}
	if m.framing == framingFixed || m.framing == framingChunked {
		return &HeaderError{Name: hdr.ContentLength, Reason: "body framing already set"}
	}
	if m.framing == framingSuppressed {
		// HEAD / 1xx / 204 / 304: still legal to declare a length
		// (the client needs it even though no bytes are sent), but
		// we don't switch framing away from Suppressed.
		writeHeaderLine(w, hdr.ContentLength, strconv.FormatUint(n, 10))
		m.fixedLen = n
		return nil
	}
	m.framing = framingFixed
	m.fixedLen = n
	writeHeaderLine(w, hdr.ContentLength, strconv.FormatUint(n, 10))
	return nil
}

// AddChunked declares Transfer-Encoding: chunked framing and writes the
// header immediately. If a length or chunked was already set it writes
// nothing and returns a HeaderError; it does not panic in that case.
func (m *MessageState) AddChunked(w *bufio.Writer) error {
	if m.state != stateStatusWritten {
		panic("http: add_chunked called outside StatusWritten")
	}
	if m.framing == framingFixed || m.framing == framingChunked {
		return &HeaderError{Name: hdr.TransferEncoding, Reason: "body framing already set"}
	}
	if m.framing == framingSuppressed {
		writeHeaderLine(w, hdr.TransferEncoding, DoChunked)
		return nil
	}
	m.framing = framingChunked
	writeHeaderLine(w, hdr.TransferEncoding, DoChunked)
	return nil
}

// DoneHeaders closes the header block and returns whether a body is
// expected to follow. Advances StatusWritten -> BodyInProgress, or
// -> Done for a zero-length fixed body; a body-suppressed message
// (HEAD, 1xx, 204, 304) stays in BodyInProgress until Done is called.
func (m *MessageState) DoneHeaders(w *bufio.Writer) (bodyExpected bool, err error) {
	if m.state != stateStatusWritten {
		panic("http: done_headers called outside StatusWritten")
	}
	if m.close {
		writeHeaderLine(w, hdr.Connection, DoClose)
	}
	w.WriteString("\r\n")

	switch m.framing {
	case framingSuppressed:
		// Headers may declare a length (e.g. HEAD mirroring the GET
		// it stands in for), but no body bytes are ever sent: stay in
		// BodyInProgress so WriteBody/Done remain callable and simply
		// discard, rather than forbidding them outright.
		m.state = stateBodyInProgress
		return false, nil
	case framingFixed:
		if m.fixedLen == 0 {
			m.state = stateDone
			return false, nil
		}
		m.state = stateBodyInProgress
		return true, nil
	case framingChunked:
		m.state = stateBodyInProgress
		return true, nil
	default: // framingUndetermined: no length/chunked ever declared
		m.state = stateDone
		return false, nil
	}
}

// WriteBody writes a chunk of body bytes. For Fixed framing it asserts
// the cumulative total never exceeds the declared length; for Chunked
// framing it emits the chunk size line, the bytes, and the trailing
// CRLF (an empty chunk is a no-op, since a zero-size chunk is the
// terminator and must only be emitted once, by Done).
func (m *MessageState) WriteBody(w *bufio.Writer, data []byte) {
	if m.state != stateBodyInProgress {
		panic("http: write_body called outside BodyInProgress")
	}
	switch m.framing {
	case framingSuppressed:
		return // HEAD / 1xx / 204 / 304: body bytes are never sent
	case framingFixed:
		m.written += uint64(len(data))
		if m.written > m.fixedLen {
			panic("http: write_body exceeded declared Content-Length")
		}
		w.Write(data)
	case framingChunked:
		if len(data) == 0 {
			return
		}
		fmt.Fprintf(w, "%x\r\n", len(data))
		w.Write(data)
		w.WriteString("\r\n")
	default:
		panic("http: write_body called with no body framing declared")
	}
}

// Done writes any finalization bytes (the terminating chunk for
// Chunked framing) and advances to Done. For Fixed framing it asserts
// the cumulative body length exactly matches what was declared.
func (m *MessageState) Done(w *bufio.Writer) {
	if m.state == stateDone {
		return // idempotent, per section 4.2's "the method may be called multiple times"
	}
	if m.state != stateBodyInProgress {
		panic("http: done called outside BodyInProgress")
	}
	switch m.framing {
	case framingFixed:
		if m.written != m.fixedLen {
			panic("http: done called with body length mismatch")
		}
	case framingChunked:
		w.WriteString("0\r\n\r\n")
	}
	m.state = stateDone
}

func writeHeaderLine(w *bufio.Writer, name, value string) {
	w.WriteString(name)
	w.WriteString(": ")
	w.WriteString(hdr.TrimString(hdr.HeaderNewlineToSpace.Replace(value)))
	w.WriteString("\r\n")
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// HeaderError is returned by Encoder methods instead of panicking when
// the caller attempts something recoverable, such as using add_header
// for a framing header — see spec section 4.2, "We return Result here
// to make implementing proxies easier."
type HeaderError struct {
	Name   string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("http: header %q: %s", e.Name, e.Reason)
}
