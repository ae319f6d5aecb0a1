/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"net"

	"github.com/killercup/tk-http/bufstream"
	"github.com/killercup/tk-http/hdr"
)

// ResponseConfig carries everything the serializer needs to start a
// response in a manner consistent with the request it answers: whether
// it's a HEAD request (body always suppressed), whether the connection
// must close after this exchange, and the protocol version to echo.
type ResponseConfig struct {
	IsHead  bool
	DoClose bool
	Version Version
}

// ResponseConfigFor derives a ResponseConfig from a received request
// head — the values an Encoder needs are exactly the ones already
// computed by the header scanner.
func ResponseConfigFor(req *RequestHead) ResponseConfig {
	return ResponseConfig{
		IsHead:  req.Method == HEAD,
		DoClose: req.ConnectionClose(),
		Version: req.Version,
	}
}

// Encoder is the response writer handed to a Codec when it is its turn
// to write. Every method enforces the Message-state invariants of
// section 4.2; preconditions violations panic, since they are logic
// errors in the codec's own state machine.
type Encoder struct {
	state *MessageState
	write *bufstream.WriteHalf
}

func newEncoder(write *bufstream.WriteHalf, cfg ResponseConfig) *Encoder {
	return &Encoder{state: NewResponseState(cfg), write: write}
}

// WriteContinue writes a 100 (Continue) interim response.
func (e *Encoder) WriteContinue() { e.state.WriteContinue(e.write.Buf) }

// Status writes the status line for code, using StatusText(code) as the
// reason phrase.
func (e *Encoder) Status(code int) { e.state.WriteStatus(e.write.Buf, code, "") }

// CustomStatus writes a status line with an explicit reason phrase.
func (e *Encoder) CustomStatus(code int, reason string) {
	e.state.WriteStatus(e.write.Buf, code, reason)
}

// AddHeader appends an arbitrary header.
func (e *Encoder) AddHeader(name, value string) error {
	return e.state.AddHeader(e.write.Buf, name, value)
}

// AddHeaders writes every header in h, for callers who'd rather
// accumulate headers into an hdr.Header before writing than call
// AddHeader repeatedly. Framing headers (Content-Length,
// Transfer-Encoding, Connection) are silently skipped — use AddLength,
// AddChunked, and ResponseConfig.DoClose instead.
func (e *Encoder) AddHeaders(h hdr.Header) error {
	return e.state.AddHeaders(e.write.Buf, h)
}

// AddLength declares Content-Length framing.
func (e *Encoder) AddLength(n uint64) error { return e.state.AddLength(e.write.Buf, n) }

// AddChunked declares Transfer-Encoding: chunked framing.
func (e *Encoder) AddChunked() error { return e.state.AddChunked(e.write.Buf) }

// IsStarted reports whether Status has already been called.
func (e *Encoder) IsStarted() bool { return e.state.IsStarted() }

// DoneHeaders closes the header block and reports whether a body is
// expected to follow.
func (e *Encoder) DoneHeaders() (bodyExpected bool, err error) {
	return e.state.DoneHeaders(e.write.Buf)
}

// WriteBody writes body bytes; works for both Fixed and Chunked framing
// (see MessageState.WriteBody).
func (e *Encoder) WriteBody(data []byte) { e.state.WriteBody(e.write.Buf, data) }

// IsComplete reports whether Done has already completed successfully.
func (e *Encoder) IsComplete() bool { return e.state.IsComplete() }

// Write implements io.Writer over WriteBody, so an Encoder can be
// plugged directly into io.Copy and similar helpers.
func (e *Encoder) Write(p []byte) (int, error) {
	e.WriteBody(p)
	return len(p), nil
}

// Done finalizes the message and returns an EncoderDone, a linear token
// that hands the write half back to the engine. Done may be called
// multiple times; only the first has an effect.
func (e *Encoder) Done() EncoderDone {
	e.state.Done(e.write.Buf)
	return EncoderDone{write: e.write}
}

// RawBody returns an io.Writer over the connection's raw write half,
// bypassing Content-Length/chunked bookkeeping entirely, for
// sendfile-style zero-copy writers (spec section 9, "Raw-body escape
// hatch"). Valid only once DoneHeaders has returned. The reader
// goroutine keeps running independently while a RawBody is in use —
// reads and writes are different directions on the same duplex
// connection, so this is safe; it is StealSocket, not RawBody, that
// needs the reader stopped first (see StealSocket).
func (e *Encoder) RawBody() (*RawBody, error) {
	if !e.state.IsAfterHeaders() {
		return nil, newErr(ParseError, "raw_body called before done_headers")
	}
	return &RawBody{write: e.write}, nil
}

// StealSocket hands back the raw net.Conn after flushing all buffered
// bytes, for callers that want to bypass this package's buffering
// entirely. Valid only once DoneHeaders has returned. The engine writes
// nothing more for this exchange; once the Codec returns its
// EncoderDone, the writer goes on to the next queued exchange's
// response on the same connection.
//
// Known limitation: unlike the original's bilock-guarded handoff, this
// does not stop Conn's reader goroutine first, so a caller that also
// wants to read from the stolen socket must coordinate with it
// separately (e.g. by having the Codec signal EncoderDone only after
// it knows no further body bytes are coming).
func (e *Encoder) StealSocket() (net.Conn, error) {
	if !e.state.IsAfterHeaders() {
		return nil, newErr(ParseError, "steal_socket called before done_headers")
	}
	if err := e.write.Flush(); err != nil {
		return nil, wrapErr(IOErr, "steal_socket flush", err)
	}
	conn, ok := e.write.Raw.(net.Conn)
	if !ok {
		return nil, newErr(ParseError, "steal_socket: underlying stream is not a net.Conn")
	}
	return conn, nil
}

// RawBody is a zero-copy writer over a connection's write half, handed
// out by Encoder.RawBody once headers are written.
type RawBody struct {
	write *bufstream.WriteHalf
}

func (r *RawBody) Write(p []byte) (int, error) { return r.write.Buf.Write(p) }
func (r *RawBody) Flush() error                { return r.write.Flush() }

// Done converts the RawBody back into an EncoderDone, returning the
// write half to the engine.
func (r *RawBody) Done() EncoderDone { return EncoderDone{write: r.write} }

// EncoderDone is a linear token: its existence proves the message was
// finalized and the write half may be returned to the engine's Idle
// state. It carries no exported surface since there's nothing left to
// do with it but hand it back.
type EncoderDone struct {
	write *bufstream.WriteHalf
}
