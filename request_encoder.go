/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"github.com/killercup/tk-http/bufstream"
	"github.com/killercup/tk-http/hdr"
)

// RequestEncoder is the client-side mirror of Encoder: it writes a
// request line instead of a status line, but shares the same header and
// body discipline (spec section 4.2, "Client-side symmetry").
type RequestEncoder struct {
	state *MessageState
	write *bufstream.WriteHalf
}

func newRequestEncoder(write *bufstream.WriteHalf, version Version, close bool) *RequestEncoder {
	return &RequestEncoder{state: NewRequestState(version, close), write: write}
}

// RequestLine writes the request line.
func (e *RequestEncoder) RequestLine(method, target string) {
	e.state.WriteRequestLine(e.write.Buf, method, target)
}

// AddHeader appends an arbitrary header.
func (e *RequestEncoder) AddHeader(name, value string) error {
	return e.state.AddHeader(e.write.Buf, name, value)
}

// AddHeaders writes every header in h; see Encoder.AddHeaders.
func (e *RequestEncoder) AddHeaders(h hdr.Header) error {
	return e.state.AddHeaders(e.write.Buf, h)
}

// AddLength declares Content-Length framing.
func (e *RequestEncoder) AddLength(n uint64) error { return e.state.AddLength(e.write.Buf, n) }

// AddChunked declares Transfer-Encoding: chunked framing.
func (e *RequestEncoder) AddChunked() error { return e.state.AddChunked(e.write.Buf) }

// DoneHeaders closes the header block and reports whether a body is
// expected to follow.
func (e *RequestEncoder) DoneHeaders() (bodyExpected bool, err error) {
	return e.state.DoneHeaders(e.write.Buf)
}

// WriteBody writes body bytes.
func (e *RequestEncoder) WriteBody(data []byte) { e.state.WriteBody(e.write.Buf, data) }

// Write implements io.Writer over WriteBody.
func (e *RequestEncoder) Write(p []byte) (int, error) {
	e.WriteBody(p)
	return len(p), nil
}

// Done finalizes the request and returns an EncoderDone.
func (e *RequestEncoder) Done() EncoderDone {
	e.state.Done(e.write.Buf)
	return EncoderDone{write: e.write}
}
