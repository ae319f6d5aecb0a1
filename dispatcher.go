/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

// Dispatcher is the user-supplied server-side collaborator (spec section
// 6). HeadersReceived is invoked synchronously from the engine's reader
// goroutine with a borrowed RequestHead; per section 9's "Borrowed Head"
// design note, the callback is synchronous specifically so the Head
// never needs to outlive it — do not retain head or any of its strings
// past this call.
type Dispatcher interface {
	HeadersReceived(head *RequestHead) (Codec, error)
}

// Codec is the user-supplied per-exchange collaborator returned by
// Dispatcher.HeadersReceived. It consumes the request body and, when its
// turn comes, writes the response.
type Codec interface {
	// DataReceived is called as request body bytes arrive. It must
	// report how much of data it consumed and whether the body is now
	// finished.
	DataReceived(data []byte) (Progress, error)
	// StartResponse is called by the engine when it is this codec's
	// turn to write a response — i.e. every earlier exchange has
	// already finished writing. It must drive enc to completion and
	// return the EncoderDone it produced.
	StartResponse(enc *Encoder) (EncoderDone, error)
}

// RequestCodec is the user-supplied client-side mirror of Codec: it
// writes a request when its turn comes, then consumes the response body.
type RequestCodec interface {
	// StartWrite is called by the engine when it is this codec's turn
	// to write a request.
	StartWrite(enc *RequestEncoder) (EncoderDone, error)
	// DataReceived is called as response body bytes arrive.
	DataReceived(data []byte) (Progress, error)
}

// Abortable is an optional interface a Codec or RequestCodec may implement
// to be told, specifically, that its exchange is never going to finish
// normally — the connection is tearing down with this exchange still
// queued (spec section 3, "On termination, all queued codecs are failed
// with Closed"). Abort is called with ErrClosed in place of
// DataReceived(nil) for any queued codec that implements it. A codec
// that doesn't implement Abortable still gets the plain DataReceived(nil)
// it got before; Abortable only adds the ability to tell that apart from
// a clean end-of-body.
type Abortable interface {
	Abort(err error)
}

// Progress is a Codec's report of how a DataReceived call went: either
// it consumed some bytes and wants more (Consumed), or it consumed some
// bytes and the body is now fully read (Finished). In both cases n is
// the number of bytes consumed; the body parser never hands a codec
// bytes past the end of the body, so there are none to report back.
type Progress struct {
	n        int
	finished bool
}

// ConsumedProgress reports that n bytes were consumed and more body data
// is expected.
func ConsumedProgress(n int) Progress { return Progress{n: n} }

// FinishedProgress reports that n bytes were consumed and the body is
// now complete.
func FinishedProgress(n int) Progress { return Progress{n: n, finished: true} }

// N returns how many bytes of the data passed to DataReceived were
// consumed.
func (p Progress) N() int { return p.n }

// Finished reports whether the body is now fully consumed.
func (p Progress) Finished() bool { return p.finished }
