/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"context"
	"errors"
	"fmt"
	"io"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/killercup/tk-http/bufstream"
	"github.com/killercup/tk-http/hdr"
)

// maxPreamblePeek bounds how far the reader will grow its peek window
// looking for the blank line that ends a preamble, before giving up —
// distinct from, and much larger than, the chunk-size line limit
// maxLineLength.
const maxPreamblePeek = 1 << 20 // 1 MiB

// exchange is one in-flight request/response unit (spec section 3): the
// application's codec plus the response configuration derived from its
// request head.
type exchange struct {
	codec   Codec
	respCfg ResponseConfig
}

// Conn is the server-side pipeline engine of spec section 4.1: it owns
// one byte stream, reads a FIFO of requests, dispatches each to a
// user-supplied Codec, and writes responses back in enqueue order.
//
// Rather than the single poll()-driven state machine of the originating
// implementation, Conn splits into two goroutines — a reader and a
// writer — communicating through queue, a bounded channel that holds at
// most Config.MaxInFlight exchanges. This is the alternative
// architecture spec section 9 explicitly allows ("split the engine into
// two independent tasks communicating via a bounded single-producer
// channel"); the channel's backpressure when full is this
// implementation's realization of try_enqueue's Backpressure result —
// the reader goroutine simply blocks on the channel send instead of the
// caller receiving an explicit rejection to retry.
type Conn struct {
	cfg   *Config
	raw   bufstream.Conn
	read  *bufstream.ReadHalf
	write *bufstream.WriteHalf
	disp  Dispatcher
	queue chan *exchange
	stop  chan struct{}
	close closeFlag
}

// NewConn wraps raw (already accepted; TLS, if any, already negotiated —
// both are explicitly out of scope per spec section 1) with a server
// pipeline engine that dispatches to disp.
func NewConn(raw bufstream.Conn, disp Dispatcher, opts ...Option) *Conn {
	cfg := newConfig(opts)
	read, write := bufstream.Split(raw, cfg.ReadBufferSize, cfg.WriteBufferSize)
	return &Conn{
		cfg:   cfg,
		raw:   raw,
		read:  read,
		write: write,
		disp:  disp,
		queue: make(chan *exchange, cfg.MaxInFlight),
		stop:  make(chan struct{}),
	}
}

// Serve runs the connection's reader and writer until the stream closes,
// a fatal error occurs, or ctx is canceled. It always closes raw before
// returning. A nil return means a clean shutdown (spec section 3,
// Lifecycle clause (a)); any other return is the fatal error that ended
// the connection.
func (c *Conn) Serve(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- c.readLoop() }()
	go func() { errc <- c.writeLoop() }()

	var first, second error
	select {
	case first = <-errc:
	case <-ctx.Done():
		first = ctx.Err()
	}
	gotSecond := false
	if first == nil {
		// A nil return means readLoop ended cleanly and closed queue, so
		// writeLoop is finishing the responses still queued: let it do so
		// before the stream is closed under it.
		select {
		case second = <-errc:
			gotSecond = true
		case <-ctx.Done():
		}
	}
	c.close.set()
	close(c.stop)   // unblock a reader stuck offering to a full queue
	c.raw.Close()   // unblock whichever goroutine is stuck in a read/write

	// Drain the other goroutine so we don't leak it, then fail every
	// exchange still sitting in queue with Closed (spec section 3:
	// "On termination, all queued codecs are failed with Closed").
	if !gotSecond {
		second = <-errc
	}
	err := c.failQueued(first, second)
	if err != nil {
		c.cfg.logger().Printf("tk-http: connection ended: %v", err)
	}
	return err
}

func (c *Conn) failQueued(errs ...error) error {
	var merr *multierror.Error
	for _, e := range errs {
		if e != nil && !errors.Is(e, io.EOF) {
			merr = multierror.Append(merr, e)
		}
	}
	// readLoop, the sole sender, has already closed c.queue by the time
	// both goroutines have returned; ranging over it drains whatever
	// writeLoop never got to.
	for exch := range c.queue {
		if ab, ok := exch.codec.(Abortable); ok {
			ab.Abort(ErrClosed)
			continue
		}
		_, _ = exch.codec.DataReceived(nil)
	}
	if merr != nil {
		return merr.ErrorOrNil()
	}
	return nil
}

// readLoop parses requests off the stream until EOF, a fatal parse
// error, or the connection is told to close after the current exchange.
// It is the queue's only sender, so it closes the channel on every
// return path — the standard single-producer shutdown signal that lets
// writeLoop's range over c.queue terminate instead of blocking forever.
func (c *Conn) readLoop() error {
	defer close(c.queue)
	for {
		head, rejectStatus, err := c.scanNextHead()
		if err == io.EOF {
			return nil // clean shutdown: EOF with nothing in flight
		}
		if err != nil {
			return err
		}

		var codec Codec
		respCfg := ResponseConfig{Version: HTTP11, DoClose: true}
		if head != nil {
			respCfg = ResponseConfigFor(head)
		}

		if rejectStatus != 0 {
			codec = &rejectCodec{status: rejectStatus}
			respCfg.DoClose = true
		} else {
			var derr error
			codec, derr = c.disp.HeadersReceived(head)
			if derr != nil {
				codec = &rejectCodec{status: StatusInternalServerError}
				respCfg.DoClose = true
			}
		}

		// Drain the request body fully before handing the exchange to
		// the writer: queue is buffered, so if we sent first, writeLoop
		// could call StartResponse concurrently with this goroutine
		// still calling DataReceived on the very same codec — two
		// goroutines driving one Codec with no synchronization, and a
		// response built from an incomplete body. Spec section 5 rules
		// this out ("no intra-connection parallelism"); draining here,
		// before send, is what actually enforces it.
		switch {
		case rejectStatus != 0 || respCfg.DoClose && head == nil:
			// Nothing to drain: CONNECT's body is never read, and a
			// scanner-level reject has no reliably-framed body either.
		case head.BodyKind().IsUnsupported():
		case head.HasBody():
			if derr := drainBody(c.read, head.BodyKind(), codec); derr != nil {
				return derr
			}
		default:
			if _, derr := codec.DataReceived(nil); derr != nil {
				return derr
			}
		}

		if !c.send(&exchange{codec: codec, respCfg: respCfg}) {
			return nil
		}

		if rejectStatus != 0 || (head != nil && head.ConnectionClose()) {
			c.close.set()
			return nil
		}
	}
}

// send pushes exch onto the queue, blocking if it is at Config.MaxInFlight
// (this is the engine's backpressure). Returns false if the connection
// was torn down from under it first.
func (c *Conn) send(exch *exchange) bool {
	select {
	case c.queue <- exch:
		return true
	case <-c.stop:
		return false
	}
}

// scanNextHead peeks increasingly large windows of the read buffer until
// a full preamble is found. It returns (head, 0, nil) on success,
// (head-or-nil, status, nil) when the request should be rejected with a
// fixed status without ever reaching the dispatcher (CONNECT, or a
// scanner fault surfaced as 400 per spec section 7), and
// (nil, 0, io.EOF) on a clean, nothing-in-flight shutdown.
func (c *Conn) scanNextHead() (head *RequestHead, rejectStatus int, err error) {
	need := 1
	for {
		b, peekErr := c.read.Peek(need)
		if len(b) == 0 && peekErr == io.EOF {
			return nil, 0, io.EOF
		}
		if peekErr == nil {
			// Peek blocks until need bytes are buffered; scan everything
			// that has arrived so far, not just those.
			b, _ = c.read.Peek(c.read.Buf.Buffered())
		}

		headers := make([]hdr.RawHeader, c.cfg.HeaderSlots)
		h, consumed, overflow, scanErr := ScanHead(b, headers)
		if overflow {
			headers = make([]hdr.RawHeader, c.cfg.MaxHeaderSlots)
			h, consumed, overflow, scanErr = ScanHead(b, headers)
			if overflow {
				return nil, 0, newErr(TooManyHeaders, fmt.Sprintf("exceeds %d", c.cfg.MaxHeaderSlots))
			}
		}
		if scanErr != nil {
			return nil, StatusBadRequest, nil
		}
		if h != nil {
			c.read.Consume(consumed)
			if h.Method == CONNECT {
				return h, StatusNotImplemented, nil
			}
			return h, 0, nil
		}

		// Incomplete: need more bytes.
		if peekErr != nil {
			if errors.Is(peekErr, io.EOF) {
				return nil, 0, wrapErr(Closed, "peer closed mid-preamble", io.ErrUnexpectedEOF)
			}
			return nil, 0, wrapErr(IOErr, "reading preamble", peekErr)
		}
		need = len(b) + 1
		if need > maxPreamblePeek {
			return nil, 0, newErr(ParseError, "preamble exceeds maximum size")
		}
	}
}

// writeLoop pulls exchanges off the queue in FIFO order and drives each
// one's response to completion, preserving strict response ordering
// (spec section 4.1, "Ordering guarantees").
func (c *Conn) writeLoop() error {
	for exch := range c.queue {
		enc := newEncoder(c.write, exch.respCfg)
		_, err := exch.codec.StartResponse(enc)
		if err != nil {
			return wrapErr(CustomEncoder, "codec response failed", err)
		}
		if err := c.write.Flush(); err != nil {
			return wrapErr(IOErr, "flushing response", err)
		}
		if exch.respCfg.DoClose {
			c.close.set()
		}
	}
	return nil
}

// rejectCodec is the engine's own Codec for responses it must synthesize
// itself rather than hand to the dispatcher: a fixed status, no body,
// Connection: close.
type rejectCodec struct {
	status int
}

func (r *rejectCodec) DataReceived(data []byte) (Progress, error) {
	return FinishedProgress(len(data)), nil
}

func (r *rejectCodec) StartResponse(enc *Encoder) (EncoderDone, error) {
	enc.Status(r.status)
	if _, err := enc.DoneHeaders(); err != nil {
		return EncoderDone{}, err
	}
	return enc.Done(), nil
}
