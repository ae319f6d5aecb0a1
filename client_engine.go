/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"context"
	"errors"
	"io"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/killercup/tk-http/bufstream"
)

// clientExchange is one in-flight request/response unit on the client
// side: a RequestCodec that writes the request when its turn comes and
// then consumes the matching response body, in the same order.
type clientExchange struct {
	codec RequestCodec
}

// ClientConn is the client-side mirror of Conn (spec section 4.1,
// "Client-side symmetry"): it owns one byte stream, writes requests in
// the order TryEnqueue was called, and demultiplexes responses back to
// the matching RequestCodec in that same FIFO order.
//
// Unlike the server, a client genuinely needs an explicit submission
// call from user code — nothing on the wire tells it a new request is
// about to exist — so TryEnqueue is the literal try_enqueue operation
// of spec section 4.1, returning ErrBackpressure rather than blocking the
// caller when Config.MaxInFlight requests are already waiting to be
// written. Requests already written and awaiting their response wait in
// a second channel of the same capacity, so up to 2*Config.MaxInFlight+2
// requests (both channels plus the one each loop holds) can be
// unanswered at once.
type ClientConn struct {
	cfg      *Config
	raw      bufstream.Conn
	read     *bufstream.ReadHalf
	write    *bufstream.WriteHalf
	queue    chan *clientExchange
	inflight chan *clientExchange
	stop     chan struct{}
	close    closeFlag
}

// ErrBackpressure is returned by TryEnqueue when Config.MaxInFlight
// requests are already waiting to be written, or once the connection's
// close flag is set.
var ErrBackpressure = newErr(Closed, "client pipeline at capacity")

// NewClientConn wraps raw with a client pipeline engine.
func NewClientConn(raw bufstream.Conn, opts ...Option) *ClientConn {
	cfg := newConfig(opts)
	read, write := bufstream.Split(raw, cfg.ReadBufferSize, cfg.WriteBufferSize)
	return &ClientConn{
		cfg:      cfg,
		raw:      raw,
		read:     read,
		write:    write,
		queue:    make(chan *clientExchange, cfg.MaxInFlight),
		inflight: make(chan *clientExchange, cfg.MaxInFlight),
		stop:     make(chan struct{}),
	}
}

// TryEnqueue submits codec as the next request to write. It returns
// ErrBackpressure immediately, without blocking, if Config.MaxInFlight
// requests are already waiting to be written or Close has been called —
// the caller decides whether to retry, unlike the server side's
// blocking send.
func (c *ClientConn) TryEnqueue(codec RequestCodec) error {
	if c.close.isSet() {
		return ErrBackpressure
	}
	select {
	case c.queue <- &clientExchange{codec: codec}:
		return nil
	default:
		return ErrBackpressure
	}
}

// Serve runs the connection's writer and reader until the stream
// closes, a fatal error occurs, ctx is canceled, or Close is called.
// It always closes raw before returning.
func (c *ClientConn) Serve(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- c.writeLoop() }()
	go func() { errc <- c.readLoop() }()

	var first error
	select {
	case first = <-errc:
	case <-ctx.Done():
		first = ctx.Err()
	}
	c.close.set()
	close(c.stop)
	c.raw.Close()

	second := <-errc
	err := c.failQueued(first, second)
	if err != nil {
		c.cfg.logger().Printf("tk-http: client connection ended: %v", err)
	}
	return err
}

// Close tells Serve to stop accepting new work and tear the connection
// down once the exchanges already queued have drained.
func (c *ClientConn) Close() { c.close.set() }

func (c *ClientConn) failQueued(errs ...error) error {
	var merr *multierror.Error
	for _, e := range errs {
		if e != nil && !errors.Is(e, io.EOF) {
			merr = multierror.Append(merr, e)
		}
	}
	close(c.queue)
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

// writeLoop pulls codecs off the queue in FIFO order and writes each
// one's request, handing each exchange to inflight so readLoop can match
// responses back up in that same order.
//
// It receives from c.queue via select rather than a plain range:
// TryEnqueue's callers are arbitrary external goroutines, so nothing
// else ever closes c.queue during normal operation, and a bare range
// would block forever waiting for the next enqueue even after shutdown
// has been signaled on c.stop.
func (c *ClientConn) writeLoop() error {
	for {
		var exch *clientExchange
		select {
		case exch = <-c.queue:
		case <-c.stop:
			close(c.inflight)
			return nil
		}
		enc := newRequestEncoder(c.write, HTTP11, false)
		if _, err := exch.codec.StartWrite(enc); err != nil {
			return wrapErr(CustomEncoder, "codec request failed", err)
		}
		if err := c.write.Flush(); err != nil {
			return wrapErr(IOErr, "flushing request", err)
		}
		select {
		case c.inflight <- exch:
		case <-c.stop:
			close(c.inflight)
			return nil
		}
		if c.close.isSet() {
			close(c.inflight)
			return nil
		}
	}
}

// readLoop scans each response in the order requests were written
// (strict FIFO, spec section 4.1's "Ordering guarantees" applied in
// reverse) and feeds it to the matching codec.
func (c *ClientConn) readLoop() error {
	for exch := range c.inflight {
		head, consumed, overflow, err := c.scanNextResponse()
		if err != nil {
			return err
		}
		if overflow {
			return newErr(TooManyHeaders, "response exceeds max header slots")
		}
		c.read.Consume(consumed)

		if head.HasBody() {
			if derr := drainBody(c.read, head.BodyKind(), exch.codec); derr != nil {
				return derr
			}
		} else if _, derr := exch.codec.DataReceived(nil); derr != nil {
			return derr
		}
		if head.ConnectionClose() {
			c.close.set()
			return nil
		}
	}
	return nil
}

// scanNextResponse peeks increasingly large windows of the read buffer
// for a full status-line-and-headers preamble, mirroring
// Conn.scanNextHead but parsing a status line instead of a request line.
func (c *ClientConn) scanNextResponse() (head *ResponseHead, consumed int, overflow bool, err error) {
	need := 1
	for {
		b, peekErr := c.read.Peek(need)
		if len(b) == 0 && peekErr == io.EOF {
			return nil, 0, false, io.EOF
		}
		if peekErr == nil {
			// Peek blocks until need bytes are buffered; scan everything
			// that has arrived so far, not just those.
			b, _ = c.read.Peek(c.read.Buf.Buffered())
		}

		h, n, of, scanErr := ScanResponseHead(b, c.cfg.HeaderSlots)
		if of {
			h, n, of, scanErr = ScanResponseHead(b, c.cfg.MaxHeaderSlots)
			if of {
				return nil, 0, true, nil
			}
		}
		if scanErr != nil {
			return nil, 0, false, scanErr
		}
		if h != nil {
			return h, n, false, nil
		}
		if peekErr != nil {
			if errors.Is(peekErr, io.EOF) {
				return nil, 0, false, wrapErr(Closed, "peer closed mid-response", io.ErrUnexpectedEOF)
			}
			return nil, 0, false, wrapErr(IOErr, "reading response preamble", peekErr)
		}
		need = len(b) + 1
		if need > maxPreamblePeek {
			return nil, 0, false, newErr(ParseError, "response preamble exceeds maximum size")
		}
	}
}
