/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"strconv"
	"strings"

	"github.com/killercup/tk-http/hdr"
)

// ResponseHead is the borrowed view of a response preamble parsed on the
// client side. ClientConn's reader uses it for body framing and
// Connection: close and does not pass it to the RequestCodec, which sees
// only the body through DataReceived. Every string it holds is sliced
// out of the connection's read buffer; it must not be retained past the
// exchange that received it.
type ResponseHead struct {
	StatusCode      int
	Reason          string
	Version         Version
	headers         []hdr.RawHeader
	bodyKind        BodyKind
	connectionClose bool
}

// Headers returns every header exactly as parsed, including hop-by-hop
// headers; a response's Connection/Transfer-Encoding/Content-Length are
// rarely interesting to a client beyond what BodyKind already reports.
func (h *ResponseHead) Headers() []hdr.RawHeader { return h.headers }

// BodyKind is the body-framing discriminant computed by the header
// scanner per RFC 7230 section 3.3.3, applied to a response: a 1xx/204/304
// status is body-suppressed (modeled here as Fixed(0)). A client-side
// ResponseHead carries no record of whether the originating request was
// HEAD, so a response to a HEAD request gets whatever framing its own
// headers declare.
func (h *ResponseHead) BodyKind() BodyKind { return h.bodyKind }

// HasBody reports whether any body bytes are expected at all.
func (h *ResponseHead) HasBody() bool { return h.bodyKind.HasBody() }

// ConnectionClose reports whether the connection should be closed after
// this exchange completes.
func (h *ResponseHead) ConnectionClose() bool { return h.connectionClose }

// ScanResponseHead parses one response preamble out of the head of buf,
// the status-line counterpart to ScanHead. It returns (nil, 0, false,
// nil) when buf does not yet contain a full preamble.
func ScanResponseHead(buf []byte, headerSlotCount int) (head *ResponseHead, consumed int, overflow bool, err error) {
	headerSlots := make([]hdr.RawHeader, headerSlotCount)
	code, reason, minor, rawHeaders, consumed, overflow, scanErr := hdr.ScanResponsePreamble(buf, headerSlots)
	if scanErr == hdr.ErrIncomplete {
		return nil, 0, false, nil
	}
	if overflow {
		return nil, 0, true, nil
	}
	if scanErr != nil {
		return nil, 0, false, newErr(ParseError, scanErr.Error())
	}

	version := HTTP11
	if minor == 0 {
		version = HTTP10
	}

	head = &ResponseHead{
		StatusCode: code,
		Reason:     reason,
		Version:    version,
		headers:    rawHeaders,
		bodyKind:   Fixed(0),
	}
	if version == HTTP10 {
		head.connectionClose = true
	}
	if suppressesBody(code) {
		return head, consumed, false, nil
	}

	var hasContentLength bool
	var contentLength uint64
	chunked := false

	for _, h := range rawHeaders {
		switch {
		case strings.EqualFold(h.Name, hdr.TransferEncoding):
			if isChunkedEncoding(h.Value) {
				if hasContentLength {
					head.connectionClose = true
				}
				chunked = true
			}
		case strings.EqualFold(h.Name, hdr.ContentLength):
			if hasContentLength {
				return nil, 0, false, newErr(DuplicateContentLength, h.Value)
			}
			hasContentLength = true
			if chunked {
				head.connectionClose = true
				continue
			}
			n, perr := strconv.ParseUint(strings.TrimSpace(h.Value), 10, 64)
			if perr != nil {
				return nil, 0, false, wrapErr(ContentLengthInvalid, h.Value, perr)
			}
			contentLength = n
		case strings.EqualFold(h.Name, hdr.Connection):
			if containsToken(h.Value, DoClose) {
				head.connectionClose = true
			}
		}
	}

	switch {
	case chunked:
		head.bodyKind = ChunkedBody
	case hasContentLength:
		head.bodyKind = Fixed(contentLength)
	default:
		// No Content-Length and no chunked framing on a response with a
		// body-capable status means the body runs until connection close
		// (RFC 7230 section 3.3.3, rule 7).
		head.bodyKind = UntilCloseBody
		head.connectionClose = true
	}

	return head, consumed, false, nil
}
