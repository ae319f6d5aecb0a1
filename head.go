/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"strings"

	"github.com/killercup/tk-http/hdr"
)

// RequestHead is the borrowed view of a request preamble handed to the
// dispatcher. Every string it holds is sliced out of the connection's
// read buffer; it must not be retained past the HeadersReceived call
// that received it (see Dispatcher).
type RequestHead struct {
	Method          string
	RawTarget       string
	Target          RequestTarget
	Version         Version
	host            string
	hasHost         bool
	conflictingHost bool
	headers         []hdr.RawHeader
	bodyKind        BodyKind
	connectionClose bool
	connection      string
	hasConnection   bool
	expectContinue  bool
}

// Host returns the request's host, preferring the Host header when the
// request-target carried no authority of its own, and the
// request-target's authority when both are present and differ (in
// which case HasConflictingHost reports true).
func (h *RequestHead) Host() (string, bool) { return h.host, h.hasHost }

// HasConflictingHost reports whether the Host header's value differs
// from the authority already present in an absolute-form or
// authority-form request-target.
func (h *RequestHead) HasConflictingHost() bool { return h.conflictingHost }

// ConnectionClose reports whether the connection should be closed after
// this exchange completes: an explicit Connection: close token, any
// HTTP/1.0 request (keep-alive is not honored), or a request carrying
// both Transfer-Encoding: chunked and Content-Length.
func (h *RequestHead) ConnectionClose() bool { return h.connectionClose }

// ConnectionHeader returns the joined value of all Connection headers,
// comma-separated in the order they appeared.
func (h *RequestHead) ConnectionHeader() (string, bool) { return h.connection, h.hasConnection }

// ExpectsContinue reports whether the request carries
// Expect: 100-continue.
func (h *RequestHead) ExpectsContinue() bool { return h.expectContinue }

// BodyKind is the body-framing discriminant computed by the header
// scanner per RFC 7230 section 3.3.3.
func (h *RequestHead) BodyKind() BodyKind { return h.bodyKind }

// HasBody reports whether any body bytes are expected at all.
func (h *RequestHead) HasBody() bool { return h.bodyKind.HasBody() }

// AllHeaders returns every header exactly as parsed, including
// hop-by-hop headers. Most callers want Headers instead.
func (h *RequestHead) AllHeaders() []hdr.RawHeader { return h.headers }

// Headers returns an iterator over the request's headers with
// hop-by-hop headers stripped: Connection (and everything it names),
// Transfer-Encoding, Content-Length, Upgrade, and Host. Duplicate
// headers are not merged or sorted.
func (h *RequestHead) Headers() HeaderIter {
	return HeaderIter{head: h}
}

// HeaderIter walks a RequestHead's non-hop-by-hop headers.
type HeaderIter struct {
	head *RequestHead
	i    int
}

// Next returns the next (name, value) pair, or ok=false when exhausted.
func (it *HeaderIter) Next() (name, value string, ok bool) {
	for it.i < len(it.head.headers) {
		h := it.head.headers[it.i]
		it.i++
		if isHopByHop(h.Name) {
			continue
		}
		if it.head.hasConnection && connectionNames(it.head.connection, h.Name) {
			continue
		}
		return h.Name, h.Value, true
	}
	return "", "", false
}

func isHopByHop(name string) bool {
	switch {
	case strings.EqualFold(name, hdr.Connection),
		strings.EqualFold(name, hdr.TransferEncoding),
		strings.EqualFold(name, hdr.ContentLength),
		strings.EqualFold(name, hdr.UpgradeHeader),
		strings.EqualFold(name, hdr.Host):
		return true
	default:
		return false
	}
}

func connectionNames(connection, name string) bool {
	for _, tok := range strings.Split(connection, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), name) {
			return true
		}
	}
	return false
}
