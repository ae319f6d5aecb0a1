/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/killercup/tk-http/hdr"
)

// ScanHead parses one request preamble out of the head of buf and
// computes its body framing, host, and connection-close status per RFC
// 7230 section 3.3.3's precedence algorithm.
//
// It returns (nil, 0, false, nil) when buf does not yet contain a full
// preamble; the caller should read more bytes and retry. headerSlots is
// the caller's pre-allocated RawHeader slice (see hdr.MinHeaderSlots).
// On overflow ScanHead returns no error, only overflow=true; it is the
// caller that retries with hdr.MaxHeaderSlots and reports TooManyHeaders
// if that overflows too (mirroring the two-pass strategy of
// hdr.ScanPreamble).
func ScanHead(buf []byte, headerSlots []hdr.RawHeader) (head *RequestHead, consumed int, overflow bool, err error) {
	method, rawTarget, minor, rawHeaders, consumed, overflow, scanErr := hdr.ScanPreamble(buf, headerSlots)
	if scanErr == hdr.ErrIncomplete {
		return nil, 0, false, nil
	}
	if overflow {
		return nil, 0, true, nil
	}
	if scanErr != nil {
		return nil, 0, false, newErr(ParseError, scanErr.Error())
	}

	target, ok := parseRequestTarget(rawTarget)
	if !ok {
		return nil, 0, false, newErr(BadRequestTarget, rawTarget)
	}

	version := HTTP11
	if minor == 0 {
		version = HTTP10
	}

	head = &RequestHead{
		Method:    method,
		RawTarget: rawTarget,
		Target:    target,
		Version:   version,
		headers:   rawHeaders,
		bodyKind:  Fixed(0),
	}
	if version == HTTP10 {
		head.connectionClose = true
	}

	switch target.form {
	case formAuthority:
		head.host, head.hasHost = scanHost(target.authority), true
	case formAbsolute:
		head.host, head.hasHost = scanHost(target.authority), true
	}

	var hasContentLength, hasHost bool
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
			v := strings.TrimSpace(h.Value)
			if head.hasConnection {
				head.connection += ", " + v
			} else {
				head.connection = v
				head.hasConnection = true
			}
			if containsToken(h.Value, DoClose) {
				head.connectionClose = true
			}
		case strings.EqualFold(h.Name, hdr.Host):
			if hasHost {
				return nil, 0, false, newErr(DuplicateHost, h.Value)
			}
			hasHost = true
			host := scanHost(strings.TrimSpace(h.Value))
			if !head.hasHost {
				head.host, head.hasHost = host, true
			} else if head.host != host {
				head.conflictingHost = true
			}
		case strings.EqualFold(h.Name, hdr.Expect):
			if strings.EqualFold(strings.TrimSpace(h.Value), "100-continue") {
				head.expectContinue = true
			}
		}
	}

	switch {
	case method == CONNECT:
		head.bodyKind = UnsupportedBody
	case chunked:
		head.bodyKind = ChunkedBody
	case hasContentLength:
		head.bodyKind = Fixed(contentLength)
	default:
		head.bodyKind = Fixed(0)
	}

	return head, consumed, false, nil
}

// isChunkedEncoding reports whether the last comma-separated token of a
// Transfer-Encoding value is "chunked", per RFC 7230 section 3.3.1 (only
// the final encoding determines chunked framing).
func isChunkedEncoding(value string) bool {
	toks := strings.Split(value, ",")
	last := strings.TrimSpace(toks[len(toks)-1])
	return strings.EqualFold(last, DoChunked)
}

// containsToken reports whether any comma-separated, trimmed token in
// value case-insensitively equals tok. Used for Connection: close
// detection in both request and response heads.
func containsToken(value, tok string) bool {
	for _, t := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(t), tok) {
			return true
		}
	}
	return false
}

// scanHost normalizes an internationalized Host header value or
// request-target authority to ASCII
// (punycode) form, falling back to the raw value when it isn't a valid
// IDNA label — a malformed label isn't grounds to reject the request at
// this layer; that judgment call belongs to the dispatcher. Plain-ASCII
// values (the common case, including a trailing ":port") are returned
// unchanged: idna.ToASCII operates on bare domain labels, not host:port
// pairs, so it is only worth invoking once non-ASCII bytes are present.
func scanHost(raw string) string {
	if isASCII(raw) {
		return raw
	}
	host, port := raw, ""
	if i := strings.LastIndexByte(raw, ':'); i != -1 && !strings.Contains(raw[i:], "]") {
		host, port = raw[:i], raw[i:]
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return raw
	}
	return ascii + port
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
