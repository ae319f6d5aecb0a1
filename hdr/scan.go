/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"bytes"
	"errors"
)

// MinHeaderSlots is the number of header slots scanned on the first,
// stack-sized pass.
const MinHeaderSlots = 16

// MaxHeaderSlots is the hard limit on header count; a preamble needing
// more than this is a parse error.
const MaxHeaderSlots = 1024

// RawHeader is a borrowed (name, value) pair, sliced directly out of the
// caller's preamble buffer. Valid only as long as that buffer is.
type RawHeader struct {
	Name  string
	Value string
}

// ErrIncomplete is returned by ScanPreamble when buf does not yet
// contain a full preamble (no blank line terminator found). The caller
// should read more bytes and retry; it is not a parse error.
var ErrIncomplete = errors.New("hdr: incomplete preamble")

// ErrParse is returned for a malformed request line or header line.
var ErrParse = errors.New("hdr: malformed preamble")

// ScanPreamble parses one HTTP request preamble (request line plus
// headers, up to and including the blank line) out of buf.
//
// headers is the caller-supplied slot array; if the preamble has more
// headers than len(headers), overflow is true and hdrs is nil — the
// caller should retry with a larger slice (see MinHeaderSlots,
// MaxHeaderSlots). This mirrors the two-pass allocation strategy used
// to bound the common case to a small stack array.
func ScanPreamble(buf []byte, headers []RawHeader) (method, rawTarget string, minor int, hdrs []RawHeader, consumed int, overflow bool, err error) {
	end := bytes.Index(buf, DoubleCRLF)
	if end == -1 {
		return "", "", 0, nil, 0, false, ErrIncomplete
	}
	preamble := buf[:end]
	consumed = end + len(DoubleCRLF)

	lineEnd := bytes.Index(preamble, CRLF)
	var requestLine []byte
	var rest []byte
	if lineEnd == -1 {
		requestLine = preamble
		rest = nil
	} else {
		requestLine = preamble[:lineEnd]
		rest = preamble[lineEnd+len(CRLF):]
	}

	method, rawTarget, minor, err = parseRequestLine(requestLine)
	if err != nil {
		return "", "", 0, nil, 0, false, err
	}

	n := 0
	for len(rest) > 0 {
		i := bytes.Index(rest, CRLF)
		var line []byte
		if i == -1 {
			line = rest
			rest = nil
		} else {
			line = rest[:i]
			rest = rest[i+len(CRLF):]
		}
		if len(line) == 0 {
			continue
		}
		if n >= len(headers) {
			return "", "", 0, nil, 0, true, nil
		}
		name, value, ok := parseHeaderLine(line)
		if !ok {
			return "", "", 0, nil, 0, false, ErrParse
		}
		headers[n] = RawHeader{Name: name, Value: value}
		n++
	}
	return method, rawTarget, minor, headers[:n], consumed, false, nil
}

// ScanResponsePreamble parses one HTTP response preamble (status line
// plus headers, up to and including the blank line) out of buf. It is
// ScanPreamble's status-line counterpart, sharing the same two-pass
// header-slot overflow strategy.
func ScanResponsePreamble(buf []byte, headers []RawHeader) (statusCode int, reason string, minor int, hdrs []RawHeader, consumed int, overflow bool, err error) {
	end := bytes.Index(buf, DoubleCRLF)
	if end == -1 {
		return 0, "", 0, nil, 0, false, ErrIncomplete
	}
	preamble := buf[:end]
	consumed = end + len(DoubleCRLF)

	lineEnd := bytes.Index(preamble, CRLF)
	var statusLine []byte
	var rest []byte
	if lineEnd == -1 {
		statusLine = preamble
		rest = nil
	} else {
		statusLine = preamble[:lineEnd]
		rest = preamble[lineEnd+len(CRLF):]
	}

	statusCode, reason, minor, err = parseStatusLine(statusLine)
	if err != nil {
		return 0, "", 0, nil, 0, false, err
	}

	n := 0
	for len(rest) > 0 {
		i := bytes.Index(rest, CRLF)
		var line []byte
		if i == -1 {
			line = rest
			rest = nil
		} else {
			line = rest[:i]
			rest = rest[i+len(CRLF):]
		}
		if len(line) == 0 {
			continue
		}
		if n >= len(headers) {
			return 0, "", 0, nil, 0, true, nil
		}
		name, value, ok := parseHeaderLine(line)
		if !ok {
			return 0, "", 0, nil, 0, false, ErrParse
		}
		headers[n] = RawHeader{Name: name, Value: value}
		n++
	}
	return statusCode, reason, minor, headers[:n], consumed, false, nil
}

func parseStatusLine(line []byte) (statusCode int, reason string, minor int, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 == -1 {
		return 0, "", 0, ErrParse
	}
	proto := line[:sp1]
	rest := line[sp1+1:]
	switch string(proto) {
	case "HTTP/1.1":
		minor = 1
	case "HTTP/1.0":
		minor = 0
	default:
		return 0, "", 0, ErrParse
	}
	sp2 := bytes.IndexByte(rest, ' ')
	var codeBytes []byte
	if sp2 == -1 {
		codeBytes = rest
	} else {
		codeBytes = rest[:sp2]
		reason = string(rest[sp2+1:])
	}
	if len(codeBytes) != 3 {
		return 0, "", 0, ErrParse
	}
	for _, b := range codeBytes {
		if b < '0' || b > '9' {
			return 0, "", 0, ErrParse
		}
		statusCode = statusCode*10 + int(b-'0')
	}
	return statusCode, reason, minor, nil
}

// CRLF and DoubleCRLF are the line and preamble terminators.
var (
	CRLF       = []byte("\r\n")
	DoubleCRLF = []byte("\r\n\r\n")
)

func parseRequestLine(line []byte) (method, target string, minor int, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 == -1 {
		return "", "", 0, ErrParse
	}
	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 == -1 {
		return "", "", 0, ErrParse
	}
	method = string(line[:sp1])
	target = string(rest[:sp2])
	proto := rest[sp2+1:]
	switch string(proto) {
	case "HTTP/1.1":
		minor = 1
	case "HTTP/1.0":
		minor = 0
	default:
		return "", "", 0, ErrParse
	}
	if method == "" || target == "" {
		return "", "", 0, ErrParse
	}
	return method, target, minor, nil
}

func parseHeaderLine(line []byte) (name, value string, ok bool) {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", false
	}
	rawName := line[:colon]
	for _, b := range rawName {
		if !validHeaderFieldByte(b) {
			return "", "", false
		}
	}
	value = string(trim(line[colon+1:]))
	return string(rawName), value, true
}
