/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import "testing"

func TestScanPreambleParsesRequestLineAndHeaders(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n"
	headers := make([]RawHeader, MinHeaderSlots)
	method, target, minor, hdrs, consumed, overflow, err := ScanPreamble([]byte(raw), headers)
	if err != nil {
		t.Fatalf("ScanPreamble: %v", err)
	}
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if method != "GET" || target != "/index.html" || minor != 1 {
		t.Errorf("got method=%q target=%q minor=%d", method, target, minor)
	}
	if consumed != len(raw) {
		t.Errorf("consumed = %d, want %d", consumed, len(raw))
	}
	if len(hdrs) != 2 || hdrs[0].Name != "Host" || hdrs[0].Value != "example.com" {
		t.Errorf("hdrs = %+v", hdrs)
	}
}

func TestScanPreambleIncomplete(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: example.com\r\n"
	headers := make([]RawHeader, MinHeaderSlots)
	_, _, _, _, _, _, err := ScanPreamble([]byte(raw), headers)
	if err != ErrIncomplete {
		t.Fatalf("ScanPreamble(no terminator) = %v, want ErrIncomplete", err)
	}
}

func TestScanPreambleOverflow(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nA: 1\r\nB: 2\r\nC: 3\r\n\r\n"
	headers := make([]RawHeader, 1)
	_, _, _, _, _, overflow, err := ScanPreamble([]byte(raw), headers)
	if err != nil {
		t.Fatalf("ScanPreamble: %v", err)
	}
	if !overflow {
		t.Fatal("expected overflow with only 1 header slot for 3 headers")
	}
}

func TestScanPreambleMalformedRequestLine(t *testing.T) {
	raw := "GET /\r\n\r\n"
	headers := make([]RawHeader, MinHeaderSlots)
	_, _, _, _, _, _, err := ScanPreamble([]byte(raw), headers)
	if err != ErrParse {
		t.Fatalf("ScanPreamble(bad request line) = %v, want ErrParse", err)
	}
}

func TestScanResponsePreambleParsesStatusLineAndHeaders(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"
	headers := make([]RawHeader, MinHeaderSlots)
	code, reason, minor, hdrs, consumed, overflow, err := ScanResponsePreamble([]byte(raw), headers)
	if err != nil {
		t.Fatalf("ScanResponsePreamble: %v", err)
	}
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if code != 200 || reason != "OK" || minor != 1 {
		t.Errorf("got code=%d reason=%q minor=%d", code, reason, minor)
	}
	if consumed != len(raw) {
		t.Errorf("consumed = %d, want %d", consumed, len(raw))
	}
	if len(hdrs) != 1 || hdrs[0].Name != "Content-Length" || hdrs[0].Value != "5" {
		t.Errorf("hdrs = %+v", hdrs)
	}
}

func TestScanResponsePreambleNoReasonPhrase(t *testing.T) {
	raw := "HTTP/1.1 204\r\n\r\n"
	headers := make([]RawHeader, MinHeaderSlots)
	code, reason, _, _, _, _, err := ScanResponsePreamble([]byte(raw), headers)
	if err != nil {
		t.Fatalf("ScanResponsePreamble: %v", err)
	}
	if code != 204 || reason != "" {
		t.Errorf("got code=%d reason=%q, want 204, \"\"", code, reason)
	}
}

func TestScanResponsePreambleBadProtocol(t *testing.T) {
	raw := "HTTP/2.0 200 OK\r\n\r\n"
	headers := make([]RawHeader, MinHeaderSlots)
	_, _, _, _, _, _, err := ScanResponsePreamble([]byte(raw), headers)
	if err != ErrParse {
		t.Fatalf("ScanResponsePreamble(bad protocol) = %v, want ErrParse", err)
	}
}
