/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import "testing"

func TestScanResponseHeadFixedLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"
	head, consumed, overflow, err := ScanResponseHead([]byte(raw), 16)
	if err != nil {
		t.Fatalf("ScanResponseHead: %v", err)
	}
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if consumed != len(raw) {
		t.Errorf("consumed = %d, want %d", consumed, len(raw))
	}
	n, ok := head.BodyKind().FixedLen()
	if !ok || n != 5 {
		t.Errorf("BodyKind = %v, want Fixed(5)", head.BodyKind())
	}
}

func TestScanResponseHeadSuppressedStatus(t *testing.T) {
	raw := "HTTP/1.1 204 No Content\r\n\r\n"
	head, _, _, err := ScanResponseHead([]byte(raw), 16)
	if err != nil {
		t.Fatalf("ScanResponseHead: %v", err)
	}
	if head.HasBody() {
		t.Error("204 response should never report HasBody")
	}
}

func TestScanResponseHeadUntilClose(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n\r\n"
	head, _, _, err := ScanResponseHead([]byte(raw), 16)
	if err != nil {
		t.Fatalf("ScanResponseHead: %v", err)
	}
	if !head.BodyKind().IsUntilClose() {
		t.Errorf("BodyKind = %v, want UntilClose", head.BodyKind())
	}
	if !head.ConnectionClose() {
		t.Error("until-close body framing should force ConnectionClose")
	}
}

func TestScanResponseHeadChunked(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"
	head, _, _, err := ScanResponseHead([]byte(raw), 16)
	if err != nil {
		t.Fatalf("ScanResponseHead: %v", err)
	}
	if !head.BodyKind().IsChunked() {
		t.Errorf("BodyKind = %v, want Chunked", head.BodyKind())
	}
}

func TestScanResponseHeadIncomplete(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Len"
	head, _, overflow, err := ScanResponseHead([]byte(raw), 16)
	if err != nil || overflow {
		t.Fatalf("ScanResponseHead(incomplete) head=%v overflow=%v err=%v", head, overflow, err)
	}
	if head != nil {
		t.Error("ScanResponseHead should return nil head for an incomplete preamble")
	}
}
