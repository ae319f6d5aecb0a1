/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package wsframe

import "testing"

// headerList is a HeaderSource backed by a plain slice, for tests.
type headerList struct {
	pairs [][2]string
	i     int
}

func (h *headerList) Next() (name, value string, ok bool) {
	if h.i >= len(h.pairs) {
		return "", "", false
	}
	p := h.pairs[h.i]
	h.i++
	return p[0], p[1], true
}

func TestAcceptComputesRFC6455Vector(t *testing.T) {
	// The exact example from RFC 6455 section 1.3.
	headers := &headerList{pairs: [][2]string{
		{"Upgrade", "websocket"},
		{"Sec-Websocket-Key", "dGhlIHNhbXBsZSBub25jZQ=="},
		{"Sec-Websocket-Version", "13"},
	}}
	hs, err := Accept(headers, true, false)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if hs == nil {
		t.Fatal("Accept returned nil handshake for a valid request")
	}
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got := hs.AcceptString(); got != want {
		t.Errorf("AcceptString() = %q, want %q", got, want)
	}
}

func TestAcceptCollectsProtocolsAndExtensions(t *testing.T) {
	headers := &headerList{pairs: [][2]string{
		{"Upgrade", "websocket"},
		{"Sec-Websocket-Key", "dGhlIHNhbXBsZSBub25jZQ=="},
		{"Sec-Websocket-Version", "13"},
		{"Sec-Websocket-Protocol", "chat, superchat"},
		{"Sec-Websocket-Extensions", "permessage-deflate"},
	}}
	hs, err := Accept(headers, true, false)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(hs.Protocols) != 2 || hs.Protocols[0] != "chat" || hs.Protocols[1] != "superchat" {
		t.Errorf("Protocols = %v, want [chat superchat]", hs.Protocols)
	}
	if len(hs.Extensions) != 1 || hs.Extensions[0] != "permessage-deflate" {
		t.Errorf("Extensions = %v, want [permessage-deflate]", hs.Extensions)
	}
}

func TestAcceptNotAHandshake(t *testing.T) {
	headers := &headerList{}
	hs, err := Accept(headers, false, false)
	if err != nil || hs != nil {
		t.Fatalf("Accept(no upgrade token) = %v, %v, want nil, nil", hs, err)
	}
}

func TestAcceptDuplicateKeyIsHardError(t *testing.T) {
	headers := &headerList{pairs: [][2]string{
		{"Upgrade", "websocket"},
		{"Sec-Websocket-Key", "dGhlIHNhbXBsZSBub25jZQ=="},
		{"Sec-Websocket-Key", "b25vdGhlcg=="},
		{"Sec-Websocket-Version", "13"},
	}}
	_, err := Accept(headers, true, false)
	if err != ErrDuplicateKey {
		t.Fatalf("Accept(duplicate key) = %v, want ErrDuplicateKey", err)
	}
}

func TestAcceptBadVersion(t *testing.T) {
	headers := &headerList{pairs: [][2]string{
		{"Upgrade", "websocket"},
		{"Sec-Websocket-Key", "dGhlIHNhbXBsZSBub25jZQ=="},
		{"Sec-Websocket-Version", "8"},
	}}
	_, err := Accept(headers, true, false)
	if err != ErrBadVersion {
		t.Fatalf("Accept(bad version) = %v, want ErrBadVersion", err)
	}
}

func TestAcceptRejectsBody(t *testing.T) {
	headers := &headerList{pairs: [][2]string{
		{"Upgrade", "websocket"},
		{"Sec-Websocket-Key", "dGhlIHNhbXBsZSBub25jZQ=="},
		{"Sec-Websocket-Version", "13"},
	}}
	_, err := Accept(headers, true, true)
	if err != ErrHasBody {
		t.Fatalf("Accept(has body) = %v, want ErrHasBody", err)
	}
}
