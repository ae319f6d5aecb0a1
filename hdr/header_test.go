/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"bytes"
	"testing"
)

func TestHeaderAddGetSet(t *testing.T) {
	h := Header{}
	h.Add("x-custom", "one")
	h.Add("X-Custom", "two")
	if got := h.Get("X-CUSTOM"); got != "one" {
		t.Errorf("Get = %q, want %q", got, "one")
	}
	if got := h["X-Custom"]; len(got) != 2 {
		t.Errorf("canonical key holds %d values, want 2", len(got))
	}
	h.Set("x-custom", "reset")
	if got := h.Get("x-custom"); got != "reset" {
		t.Errorf("Get after Set = %q, want %q", got, "reset")
	}
}

func TestHeaderWriteSubsetExcludesAndSorts(t *testing.T) {
	h := Header{}
	h.Set("Content-Length", "10")
	h.Set("Accept", "*/*")
	h.Set("Host", "example.com")
	var buf bytes.Buffer
	if err := h.WriteSubset(&buf, map[string]bool{"Content-Length": true}); err != nil {
		t.Fatalf("WriteSubset: %v", err)
	}
	want := "Accept: */*\r\nHost: example.com\r\n"
	if buf.String() != want {
		t.Errorf("WriteSubset = %q, want %q", buf.String(), want)
	}
}

func TestCanonicalHeaderKey(t *testing.T) {
	cases := map[string]string{
		"content-type": "Content-Type",
		"ACCEPT":       "Accept",
		"X-Custom-Id":  "X-Custom-Id",
	}
	for in, want := range cases {
		if got := CanonicalHeaderKey(in); got != want {
			t.Errorf("CanonicalHeaderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidHeaderFieldValueRejectsControlBytes(t *testing.T) {
	if !ValidHeaderFieldValue("plain value") {
		t.Error("ValidHeaderFieldValue rejected an ordinary value")
	}
	if ValidHeaderFieldValue("bad\x00value") {
		t.Error("ValidHeaderFieldValue accepted a NUL byte")
	}
}
