/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import "testing"

func TestParseRequestTargetOriginForm(t *testing.T) {
	tgt, ok := parseRequestTarget("/search?q=go")
	if !ok {
		t.Fatal("parseRequestTarget failed")
	}
	if !tgt.IsOrigin() {
		t.Error("expected origin form")
	}
	path, has := tgt.Path()
	if !has || path != "/search" {
		t.Errorf("Path() = %q, %v, want /search, true", path, has)
	}
	if tgt.Query() != "q=go" {
		t.Errorf("Query() = %q, want q=go", tgt.Query())
	}
}

func TestParseRequestTargetAbsoluteForm(t *testing.T) {
	tgt, ok := parseRequestTarget("http://example.com:8080/a/b?c=1")
	if !ok {
		t.Fatal("parseRequestTarget failed")
	}
	if !tgt.IsAbsolute() {
		t.Error("expected absolute form")
	}
	if tgt.Scheme() != "http" {
		t.Errorf("Scheme() = %q, want http", tgt.Scheme())
	}
	if tgt.Authority() != "example.com:8080" {
		t.Errorf("Authority() = %q, want example.com:8080", tgt.Authority())
	}
	path, _ := tgt.Path()
	if path != "/a/b" {
		t.Errorf("Path() = %q, want /a/b", path)
	}
	if tgt.Query() != "c=1" {
		t.Errorf("Query() = %q, want c=1", tgt.Query())
	}
}

func TestParseRequestTargetAbsoluteFormNoPath(t *testing.T) {
	tgt, ok := parseRequestTarget("http://example.com")
	if !ok {
		t.Fatal("parseRequestTarget failed")
	}
	path, _ := tgt.Path()
	if path != "/" {
		t.Errorf("Path() = %q, want / (default)", path)
	}
}

func TestParseRequestTargetAuthorityForm(t *testing.T) {
	tgt, ok := parseRequestTarget("example.com:443")
	if !ok {
		t.Fatal("parseRequestTarget failed")
	}
	if !tgt.IsAuthority() {
		t.Error("expected authority form")
	}
	if tgt.Authority() != "example.com:443" {
		t.Errorf("Authority() = %q, want example.com:443", tgt.Authority())
	}
}

func TestParseRequestTargetAsteriskForm(t *testing.T) {
	tgt, ok := parseRequestTarget("*")
	if !ok {
		t.Fatal("parseRequestTarget failed")
	}
	if !tgt.IsAsterisk() {
		t.Error("expected asterisk form")
	}
}

func TestParseRequestTargetRejectsEmpty(t *testing.T) {
	if _, ok := parseRequestTarget(""); ok {
		t.Error("parseRequestTarget(\"\") should fail")
	}
}

func TestParseRequestTargetRejectsGarbageAuthority(t *testing.T) {
	if _, ok := parseRequestTarget("not a/valid?thing"); ok {
		t.Error("parseRequestTarget should reject garbage masquerading as authority-form")
	}
}
