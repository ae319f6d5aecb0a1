/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import "strings"

// targetForm discriminates the four request-target grammars RFC 7230
// section 5.3 allows in the request line.
type targetForm int

const (
	formOrigin targetForm = iota
	formAbsolute
	formAuthority
	formAsterisk
)

// RequestTarget is the parsed middle token of the request line. Exactly
// one accessor pair is meaningful depending on Form:
//
//	Origin form:    Path, Query
//	Absolute form:  Scheme, Authority, Path, Query
//	Authority form: Authority (CONNECT only)
//	Asterisk form:  none (OPTIONS *)
type RequestTarget struct {
	form      targetForm
	scheme    string
	authority string
	path      string
	query     string
}

// IsOrigin reports whether the target is origin-form ("/path?query").
func (t RequestTarget) IsOrigin() bool { return t.form == formOrigin }

// IsAbsolute reports whether the target is absolute-form
// ("scheme://authority/path?query").
func (t RequestTarget) IsAbsolute() bool { return t.form == formAbsolute }

// IsAuthority reports whether the target is authority-form ("host:port",
// used only by CONNECT).
func (t RequestTarget) IsAuthority() bool { return t.form == formAuthority }

// IsAsterisk reports whether the target is asterisk-form ("*", used only
// by OPTIONS).
func (t RequestTarget) IsAsterisk() bool { return t.form == formAsterisk }

// Scheme returns the scheme of an absolute-form target, else "".
func (t RequestTarget) Scheme() string { return t.scheme }

// Authority returns the host[:port] of an absolute-form or
// authority-form target, else "".
func (t RequestTarget) Authority() string { return t.authority }

// Path returns the path of an origin-form or absolute-form target.
// Absent in authority and asterisk forms (the latter's path is
// conventionally "*", but callers should match on IsAsterisk instead).
func (t RequestTarget) Path() (string, bool) {
	switch t.form {
	case formOrigin, formAbsolute:
		return t.path, true
	default:
		return "", false
	}
}

// Query returns the raw (still percent-encoded) query string, without
// the leading '?', of an origin-form or absolute-form target.
func (t RequestTarget) Query() string { return t.query }

// parseRequestTarget parses the raw request-target token into one of the
// four forms spec.md section 4.3 names. It returns false for malformed
// input (e.g. an empty target, or "*" combined with trailing garbage).
func parseRequestTarget(raw string) (RequestTarget, bool) {
	switch {
	case raw == "":
		return RequestTarget{}, false
	case raw == "*":
		return RequestTarget{form: formAsterisk}, true
	case raw[0] == '*':
		return RequestTarget{}, false
	case raw[0] == '/':
		path, query := splitQuery(raw)
		return RequestTarget{form: formOrigin, path: path, query: query}, true
	case looksLikeScheme(raw):
		return parseAbsoluteForm(raw)
	default:
		// Authority-form: host[:port], no path, no scheme. Used by
		// CONNECT. Reject anything containing a slash or '?', which
		// rules out origin-form paths lacking the leading '/' and
		// other garbage.
		if strings.ContainsAny(raw, "/?#") {
			return RequestTarget{}, false
		}
		return RequestTarget{form: formAuthority, authority: raw}, true
	}
}

func looksLikeScheme(raw string) bool {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return false
	}
	for _, c := range raw[:i] {
		if !isSchemeByte(c) {
			return false
		}
	}
	return true
}

func isSchemeByte(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '+' || c == '-' || c == '.'
}

func parseAbsoluteForm(raw string) (RequestTarget, bool) {
	i := strings.Index(raw, "://")
	scheme := strings.ToLower(raw[:i])
	rest := raw[i+3:]

	pathStart := strings.IndexAny(rest, "/?")
	var authority, pathAndQuery string
	if pathStart == -1 {
		authority = rest
	} else {
		authority = rest[:pathStart]
		pathAndQuery = rest[pathStart:]
	}
	if authority == "" {
		return RequestTarget{}, false
	}
	path := "/"
	query := ""
	if pathAndQuery != "" {
		path, query = splitQuery(pathAndQuery)
	}
	return RequestTarget{
		form:      formAbsolute,
		scheme:    scheme,
		authority: authority,
		path:      path,
		query:     query,
	}, true
}

func splitQuery(pathAndQuery string) (path, query string) {
	if i := strings.IndexByte(pathAndQuery, '?'); i != -1 {
		return pathAndQuery[:i], pathAndQuery[i+1:]
	}
	return pathAndQuery, ""
}
