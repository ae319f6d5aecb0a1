/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

// HTTP methods, as defined by RFC 7230 section 4.
const (
	GET      = "GET"
	POST     = "POST"
	CONNECT  = "CONNECT"
	DELETE   = "DELETE"
	HEAD     = "HEAD"
	OPTIONS  = "OPTIONS"
	PUT      = "PUT"
	PROPFIND = "PROPFIND"
	SEARCH   = "SEARCH"
	PATCH    = "PATCH"
	TRACE    = "TRACE"

	HTTP1_1 = "HTTP/1.1"
	HTTP1_0 = "HTTP/1.0"

	DoClose     = "close"
	DoKeepAlive = "keep-alive"
	DoChunked   = "chunked"
	DoIdentity  = "identity"
	DoUpgrade   = "upgrade"
)
