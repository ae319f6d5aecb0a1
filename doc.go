/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package http implements the wire-level machinery of an asynchronous
// HTTP/1.x pipeline, plus the framing needed to upgrade a connection to
// WebSocket once the handshake completes.
//
// A Conn owns one accepted connection server-side: it scans incoming
// request preambles, dispatches each to a user-supplied Dispatcher, and
// writes responses back in strict enqueue order even though request
// bodies and response bodies may each still be streaming. ClientConn is
// the client-side mirror: TryEnqueue submits a RequestCodec, and
// responses are matched back up in the same FIFO order the requests
// were written.
//
// The header scanner (ScanHead, ScanResponseHead) and the Message-state
// serializer (MessageState) are usable independently of Conn for
// callers building their own transport loop; the body parser (drainBody
// and its BodyKind-dispatched helpers) is unexported and used only by
// the engines. Package wsframe implements
// the WebSocket frame codec and opening handshake for callers that
// upgrade a Conn once a request accepts it; package hdr implements
// header canonicalization and the zero-copy preamble scanner both
// request and response parsing share; package bufstream splits a
// net.Conn into independently growable read and write halves.
package http
