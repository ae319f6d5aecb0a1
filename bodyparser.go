/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"bufio"
	"io"

	"github.com/killercup/tk-http/bufstream"
)

// bodyReceiver is the subset of Codec/RequestCodec the body parser needs
// — just DataReceived, since that's the only operation it drives.
type bodyReceiver interface {
	DataReceived(data []byte) (Progress, error)
}

// maxBodyPeek bounds how much of a body we ask bufstream.ReadHalf.Peek
// for at once; keeping it at the default buffer size means body
// draining triggers Peek's buffer-growth path only when
// Config.ReadBufferSize is set below that default.
const maxBodyPeek = bufstream.DefaultBufferSize

// drainBody reads a request or response body out of read according to
// kind and feeds it to recv, per spec section 4.5. It returns once the
// body is fully consumed (including, for Chunked, the trailer and
// terminating CRLF) or an error occurs. UnsupportedBody (CONNECT) is a
// caller error: the body parser never reads for it.
func drainBody(read *bufstream.ReadHalf, kind BodyKind, recv bodyReceiver) error {
	if n, ok := kind.FixedLen(); ok {
		return drainFixed(read, n, recv)
	}
	if kind.IsChunked() {
		return drainChunked(read, recv)
	}
	if kind.IsUntilClose() {
		return drainUntilClose(read, recv)
	}
	return newErr(ParseError, "drainBody called with Unsupported body kind")
}

// drainUntilClose feeds recv everything left on the connection, stopping
// only at EOF — the framing RFC 7230 section 3.3.3 rule 7 assigns a
// response with neither Content-Length nor chunked encoding. The caller
// is expected to close the connection once this returns, since nothing
// on the wire marks where this body ends.
func drainUntilClose(read *bufstream.ReadHalf, recv bodyReceiver) error {
	for {
		b, err := read.Peek(maxBodyPeek)
		if len(b) == 0 {
			if err == io.EOF {
				_, derr := recv.DataReceived(nil)
				return derr
			}
			return wrapErr(IOErr, "reading until-close body", err)
		}
		progress, perr := recv.DataReceived(b)
		if perr != nil {
			return perr
		}
		if progress.N() < 0 || progress.N() > len(b) {
			return newErr(ParseError, "codec reported impossible Progress.N")
		}
		read.Consume(progress.N())
		if progress.Finished() {
			return nil
		}
	}
}

func drainFixed(read *bufstream.ReadHalf, n uint64, recv bodyReceiver) error {
	var remaining = n
	if remaining == 0 {
		_, err := recv.DataReceived(nil)
		if err != nil {
			return err
		}
		return nil
	}
	for remaining > 0 {
		chunkSize := remaining
		if chunkSize > maxBodyPeek {
			chunkSize = maxBodyPeek
		}
		b, err := read.Peek(int(chunkSize))
		if len(b) == 0 {
			if err == io.EOF {
				return wrapErr(Closed, "peer closed mid-body", io.ErrUnexpectedEOF)
			}
			if err != nil {
				return wrapErr(IOErr, "reading fixed body", err)
			}
		}
		progress, perr := recv.DataReceived(b)
		if perr != nil {
			return perr
		}
		if progress.N() < 0 || progress.N() > len(b) {
			return newErr(ParseError, "codec reported impossible Progress.N")
		}
		read.Consume(progress.N())
		remaining -= uint64(progress.N())
		if progress.Finished() {
			break
		}
	}
	return nil
}

func drainChunked(read *bufstream.ReadHalf, recv bodyReceiver) error {
	for {
		line, err := readChunkLine(read.Buf)
		if err != nil {
			return wrapErr(ParseError, "chunk size line", err)
		}
		size, err := parseHexUint(line)
		if err != nil {
			return wrapErr(ParseError, "chunk size", err)
		}
		if size == 0 {
			if err := consumeTrailer(read.Buf); err != nil {
				return err
			}
			_, err := recv.DataReceived(nil)
			return err
		}
		remaining := size
		for remaining > 0 {
			want := remaining
			if want > maxBodyPeek {
				want = maxBodyPeek
			}
			b, perr := read.Peek(int(want))
			if len(b) == 0 && perr != nil {
				return wrapErr(IOErr, "reading chunk body", perr)
			}
			progress, derr := recv.DataReceived(b)
			if derr != nil {
				return derr
			}
			if progress.N() < 0 || progress.N() > len(b) {
				return newErr(ParseError, "codec reported impossible Progress.N")
			}
			read.Consume(progress.N())
			remaining -= uint64(progress.N())
		}
		crlf, err := read.Peek(2)
		if err != nil || string(crlf) != "\r\n" {
			return newErr(ParseError, "missing chunk trailing CRLF")
		}
		read.Consume(2)
	}
}

// consumeTrailer reads and discards any trailer headers after the
// zero-chunk, up through the terminating blank line. Spec section 4.5
// and the GLOSSARY both note that trailers are consumed but not exposed.
func consumeTrailer(r *bufio.Reader) error {
	for {
		line, err := readChunkLine(r)
		if err != nil {
			return wrapErr(ParseError, "chunk trailer", err)
		}
		if len(line) == 0 {
			return nil
		}
	}
}
