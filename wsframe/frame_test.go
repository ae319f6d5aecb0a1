/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package wsframe

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestWriteFrameThenParseFrameRoundTrips(t *testing.T) {
	cases := []struct {
		name   string
		opcode Opcode
		data   []byte
		mask   bool
	}{
		{"text-unmasked", OpText, []byte("hello"), false},
		{"binary-masked", OpBinary, []byte{0x00, 0x01, 0x02, 0xFF}, true},
		{"empty-ping", OpPing, nil, true},
		{"large-binary", OpBinary, bytes.Repeat([]byte{0xAB}, 70000), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wire, err := WriteFrame(nil, c.opcode, c.data, c.mask)
			if err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			frame, consumed, err := ParseFrame(wire, 1<<20, c.mask)
			if err != nil {
				t.Fatalf("ParseFrame: %v", err)
			}
			if consumed != len(wire) {
				t.Errorf("consumed = %d, want %d", consumed, len(wire))
			}
			want := Frame{Opcode: c.opcode, Data: c.data}
			if diff := cmp.Diff(want, frame, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseFrame round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFrameIncomplete(t *testing.T) {
	wire, err := WriteFrame(nil, OpText, []byte("hello world"), false)
	if err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	frame, consumed, err := ParseFrame(wire[:len(wire)-2], 1<<20, false)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if consumed != 0 || frame.Data != nil {
		t.Errorf("ParseFrame(truncated) should report incomplete, got consumed=%d frame=%+v", consumed, frame)
	}
}

func TestParseFrameTooLong(t *testing.T) {
	wire, err := WriteFrame(nil, OpBinary, make([]byte, 1000), false)
	if err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	_, _, err = ParseFrame(wire, 100, false)
	if err != ErrTooLong {
		t.Fatalf("ParseFrame(oversized) = %v, want ErrTooLong", err)
	}
}

func TestParseFrameMaskMismatch(t *testing.T) {
	wire, err := WriteFrame(nil, OpText, []byte("hi"), true)
	if err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	_, _, err = ParseFrame(wire, 1<<20, false)
	if err != ErrMaskMismatch {
		t.Fatalf("ParseFrame(mask mismatch) = %v, want ErrMaskMismatch", err)
	}
}

func TestParseFrameInvalidUTF8(t *testing.T) {
	wire, err := WriteFrame(nil, OpText, []byte{0xff, 0xfe, 0xfd}, false)
	if err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	_, _, err = ParseFrame(wire, 1<<20, false)
	if err != ErrInvalidUTF8 {
		t.Fatalf("ParseFrame(invalid utf8) = %v, want ErrInvalidUTF8", err)
	}
}

func TestWriteCloseThenParseFrame(t *testing.T) {
	wire, err := WriteClose(nil, 1000, "bye", false)
	if err != nil {
		t.Fatalf("WriteClose: %v", err)
	}
	frame, _, err := ParseFrame(wire, 1<<20, false)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if frame.Opcode != OpClose || frame.Code != 1000 || string(frame.Reason) != "bye" {
		t.Errorf("frame = %+v, want Close(1000, bye)", frame)
	}
}

func TestWriteCloseReasonTooLong(t *testing.T) {
	_, err := WriteClose(nil, 1000, string(bytes.Repeat([]byte{'a'}, 124)), false)
	if err == nil {
		t.Fatal("WriteClose(reason too long) should fail")
	}
}
