/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import "sync/atomic"

// closeFlag is the shared "close-after" signal of spec section 5: set
// by the engines' loops when a head asks for Connection: close (or a
// request is rejected), by Serve on teardown, and by ClientConn.Close;
// read by ClientConn's writer goroutine to stop writing new requests
// and by ClientConn.TryEnqueue to refuse new ones. Monotonic: once set,
// never cleared.
type closeFlag struct {
	v atomic.Bool
}

func (f *closeFlag) set()        { f.v.Store(true) }
func (f *closeFlag) isSet() bool { return f.v.Load() }
