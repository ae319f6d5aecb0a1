/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package http

import (
	"log"

	"github.com/killercup/tk-http/hdr"
)

// Config holds the tunables of a Conn or ClientConn. Exported fields
// follow the teacher's Server-struct convention (plain fields a caller
// sets directly); the With* constructors are a thin convenience layer
// for callers who prefer functional options.
type Config struct {
	// MaxInFlight is the capacity of the engine's exchange queue: Conn's
	// reader blocks once this many exchanges are queued for the writer,
	// and ClientConn.TryEnqueue returns ErrBackpressure once this many
	// requests are waiting to be written. Zero means DefaultMaxInFlight.
	MaxInFlight int
	// HeaderSlots is the first-pass header slot count (spec section
	// 4.3's MIN_HEADERS). Zero means hdr.MinHeaderSlots.
	HeaderSlots int
	// MaxHeaderSlots is the hard cap retried on overflow (spec section
	// 4.3's MAX_HEADERS). Zero means hdr.MaxHeaderSlots.
	MaxHeaderSlots int
	// ReadBufferSize and WriteBufferSize size the two bufstream halves.
	// Zero means bufstream.DefaultBufferSize.
	ReadBufferSize  int
	WriteBufferSize int
	// ErrorLog receives fatal, already-decided-to-drop connection
	// errors. Nil means log.Default().
	ErrorLog *log.Logger
}

// DefaultMaxInFlight is the configurable upper bound spec section 9's
// Open Questions names explicitly ("this spec requires a configurable
// upper bound (default 128)").
const DefaultMaxInFlight = 128

// Option configures a Config. Construct one with WithMaxInFlight and
// friends, or set Config's fields directly — both are equally idiomatic
// here, following the teacher's own mix of field access and
// constructor sugar.
type Option func(*Config)

func WithMaxInFlight(n int) Option { return func(c *Config) { c.MaxInFlight = n } }

func WithHeaderSlotLimit(min, max int) Option {
	return func(c *Config) { c.HeaderSlots, c.MaxHeaderSlots = min, max }
}

func WithReadBufferSize(n int) Option { return func(c *Config) { c.ReadBufferSize = n } }

func WithWriteBufferSize(n int) Option { return func(c *Config) { c.WriteBufferSize = n } }

func WithErrorLog(l *log.Logger) Option { return func(c *Config) { c.ErrorLog = l } }

func newConfig(opts []Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxInFlight == 0 {
		cfg.MaxInFlight = DefaultMaxInFlight
	}
	if cfg.HeaderSlots == 0 {
		cfg.HeaderSlots = hdr.MinHeaderSlots
	}
	if cfg.MaxHeaderSlots == 0 {
		cfg.MaxHeaderSlots = hdr.MaxHeaderSlots
	}
	return cfg
}

func (c *Config) logger() *log.Logger {
	if c.ErrorLog != nil {
		return c.ErrorLog
	}
	return log.Default()
}
