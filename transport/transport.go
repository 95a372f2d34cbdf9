// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package transport implements the uniform "read N bytes at offset O"
// capability ZSS's reader uses against either a local file or an HTTP
// range endpoint (spec §4.4), mirroring the teacher's vfs.File
// abstraction: table.go's Reader holds a vfs.File and never branches on
// what backs it.
package transport

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Transport is a read-only, concurrency-safe, random-access byte-range
// capability. A file-backed Transport uses positioned reads (no shared
// seek cursor); an HTTP-backed Transport issues Range requests. Both are
// safe for concurrent use by multiple decode-pipeline workers (spec §5).
type Transport interface {
	// ReadAt reads exactly len(p) bytes starting at offset off into p. A
	// short read is reported as an error wrapping ErrPartialRead, never
	// returned as a shorter-than-requested read with a nil error.
	ReadAt(ctx context.Context, p []byte, off uint64) error

	// Len returns the total size of the underlying object in bytes.
	Len(ctx context.Context) (uint64, error)

	// Close releases any resources (open file descriptor, connection
	// pool) held by the transport.
	Close() error
}

// ErrPartialRead marks a read that returned fewer bytes than requested
// before hitting an error or EOF (spec §4.4, §8: "partial read",
// "unexpected EOF").
var ErrPartialRead = errors.New("transport: partial read")
