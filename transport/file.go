// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package transport

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// File is a Transport backed by a local, already-open *os.File. It uses
// os.File.ReadAt, which performs positioned reads without a shared seek
// cursor and is safe for concurrent use by multiple goroutines, matching
// the concurrency contract spec §5 requires of a file-backed transport.
type File struct {
	f *os.File
}

// OpenFile opens path for reading and hints the kernel that access will be
// effectively random (ZSS's whole point is scattered block reads driven by
// an index, not a sequential scan), the way a storage engine advises its
// data files.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: open %s", path)
	}
	adviseRandom(f)
	return &File{f: f}, nil
}

// NewFile wraps an already-open file, taking ownership of it (Close will
// close f).
func NewFile(f *os.File) *File {
	adviseRandom(f)
	return &File{f: f}
}

func (t *File) ReadAt(_ context.Context, p []byte, off uint64) error {
	n, err := t.f.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return errors.Mark(errors.Newf("transport: unexpected EOF: read %d of %d bytes at offset %d", n, len(p), off), ErrPartialRead)
	}
	return errors.Mark(errors.Wrapf(err, "transport: partial read"), ErrPartialRead)
}

func (t *File) Len(context.Context) (uint64, error) {
	fi, err := t.f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "transport: stat")
	}
	return uint64(fi.Size()), nil
}

func (t *File) Close() error {
	return t.f.Close()
}
