// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"github.com/cockroachdb/errors"
)

// ErrCorrupt is the sentinel every corruption error is marked with. Use
// errors.Is(err, ErrCorrupt) to distinguish a format violation from an
// operational error.
var ErrCorrupt = errors.New("zss: corrupt file")

// ErrClosed is returned by every operation on a Reader after Close has been
// called.
var ErrClosed = errors.New("zss: reader is closed")

// ErrInvalidArgument marks operational misuse: bad Options, conflicting
// path/URL, or an HTTP endpoint that doesn't support range requests.
var ErrInvalidArgument = errors.New("zss: invalid argument")

// corruptf builds a corruption error carrying one of the stable message
// fragments enumerated in the format's testable-properties section, so
// callers can match on the fragment with strings.Contains or errors.Is
// against ErrCorrupt.
func corruptf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("zss: corrupt file: "+format, args...), ErrCorrupt)
}

// invalidArgf builds an operational error for invalid configuration or
// arguments, as distinct from a corrupt-file error.
func invalidArgf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("zss: "+format, args...), ErrInvalidArgument)
}

// safeOffset marks a byte offset as safe-to-report, mirroring the teacher's
// use of errors.Safe around file numbers in corruption messages (table.go's
// base.CorruptionErrorf(..., errors.Safe(fileNum))).
func safeOffset(off uint64) interface{} {
	return errors.Safe(off)
}
