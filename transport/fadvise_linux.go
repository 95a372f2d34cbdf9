// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build linux

package transport

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseRandom tells the kernel readahead heuristics that reads against f
// will be scattered, index-driven block fetches rather than a sequential
// scan. Best-effort: failures are ignored, matching the teacher's treatment
// of OS-level hints as non-fatal tuning rather than correctness-affecting.
func adviseRandom(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM)
}
