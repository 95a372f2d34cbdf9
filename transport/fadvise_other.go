// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build !linux

package transport

import "os"

// adviseRandom is a no-op on platforms without fadvise.
func adviseRandom(*os.File) {}
