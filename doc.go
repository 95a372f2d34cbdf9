// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package zss implements a reader for the ZSS file format: a static,
// sorted, block-indexed, compressed record store readable either from a
// local file or over HTTP range requests.
//
// A ZSS file is write-once: it is always opened for reading, never
// mutated in place. A Reader owns a transport handle, a parsed header,
// and a cached decoded root index block; it is valid from a successful
// Open to an explicit Close, after which every operation fails with
// ErrClosed.
//
// A reader can be used concurrently: Search, SloppyBlockSearch,
// SloppyBlockMap, and Validate may all run from multiple goroutines
// against the same Reader, since the transport is read-only and the
// decoded root block is immutable. Individual iterators (RecordIter,
// BlockIter, MapIter), however, are not safe for concurrent use.
//
// To scan a range of records in sorted order:
//
//	r, err := zss.OpenPath(ctx, "data.zss", nil)
//	if err != nil { ... }
//	defer r.Close()
//	it, err := r.Search(ctx, zss.SearchParams{Start: []byte("m")})
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//		record := it.Record()
//	}
//	if err := it.Err(); err != nil { ... }
//
// To check a file's internal consistency:
//
//	if err := r.Validate(ctx); err != nil {
//		// err's message contains a stable fragment such as
//		// "checksum mismatch" or "unsorted records"
//	}
package zss
