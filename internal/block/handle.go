// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package block implements the ZSS block envelope, checksum, and the two
// block payload models (index and data), as described in spec §3 and §4.2.
//
// This mirrors the layout of the teacher's sstable/block subpackage:
// table.go imports "github.com/cockroachdb/pebble/sstable/block" for
// block.Handle, block.ChecksumType and block.DecodeHandle, and this package
// plays the same role for ZSS.
package block

import (
	"github.com/zss-format/zss/internal/varint"
)

// Handle is the (offset, length) of a block on disk. Length is the
// envelope's total byte length (varint length prefix + level byte +
// compressed payload + 8-byte checksum), matching the on-disk
// child_length/root_index_length fields of spec §3.
type Handle struct {
	Offset, Length uint64
}

// DecodeHandle decodes a (child_offset, child_length) pair encoded as two
// consecutive varints, returning the handle and the number of bytes
// consumed. It returns (Handle{}, 0) on malformed input, mirroring the
// teacher's decodeBlockHandle.
func DecodeHandle(src []byte) (Handle, int) {
	off, n, err := varint.Get(src)
	if err != nil {
		return Handle{}, 0
	}
	length, m, err := varint.Get(src[n:])
	if err != nil {
		return Handle{}, 0
	}
	return Handle{Offset: off, Length: length}, n + m
}

// EncodeHandle appends the varint encoding of h to dst.
func EncodeHandle(dst []byte, h Handle) []byte {
	dst = varint.Put(dst, h.Offset)
	dst = varint.Put(dst, h.Length)
	return dst
}
