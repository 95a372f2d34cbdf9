// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package varint implements the little-endian base-128 unsigned integer
// encoding used throughout the ZSS format (spec §4.1): each byte carries 7
// payload bits, with the high bit marking continuation, up to a maximum of
// 10 bytes for a 64-bit value.
package varint

import (
	"encoding/binary"
	"errors"
)

// MaxLen is the longest possible encoding of a 64-bit value.
const MaxLen = binary.MaxVarintLen64

// ErrTruncated is returned when b ends before a complete varint is read.
var ErrTruncated = errors.New("varint: truncated varint")

// ErrOverflow is returned when a varint would decode to more than 64 bits.
var ErrOverflow = errors.New("varint: varint overflow")

// Get decodes a varint from the front of b, returning the value and the
// number of bytes consumed.
func Get(b []byte) (value uint64, n int, err error) {
	v, n := binary.Uvarint(b)
	switch {
	case n > 0:
		return v, n, nil
	case n == 0:
		return 0, 0, ErrTruncated
	default:
		return 0, 0, ErrOverflow
	}
}

// Put appends the varint encoding of v to dst and returns the result.
func Put(dst []byte, v uint64) []byte {
	var buf [MaxLen]byte
	n := binary.PutUvarint(buf[:], v)
	return append(dst, buf[:n]...)
}

// Size returns the number of bytes Put would append for v.
func Size(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
