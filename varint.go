// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"github.com/cockroachdb/errors"
	"github.com/zss-format/zss/internal/varint"
)

// getUvarint decodes a varint from the front of b, translating
// internal/varint's sentinel errors into the stable corruption-message
// fragments §4.1 and §8 require ("varint overflow", "truncated varint").
func getUvarint(b []byte) (uint64, int, error) {
	v, n, err := varint.Get(b)
	if err != nil {
		switch {
		case errors.Is(err, varint.ErrOverflow):
			return 0, 0, corruptf("varint overflow")
		default:
			return 0, 0, corruptf("truncated varint")
		}
	}
	return v, n, nil
}

func putUvarint(dst []byte, v uint64) []byte { return varint.Put(dst, v) }

func sizeUvarint(v uint64) int { return varint.Size(v) }

// maxVarintLen is the longest possible encoding of a 64-bit varint (§4.1).
const maxVarintLen = varint.MaxLen
