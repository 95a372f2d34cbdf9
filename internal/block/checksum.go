// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes the 8-byte little-endian checksum stored at the tail of
// every block envelope: a 64-bit non-cryptographic hash over the level byte
// followed by the (possibly compressed) payload bytes, per spec §4.2.
//
// xxhash64 is picked over an invented hash because it's the exact
// alternative checksum the teacher's own footer format already recognizes
// (block.ChecksumTypeXXHash64 in table.go's parseFooter): this keeps ZSS's
// checksum bit-compatible with a real, already-deployed algorithm choice
// rather than inventing a new one for the open question in spec §9.
func Checksum(level byte, payload []byte) uint64 {
	d := xxhash.New()
	d.Write([]byte{level})
	d.Write(payload)
	return d.Sum64()
}

// RawChecksum computes the same 64-bit hash over data with no level byte
// prepended, used for the file header's own checksum (spec §3, §6), which
// covers plain header bytes rather than a level-tagged block payload.
func RawChecksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// PutChecksum writes the little-endian encoding of sum into dst, which must
// be at least 8 bytes.
func PutChecksum(dst []byte, sum uint64) {
	binary.LittleEndian.PutUint64(dst, sum)
}

// GetChecksum reads the little-endian 8-byte checksum from the front of src.
func GetChecksum(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// ChecksumLen is the fixed width of the envelope's trailing checksum field.
const ChecksumLen = 8
