// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"github.com/cockroachdb/errors"
	"github.com/zss-format/zss/internal/varint"
)

// ExtensionLevelThreshold is the level above which a block is an extension
// block: reserved, skipped at every traversal step (spec §3).
const ExtensionLevelThreshold = 63

// IsExtension reports whether level marks an extension block.
func IsExtension(level byte) bool { return level > ExtensionLevelThreshold }

// IsData reports whether level marks a data (leaf) block.
func IsData(level byte) bool { return level == 0 }

// Envelope is a parsed, checksum-verified block envelope whose payload has
// not yet been decompressed (spec §4.2 step 1-3). Decompression is left to
// the caller because the codec is a file-wide property the block package
// has no business knowing about.
type Envelope struct {
	Level   byte
	Payload []byte // still codec-compressed
	// Len is the total number of bytes this envelope occupies on disk:
	// varint(inner_length) + inner_length + 8-byte checksum.
	Len int
}

// errCorrupt constructs a plain error; the caller (package zss) re-wraps
// block-package errors with its corruption-fragment vocabulary, since this
// package has no dependency on the root package's error helpers.
func errCorrupt(msg string) error { return errors.New(msg) }

// Parse parses and checksum-verifies a block envelope from the front of raw.
// raw must contain at least the full envelope; a short raw slice (e.g. a
// speculative read that didn't yet cover the whole envelope) is reported via
// ErrShortEnvelope so the caller can retry with a longer read.
func Parse(raw []byte) (Envelope, error) {
	innerLen, n, err := varint.Get(raw)
	if err != nil {
		if errors.Is(err, varint.ErrOverflow) {
			return Envelope{}, errCorrupt("varint overflow")
		}
		return Envelope{}, errCorrupt("truncated varint")
	}
	if innerLen == 0 {
		// inner_length always counts at least the level byte; zero means the
		// envelope itself is malformed, a distinct case from a validly framed
		// block whose decoded payload turns out to have zero records/entries
		// (that "empty block" is raised by DecodeData/DecodeIndex instead).
		return Envelope{}, errCorrupt("truncated varint")
	}
	// A declared length bigger than any real file could sanely be indicates
	// corruption rather than a truncated speculative read; cap it before
	// the int conversion below so a malicious/garbled length can't wrap
	// around and pass the total > len(raw) check.
	const maxSaneInnerLen = 1 << 40
	if innerLen > maxSaneInnerLen {
		return Envelope{}, errCorrupt("past end of block")
	}
	total := n + int(innerLen) + ChecksumLen
	if total > len(raw) {
		return Envelope{}, ErrShortEnvelope
	}
	body := raw[n : n+int(innerLen)]
	level := body[0]
	payload := body[1:]
	checksumBytes := raw[n+int(innerLen) : total]

	want := GetChecksum(checksumBytes)
	got := Checksum(level, payload)
	if want != got {
		return Envelope{}, errCorrupt("checksum mismatch")
	}
	return Envelope{Level: level, Payload: payload, Len: total}, nil
}

// ErrShortEnvelope is returned by Parse when raw doesn't yet contain the
// whole envelope (the declared-length hint was absent or wrong, spec §4.2
// step 1). The caller should re-read with a longer buffer and retry.
var ErrShortEnvelope = errors.New("block: short envelope read")

// Encode serializes level and an already-compressed payload into a full
// envelope, for use by tests constructing synthetic ZSS files.
func Encode(level byte, compressedPayload []byte) []byte {
	inner := 1 + len(compressedPayload)
	buf := varint.Put(make([]byte, 0, varint.MaxLen+inner+ChecksumLen), uint64(inner))
	buf = append(buf, level)
	buf = append(buf, compressedPayload...)
	sum := Checksum(level, compressedPayload)
	var sumBuf [ChecksumLen]byte
	PutChecksum(sumBuf[:], sum)
	buf = append(buf, sumBuf[:]...)
	return buf
}
