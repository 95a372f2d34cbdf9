// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"bytes"

	"github.com/zss-format/zss/internal/varint"
)

// Entry is one (key, child_offset, child_length) triple from an index block
// payload (spec §3). Key is the first record of the referenced child.
type Entry struct {
	Key   []byte
	Child Handle
}

// DecodeIndex decodes a decompressed index-block payload into its entries.
// Entries must be strictly increasing by key AND strictly increasing by
// child offset (spec §3); this is verified here rather than left to callers
// since every reader of an index block needs the same guarantee.
//
// Grounded on table.go's index-block doc comment ("The i'th value is the
// encoded block handle of the i'th data block...") generalized from
// single/two-level sstable indexes to ZSS's N-level index chain, and on
// decodeBlockHandle for the trailing (offset, length) pair.
func DecodeIndex(payload []byte) ([]Entry, error) {
	var entries []Entry
	var prevKey []byte
	var prevOffset uint64
	first := true
	for len(payload) > 0 {
		keyLen, n, err := varint.Get(payload)
		if err != nil {
			return nil, errCorrupt("end of buffer")
		}
		payload = payload[n:]
		if keyLen > uint64(len(payload)) {
			return nil, errCorrupt("past end of block")
		}
		key := payload[:keyLen]
		payload = payload[keyLen:]

		h, n := DecodeHandle(payload)
		if n == 0 {
			return nil, errCorrupt("end of buffer")
		}
		payload = payload[n:]

		if !first {
			if bytes.Compare(key, prevKey) <= 0 {
				return nil, errCorrupt("unsorted records")
			}
			if h.Offset <= prevOffset {
				return nil, errCorrupt("unsorted offsets")
			}
		}
		entries = append(entries, Entry{Key: append([]byte(nil), key...), Child: h})
		prevKey = key
		prevOffset = h.Offset
		first = false
	}
	if len(entries) == 0 {
		return nil, errCorrupt("empty block")
	}
	return entries, nil
}

// EncodeIndex encodes entries (already sorted per DecodeIndex's invariants)
// into an index-block payload, for test fixture construction.
func EncodeIndex(entries []Entry) []byte {
	var buf []byte
	for _, e := range entries {
		buf = varint.Put(buf, uint64(len(e.Key)))
		buf = append(buf, e.Key...)
		buf = EncodeHandle(buf, e.Child)
	}
	return buf
}
