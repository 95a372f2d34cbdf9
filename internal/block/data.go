// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"bytes"

	"github.com/zss-format/zss/internal/varint"
)

// DecodeData decodes a decompressed data-block payload (spec §3) into its
// constituent records. Each record is encoded as
// <shared_prefix_len><suffix_len><suffix_bytes>; the first record's
// shared_prefix_len must be 0. Records must be strictly nondecreasing.
//
// This generalizes the teacher's shared-prefix key decoding (table.go's
// package doc: "the second key would be encoded as {8, \"um\"}") from
// key-only entries to whole opaque records, since ZSS records have no
// separate key/value split.
func DecodeData(payload []byte) ([][]byte, error) {
	var records [][]byte
	var prev []byte
	for len(payload) > 0 {
		shared, n, err := varint.Get(payload)
		if err != nil {
			return nil, errCorrupt("end of buffer")
		}
		payload = payload[n:]

		suffixLen, n, err := varint.Get(payload)
		if err != nil {
			return nil, errCorrupt("end of buffer")
		}
		payload = payload[n:]

		if shared > uint64(len(prev)) {
			return nil, errCorrupt("past end of block")
		}
		if suffixLen > uint64(len(payload)) {
			return nil, errCorrupt("past end of block")
		}
		suffix := payload[:suffixLen]
		payload = payload[suffixLen:]

		record := make([]byte, 0, int(shared)+len(suffix))
		record = append(record, prev[:shared]...)
		record = append(record, suffix...)

		if len(records) == 0 && shared != 0 {
			return nil, errCorrupt("unsorted records")
		}
		if prev != nil && bytes.Compare(record, prev) < 0 {
			return nil, errCorrupt("unsorted records")
		}
		records = append(records, record)
		prev = record
	}
	if len(records) == 0 {
		return nil, errCorrupt("empty block")
	}
	return records, nil
}

// EncodeData encodes records (already sorted, nondecreasing, nonempty) into
// a shared-prefix-compressed data-block payload, for test fixture
// construction.
func EncodeData(records [][]byte) []byte {
	var buf []byte
	var prev []byte
	for _, r := range records {
		shared := commonPrefixLen(prev, r)
		suffix := r[shared:]
		buf = varint.Put(buf, uint64(shared))
		buf = varint.Put(buf, uint64(len(suffix)))
		buf = append(buf, suffix...)
		prev = r
	}
	return buf
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
