// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/zss-format/zss/codec"
	"github.com/zss-format/zss/internal/block"
	"github.com/zss-format/zss/transport"
)

// lettersRecords is the canonical 26-record test dataset of spec §8:
// [b, bb, d, dd, f, ff, ..., z, zz].
func lettersRecords() [][]byte {
	var out [][]byte
	for c := byte('b'); c <= 'z'; c += 2 {
		out = append(out, []byte{c})
		out = append(out, []byte{c, c})
	}
	return out
}

func chunk(records [][]byte, n int) [][][]byte {
	var out [][][]byte
	for i := 0; i < len(records); i += n {
		end := i + n
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[i:end])
	}
	return out
}

// encodeHeader reproduces the inverse of parseHeader (header.go). There is
// no production writer to reuse here, since this package implements only
// the read path; this exists purely to hand-assemble test fixtures.
func encodeHeader(totalFileLength uint64, dataSHA256 [32]byte, codecName codec.Name, metadata map[string]interface{}, rootOffset, rootLength uint64) []byte {
	var buf []byte
	buf = append(buf, magic[:]...)

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], totalFileLength)
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, dataSHA256[:]...)

	codecBuf := make([]byte, codecFieldLen)
	copy(codecBuf, []byte(codecName))
	buf = append(buf, codecBuf...)

	metaBytes, err := json.Marshal(metadata)
	if err != nil {
		panic(err)
	}
	buf = putUvarint(buf, uint64(len(metaBytes)))
	buf = append(buf, metaBytes...)

	var rootOffBuf [8]byte
	binary.LittleEndian.PutUint64(rootOffBuf[:], rootOffset)
	buf = append(buf, rootOffBuf[:]...)
	buf = putUvarint(buf, rootLength)

	sum := block.RawChecksum(buf)
	var sumBuf [8]byte
	binary.LittleEndian.PutUint64(sumBuf[:], sum)
	buf = append(buf, sumBuf[:]...)
	return buf
}

var defaultFixtureMetadata = map[string]interface{}{"dataset": "letters"}

// flatFile builds a single-data-block file (root level 0): the whole file
// is one leaf, per spec §4.5 step 8.
func flatFile(t *testing.T, codecName codec.Name, records [][]byte) []byte {
	t.Helper()
	payload := block.EncodeData(records)
	compressed, err := codec.Compress(codecName, payload)
	require.NoError(t, err)
	dataEnv := block.Encode(0, compressed)

	hash := sha256.Sum256(dataEnv)
	placeholder := encodeHeader(0, hash, codecName, defaultFixtureMetadata, 0, uint64(len(dataEnv)))
	headerLen := uint64(len(placeholder))
	total := headerLen + uint64(len(dataEnv))

	header := encodeHeader(total, hash, codecName, defaultFixtureMetadata, headerLen, uint64(len(dataEnv)))
	require.Equal(t, int(headerLen), len(header))

	out := append([]byte{}, header...)
	out = append(out, dataEnv...)
	return out
}

// extraBlock is a block placed in the file body but deliberately left out
// of every index entry: an orphan (unreferenced) or extension block.
type extraBlock struct {
	level   byte
	records [][]byte // nil for a pure extension block with arbitrary payload
}

// treeFile builds a two-level tree (root level 1, data blocks level 0)
// from chunks, one data block per chunk, indexed by entriesFn once every
// data block's real file offset is known. extras are appended to the body
// after the root block, referenced by nothing.
//
// entriesFn lets individual tests perturb the otherwise-well-formed index
// (wrong key, duplicated child) to exercise validate()'s negative paths;
// pass defaultEntries for a well-formed tree.
func treeFile(t *testing.T, codecName codec.Name, chunks [][][]byte, extras []extraBlock, entriesFn func(handles []block.Handle, firstKeys [][]byte) []block.Entry) []byte {
	t.Helper()

	var dataEnvs [][]byte
	var firstKeys [][]byte
	for _, c := range chunks {
		payload := block.EncodeData(c)
		compressed, err := codec.Compress(codecName, payload)
		require.NoError(t, err)
		dataEnvs = append(dataEnvs, block.Encode(0, compressed))
		firstKeys = append(firstKeys, c[0])
	}

	var extraEnvs [][]byte
	for _, x := range extras {
		var payload []byte
		if x.records != nil {
			payload = block.EncodeData(x.records)
		}
		compressed, err := codec.Compress(codecName, payload)
		require.NoError(t, err)
		extraEnvs = append(extraEnvs, block.Encode(x.level, compressed))
	}

	headerLen := uint64(200) // converges below; initial guess only
	var file []byte
	for iter := 0; iter < 10; iter++ {
		handles := make([]block.Handle, len(dataEnvs))
		var rel uint64
		for i, env := range dataEnvs {
			handles[i] = block.Handle{Offset: headerLen + rel, Length: uint64(len(env))}
			rel += uint64(len(env))
		}

		entries := entriesFn(handles, firstKeys)
		indexPayload := block.EncodeIndex(entries)
		indexCompressed, err := codec.Compress(codecName, indexPayload)
		require.NoError(t, err)
		indexEnv := block.Encode(1, indexCompressed)
		rootOffsetRel := rel

		placeholder := encodeHeader(0, [32]byte{}, codecName, defaultFixtureMetadata, 0, uint64(len(indexEnv)))
		newHeaderLen := uint64(len(placeholder))
		if newHeaderLen != headerLen {
			headerLen = newHeaderLen
			continue
		}

		var body []byte
		for _, e := range dataEnvs {
			body = append(body, e...)
		}
		body = append(body, indexEnv...)
		for _, e := range extraEnvs {
			body = append(body, e...)
		}

		h := sha256.New()
		for _, e := range dataEnvs {
			h.Write(e)
		}
		for i, x := range extras {
			if x.level == 0 {
				h.Write(extraEnvs[i])
			}
		}
		var hash [32]byte
		copy(hash[:], h.Sum(nil))

		rootOffset := headerLen + rootOffsetRel
		total := headerLen + uint64(len(body))
		header := encodeHeader(total, hash, codecName, defaultFixtureMetadata, rootOffset, uint64(len(indexEnv)))
		require.Equal(t, int(headerLen), len(header))

		file = append([]byte{}, header...)
		file = append(file, body...)
		return file
	}
	t.Fatal("treeFile fixture did not converge on a stable header length")
	return nil
}

// defaultEntries builds a well-formed index: one entry per data block,
// keyed on its first record.
func defaultEntries(handles []block.Handle, firstKeys [][]byte) []block.Entry {
	entries := make([]block.Entry, len(handles))
	for i := range handles {
		entries[i] = block.Entry{Key: firstKeys[i], Child: handles[i]}
	}
	return entries
}

// memTransport is an in-memory Transport, for tests that want direct
// control over file bytes without touching the filesystem.
type memTransport struct {
	data []byte
}

func newMemTransport(data []byte) *memTransport { return &memTransport{data: append([]byte{}, data...)} }

func (m *memTransport) ReadAt(_ context.Context, p []byte, off uint64) error {
	if off > uint64(len(m.data)) || uint64(len(p)) > uint64(len(m.data))-off {
		return errors.Mark(errors.Newf("memtransport: read past end of data"), transport.ErrPartialRead)
	}
	copy(p, m.data[off:off+uint64(len(p))])
	return nil
}

func (m *memTransport) Len(context.Context) (uint64, error) { return uint64(len(m.data)), nil }

func (m *memTransport) Close() error { return nil }

func openMem(t *testing.T, data []byte, opts *Options) (*Reader, error) {
	t.Helper()
	return Open(context.Background(), newMemTransport(data), opts)
}

func mustOpenMem(t *testing.T, data []byte, opts *Options) *Reader {
	t.Helper()
	r, err := openMem(t, data, opts)
	require.NoError(t, err)
	return r
}

func recordStrings(records [][]byte) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = string(r)
	}
	return out
}
