// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zss-format/zss/codec"
)

// faultyTreeFile builds a well-formed tree fixture, then tampers one byte
// inside the checksum of the data block at physical index blockIdx (0 =
// first data block encountered by a physical file scan), so that decoding
// it fails regardless of which leaf ordinal it ends up at in a scan.
func faultyTreeFile(t *testing.T, chunks [][][]byte, blockIdx int) []byte {
	t.Helper()
	file := treeFile(t, codec.None, chunks, nil, defaultEntries)

	r0 := mustOpenMem(t, file, nil)
	physical, _, err := r0.scanPhysicalBlocks(context.Background())
	require.NoError(t, err)
	require.NoError(t, r0.Close())

	var dataBlocks []physicalBlock
	for _, pb := range physical {
		if pb.level == 0 {
			dataBlocks = append(dataBlocks, pb)
		}
	}
	require.Greater(t, len(dataBlocks), blockIdx)

	// The last byte of an envelope's declared length is always inside its
	// checksum trailer (varint length prefix + level + payload + 8-byte
	// checksum), so flipping it always trips "checksum mismatch" without
	// needing to know the payload's internal layout.
	target := dataBlocks[blockIdx]
	file[target.offset+target.length-1] ^= 0xff
	return file
}

func TestPipelineFaultSurfacedAtPosition(t *testing.T) {
	chunks := chunk(lettersRecords(), 4)
	file := faultyTreeFile(t, chunks, 1) // second data block is corrupt

	for _, p := range []Parallelism{ParallelismSync, 2} {
		r := mustOpenMem(t, file, &Options{Parallelism: p})

		it, err := r.Search(context.Background(), SearchParams{})
		require.NoError(t, err)

		var got []string
		for it.Next() {
			got = append(got, string(it.Record()))
		}
		require.Error(t, it.Err(), "parallelism=%v", p)

		// Every record already delivered before the fault must match the
		// first (good) data block's records exactly.
		require.Equal(t, recordStrings(chunks[0]), got, "parallelism=%v", p)
		require.NoError(t, it.Close())
		require.NoError(t, r.Close())
	}
}

func TestPipelineCloseStopsEarly(t *testing.T) {
	chunks := chunk(lettersRecords(), 2)
	file := treeFile(t, codec.None, chunks, nil, defaultEntries)
	r := mustOpenMem(t, file, &Options{Parallelism: 2})
	defer r.Close()

	bi, err := r.SloppyBlockSearch(context.Background(), SearchParams{})
	require.NoError(t, err)
	require.True(t, bi.Next())
	require.NoError(t, bi.Close())
	require.NoError(t, bi.Close()) // idempotent

	// Draining after Close must terminate (not hang) regardless of which
	// in-flight results happened to land before cancellation propagated.
	for bi.Next() {
	}
}
