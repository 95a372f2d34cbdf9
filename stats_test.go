// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/zss-format/zss/codec"
)

func TestStatsTracksDecodesAndCache(t *testing.T) {
	records := lettersRecords()
	file := treeFile(t, codec.None, chunk(records, 4), nil, defaultEntries)
	r := mustOpenMem(t, file, &Options{CacheBlocks: 32})
	defer r.Close()

	before := r.Stats()
	require.Zero(t, before.CacheHits)

	ctx := context.Background()
	it, err := r.Search(ctx, SearchParams{})
	require.NoError(t, err)
	for it.Next() {
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())

	after := r.Stats()
	require.Positive(t, after.BlocksDecoded)
	require.Positive(t, after.BytesRead)
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "testapp")

	file := flatFile(t, codec.None, lettersRecords())
	r := mustOpenMem(t, file, &Options{Metrics: m})
	defer r.Close()

	it, err := r.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	for it.Next() {
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	var sawBlocksDecoded bool
	for _, f := range families {
		if f.GetName() == "testapp_zss_blocks_decoded_total" {
			sawBlocksDecoded = true
			require.Positive(t, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, sawBlocksDecoded)
}
