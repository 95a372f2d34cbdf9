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

func TestPrefixSuccessor(t *testing.T) {
	succ, inf := prefixSuccessor([]byte("ab"))
	require.False(t, inf)
	require.Equal(t, []byte("ac"), succ)

	succ, inf = prefixSuccessor([]byte{0xff})
	require.True(t, inf)
	require.Nil(t, succ)

	succ, inf = prefixSuccessor([]byte{'a', 0xff})
	require.False(t, inf)
	require.Equal(t, []byte{'b'}, succ)
}

func TestEffectiveBounds(t *testing.T) {
	start, stop, inf := effectiveBounds(SearchParams{Stop: []byte("bb"), Prefix: []byte("b")})
	require.False(t, inf)
	require.Equal(t, []byte("b"), start)
	require.Equal(t, []byte("bb"), stop)

	start, stop, inf = effectiveBounds(SearchParams{Start: []byte("m"), Stop: []byte("s"), Prefix: []byte("n")})
	require.False(t, inf)
	require.Equal(t, []byte("n"), start)
	require.Equal(t, []byte("o"), stop)

	_, _, inf = effectiveBounds(SearchParams{})
	require.True(t, inf)
}

func TestBoundsEmpty(t *testing.T) {
	require.True(t, boundsEmpty([]byte("z"), []byte("a"), false))
	require.False(t, boundsEmpty([]byte("a"), []byte("z"), false))
	require.False(t, boundsEmpty([]byte("z"), nil, true))
}

// collectSearch drains a Search call into a []string for easy comparison.
func collectSearch(t *testing.T, r *Reader, params SearchParams) []string {
	t.Helper()
	it, err := r.Search(context.Background(), params)
	require.NoError(t, err)
	defer it.Close()
	var out []string
	for it.Next() {
		out = append(out, string(it.Record()))
	}
	require.NoError(t, it.Err())
	return out
}

func TestSearchScenariosFlatFile(t *testing.T) {
	records := lettersRecords()
	file := flatFile(t, codec.None, records)
	r := mustOpenMem(t, file, nil)
	defer r.Close()

	// S1
	require.Equal(t, recordStrings(records), collectSearch(t, r, SearchParams{}))

	// S2
	got := collectSearch(t, r, SearchParams{Start: []byte("m")})
	require.Equal(t, []string{"n", "nn", "p", "pp", "r", "rr", "t", "tt", "v", "vv", "x", "xx", "z", "zz"}, got)

	// S3
	got = collectSearch(t, r, SearchParams{Stop: []byte("bb"), Prefix: []byte("b")})
	require.Equal(t, []string{"b"}, got)

	// S4
	got = collectSearch(t, r, SearchParams{Start: []byte("m"), Stop: []byte("s"), Prefix: []byte("n")})
	require.Equal(t, []string{"n", "nn"}, got)
}

func TestSearchScenariosTreeFile(t *testing.T) {
	records := lettersRecords()
	chunks := chunk(records, 4)
	file := treeFile(t, codec.Deflate, chunks, nil, defaultEntries)
	r := mustOpenMem(t, file, nil)
	defer r.Close()

	require.EqualValues(t, 1, r.RootIndexLevel())
	require.Equal(t, recordStrings(records), collectSearch(t, r, SearchParams{}))

	got := collectSearch(t, r, SearchParams{Start: []byte("m"), Stop: []byte("s"), Prefix: []byte("n")})
	require.Equal(t, []string{"n", "nn"}, got)
}

// TestSearchIndependentOfParallelism covers spec invariant 5: scan results
// don't depend on the parallelism setting.
func TestSearchIndependentOfParallelism(t *testing.T) {
	records := lettersRecords()
	file := treeFile(t, codec.None, chunk(records, 3), nil, defaultEntries)

	for _, p := range []Parallelism{ParallelismSync, 2, ParallelismAuto} {
		r := mustOpenMem(t, file, &Options{Parallelism: p})
		got := collectSearch(t, r, SearchParams{Start: []byte("m")})
		require.Equal(t, []string{"n", "nn", "p", "pp", "r", "rr", "t", "tt", "v", "vv", "x", "xx", "z", "zz"}, got, "parallelism=%v", p)
		require.NoError(t, r.Close())
	}
}
