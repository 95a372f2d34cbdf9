// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	for _, name := range []Name{None, Deflate, Bzip2, LZMA} {
		compressed, err := Compress(name, raw)
		require.NoError(t, err, "compress %s", name)
		got, err := Decompress(name, compressed)
		require.NoError(t, err, "decompress %s", name)
		require.Equal(t, raw, got, "round trip %s", name)
	}
}

func TestUnrecognized(t *testing.T) {
	_, err := Decompress(Name("snappy"), nil)
	require.ErrorIs(t, err, ErrUnrecognized)
}

func TestValid(t *testing.T) {
	require.True(t, Valid(None))
	require.True(t, Valid(Deflate))
	require.True(t, Valid(Bzip2))
	require.True(t, Valid(LZMA))
	require.False(t, Valid(Name("zstd")))
	require.False(t, Valid(Name("")))
}
