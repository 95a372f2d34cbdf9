// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package varint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 32, ^uint64(0)} {
		buf := Put(nil, v)
		require.Equal(t, Size(v), len(buf))
		got, n, err := Get(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestTruncated(t *testing.T) {
	buf := Put(nil, 1<<40)
	_, _, err := Get(buf[:1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestOverflow(t *testing.T) {
	overlong := make([]byte, 11)
	for i := range overlong {
		overlong[i] = 0xff
	}
	overlong[10] = 0x01
	_, _, err := Get(overlong)
	require.ErrorIs(t, err, ErrOverflow)
}
