// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zss-format/zss/codec"
	"github.com/zss-format/zss/internal/block"
)

func TestParseHeaderRoundTrip(t *testing.T) {
	file := flatFile(t, codec.None, lettersRecords())
	h, need, err := parseHeader(file)
	require.NoError(t, err)
	require.Zero(t, need)
	require.Equal(t, uint64(len(file)), h.totalFileLength)
	require.Equal(t, codec.None, h.codecName)
	require.Equal(t, "letters", h.metadata["dataset"])
}

func TestReadHeaderTwoPhase(t *testing.T) {
	// A deliberately small (16-byte) speculative first read stops short of
	// the header's fixed fields and metadata, exercising the
	// errNeedMoreHeader retry path.
	file := flatFile(t, codec.None, lettersRecords())
	opts := Options{}.WithHeaderSizeGuess(16)
	r, err := Open(context.Background(), newMemTransport(file), &opts)
	require.NoError(t, err)
	defer r.Close()
	require.EqualValues(t, 0, r.RootIndexLevel())
}

func TestReadHeaderBadMagic(t *testing.T) {
	file := flatFile(t, codec.None, lettersRecords())
	file[4] ^= 0xff
	_, err := openMem(t, file, nil)
	require.ErrorContains(t, err, "bad magic")
}

func TestReadHeaderPartialMagic(t *testing.T) {
	file := flatFile(t, codec.None, lettersRecords())
	copy(file[:magicLen], partialMagic[:])
	_, err := openMem(t, file, nil)
	require.ErrorContains(t, err, "partially written")
}

func TestReadHeaderChecksumMismatch(t *testing.T) {
	file := flatFile(t, codec.None, lettersRecords())
	file[magicLen] ^= 0xff // perturb totalFileLength, inside the checksummed region
	_, err := openMem(t, file, nil)
	require.ErrorContains(t, err, "header checksum")
}

func TestReadHeaderLengthMismatch(t *testing.T) {
	file := flatFile(t, codec.None, lettersRecords())
	truncated := file[:len(file)-1]
	_, err := openMem(t, truncated, nil)
	require.ErrorContains(t, err, "header says it should")
}

func TestReadHeaderUnrecognizedCompression(t *testing.T) {
	// The data block itself is encoded with a real codec (None): Open must
	// reject the unrecognized header codec name before ever touching the
	// root block's payload.
	payload := block.EncodeData(lettersRecords())
	dataEnv := block.Encode(0, payload)
	hash := sha256.Sum256(dataEnv)

	badCodec := codec.Name("snappy")
	placeholder := encodeHeader(0, hash, badCodec, defaultFixtureMetadata, 0, uint64(len(dataEnv)))
	headerLen := uint64(len(placeholder))
	header := encodeHeader(headerLen+uint64(len(dataEnv)), hash, badCodec, defaultFixtureMetadata, headerLen, uint64(len(dataEnv)))

	file := append([]byte{}, header...)
	file = append(file, dataEnv...)

	_, err := openMem(t, file, nil)
	require.ErrorContains(t, err, "unrecognized compression")
}
