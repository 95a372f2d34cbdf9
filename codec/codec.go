// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package codec implements ZSS's block-payload decompressor registry
// (spec §4.3): a closed set of named codecs, each a pure
// compressed-bytes-to-decompressed-bytes function, dispatched by the
// 16-byte ASCII codec name stored in the file header.
//
// This generalizes the teacher's inline compression dispatch in
// table.go/readBlock ("switch typ { case noCompressionBlockType: ...
// case snappyCompressionBlockType: ... }") from a 1-byte block-type tag
// over two hardcoded codecs into a name-keyed registry over the four
// codecs ZSS recognizes.
package codec

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/xz/lzma"
)

// Name identifies one of the four codecs ZSS recognizes. Header.Codec
// values outside this closed set fail Open with "unrecognized compression"
// (spec §4.3).
type Name string

const (
	None    Name = "none"
	Deflate Name = "deflate"
	Bzip2   Name = "bz2"
	LZMA    Name = "lzma"
)

// ErrUnrecognized is wrapped into every "unrecognized compression" error so
// callers can errors.Is against it.
var ErrUnrecognized = errors.New("codec: unrecognized compression")

// Decompress applies the named codec to compressed, returning the
// decompressed bytes. An unrecognized name returns an error wrapping
// ErrUnrecognized.
func Decompress(name Name, compressed []byte) ([]byte, error) {
	switch name {
	case None:
		return compressed, nil
	case Deflate:
		r := flate.NewReader(bytes.NewReader(compressed))
		defer r.Close()
		return io.ReadAll(r)
	case Bzip2:
		r, err := bzip2.NewReader(bytes.NewReader(compressed), nil)
		if err != nil {
			return nil, errors.Wrap(err, "codec: bz2 decompress")
		}
		defer r.Close()
		return io.ReadAll(r)
	case LZMA:
		r, err := lzma.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, errors.Wrap(err, "codec: lzma decompress")
		}
		return io.ReadAll(r)
	default:
		return nil, errors.Mark(errors.Newf("codec: unrecognized compression %q", string(name)), ErrUnrecognized)
	}
}

// Valid reports whether name is one of the four recognized codecs.
func Valid(name Name) bool {
	switch name {
	case None, Deflate, Bzip2, LZMA:
		return true
	default:
		return false
	}
}

// Compress applies the named codec's corresponding compressor, for use by
// tests constructing synthetic ZSS files with non-identity codecs.
func Compress(name Name, raw []byte) ([]byte, error) {
	switch name {
	case None:
		return raw, nil
	case Deflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Bzip2:
		var buf bytes.Buffer
		w := bzip2.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case LZMA:
		var buf bytes.Buffer
		w, err := lzma.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Mark(errors.Newf("codec: unrecognized compression %q", string(name)), ErrUnrecognized)
	}
}
