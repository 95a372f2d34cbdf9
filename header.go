// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	stderrors "errors"

	"github.com/zss-format/zss/codec"
	"github.com/zss-format/zss/internal/block"
	"github.com/zss-format/zss/transport"
)

// magicLen is the width of the fixed magic field at file offset 0 (spec §6).
const magicLen = 8

// magic is the fixed constant every well-formed ZSS file begins with.
var magic = [magicLen]byte{'Z', 'S', 'S', '1', 0xf0, 0x9f, 0xaa, 0xb3}

// partialMagic is the sentinel magic a writer emits in place of magic while
// a file is still being built, signaling an incomplete build distinctly
// from ordinary corruption (spec §3, §6, §8 scenario S6). It is magic with
// its final byte perturbed, the way the teacher's pebbleDBMagic
// ("\xf0\x9f\xaa\xb3\xf0\x9f\xaa\xb3", a cockroach emoji) is itself a
// deliberately whimsical fixed byte string recognized by exact match.
var partialMagic = [magicLen]byte{'Z', 'S', 'S', '1', 0xf0, 0x9f, 0xaa, 0x00}

const codecFieldLen = 16

// header is the parsed, validated fixed+variable file header (spec §3, §6).
type header struct {
	totalFileLength uint64
	dataSHA256      [sha256.Size]byte
	codecName       codec.Name
	metadata        map[string]interface{}
	rootIndexOffset uint64
	rootIndexLength uint64
	// headerLength is the total number of bytes the header occupies,
	// including the trailing checksum.
	headerLength int
}

// readHeader implements the open protocol of spec §4.5: a speculative
// prefix read, magic/checksum verification, and (if the prefix falls short
// of the fields or the metadata the varint declares) further, longer reads
// until the whole header is covered. Grounded on the teacher's
// readFooter/parseFooter (table.go), adapted from a footer-at-the-end
// layout to ZSS's header-at-the-start layout.
func readHeader(ctx context.Context, t transport.Transport, sizeGuess int) (header, error) {
	fileLen, err := t.Len(ctx)
	if err != nil {
		return header{}, err
	}

	guess := uint64(sizeGuess)
	if guess > fileLen {
		guess = fileLen
	}
	buf := make([]byte, guess)
	if guess > 0 {
		if err := t.ReadAt(ctx, buf, 0); err != nil {
			return header{}, err
		}
	}

	h, need, err := parseHeader(buf)
	for err == errNeedMoreHeader {
		if uint64(need) > fileLen {
			return header{}, corruptf("unexpected EOF")
		}
		buf = make([]byte, need)
		if err := t.ReadAt(ctx, buf, 0); err != nil {
			return header{}, err
		}
		h, need, err = parseHeader(buf)
	}
	if err != nil {
		return header{}, err
	}

	if h.totalFileLength != fileLen {
		return header{}, corruptf("header says it should be %d bytes, but the file is %d bytes", safeOffset(h.totalFileLength), safeOffset(fileLen))
	}
	return h, nil
}

// errNeedMoreHeader is an internal control-flow sentinel (never returned to
// callers of readHeader) signaling that buf is a speculative prefix that
// didn't reach far enough to cover the metadata; the caller retries with a
// longer read rather than treating this as corruption.
var errNeedMoreHeader = stderrors.New("zss: need more header bytes")

// parseHeader parses the header from buf (spec §6's byte layout). If buf
// is too short to contain the declared metadata, it returns
// errNeedMoreHeader along with the number of bytes required.
func parseHeader(buf []byte) (header, int, error) {
	if len(buf) < magicLen {
		return header{}, 0, corruptf("bad magic")
	}
	switch {
	case bytes.Equal(buf[:magicLen], partialMagic[:]):
		return header{}, 0, corruptf("partially written")
	case !bytes.Equal(buf[:magicLen], magic[:]):
		return header{}, 0, corruptf("bad magic")
	}
	off := magicLen

	const fixedPrefix = 8 + 32 + codecFieldLen // totalFileLength + dataSHA256 + codec
	if len(buf) < off+fixedPrefix {
		return header{}, off + fixedPrefix + maxVarintLen, errNeedMoreHeader
	}

	var h header
	h.totalFileLength = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	copy(h.dataSHA256[:], buf[off:off+32])
	off += 32
	codecBuf := buf[off : off+codecFieldLen]
	off += codecFieldLen
	if nul := bytes.IndexByte(codecBuf, 0); nul >= 0 {
		codecBuf = codecBuf[:nul]
	}
	h.codecName = codec.Name(codecBuf)

	metaLen, n, err := getUvarintAt(buf, off)
	if err != nil {
		if err == errShortBuf {
			return header{}, off + maxVarintLen, errNeedMoreHeader
		}
		return header{}, 0, err
	}
	off += n

	const tailFixed = 8 + maxVarintLen + 8 // rootIndexOffset + root_index_length(varint, upper bound) + header checksum
	needed := off + int(metaLen) + tailFixed
	if len(buf) < off+int(metaLen) {
		return header{}, needed, errNeedMoreHeader
	}
	metadataBytes := buf[off : off+int(metaLen)]
	off += int(metaLen)

	if len(buf) < off+8 {
		return header{}, needed, errNeedMoreHeader
	}
	h.rootIndexOffset = binary.LittleEndian.Uint64(buf[off:])
	off += 8

	rootLen, n, err := getUvarintAt(buf, off)
	if err != nil {
		if err == errShortBuf {
			return header{}, needed, errNeedMoreHeader
		}
		return header{}, 0, err
	}
	h.rootIndexLength = rootLen
	off += n

	const checksumLen = 8
	if len(buf) < off+checksumLen {
		return header{}, off + checksumLen, errNeedMoreHeader
	}
	headerBytes := buf[:off]
	wantChecksum := binary.LittleEndian.Uint64(buf[off : off+checksumLen])
	off += checksumLen
	h.headerLength = off

	if block.RawChecksum(headerBytes) != wantChecksum {
		return header{}, 0, corruptf("header checksum")
	}

	var meta interface{}
	if err := json.Unmarshal(metadataBytes, &meta); err != nil {
		return header{}, 0, corruptf("bad metadata")
	}
	metaObj, ok := meta.(map[string]interface{})
	if !ok {
		return header{}, 0, corruptf("bad metadata")
	}
	h.metadata = metaObj

	return h, 0, nil
}

// errShortBuf is an internal sentinel (never escapes parseHeader) used to
// tell a truncated-buffer varint read apart from a genuinely malformed one.
var errShortBuf = stderrors.New("zss: short buffer")

// getUvarintAt decodes a varint at offset off in buf, treating "ran off the
// end of buf" as errShortBuf (recoverable by reading more) rather than the
// harder corruption errors getUvarint itself reports.
func getUvarintAt(buf []byte, off int) (uint64, int, error) {
	if off > len(buf) {
		return 0, 0, errShortBuf
	}
	v, n, err := getUvarint(buf[off:])
	if err != nil {
		if off+maxVarintLen > len(buf) {
			return 0, 0, errShortBuf
		}
		return 0, 0, err
	}
	return v, n, nil
}
