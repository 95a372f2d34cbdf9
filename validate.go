// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"bytes"
	"context"
	"crypto/sha256"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/zss-format/zss/internal/block"
)

// validatef builds a corruption error for the validator specifically,
// the one place in this package that exercises cockroachdb/redact
// directly (rather than through errors.Safe, as errors.go's corruptf
// does): a full-file walk accumulates many candidate culprits — keys,
// offsets, levels pulled straight from untrusted file bytes — and
// redact.Sprintf is the teacher's own ecosystem's answer to formatting
// those without the caller needing to mark each one individually.
func validatef(format string, args ...interface{}) error {
	msg := redact.Sprintf(format, args...)
	return errors.Mark(errors.Newf("zss: corrupt file: %s", msg), ErrCorrupt)
}

// physicalBlock is one framed envelope discovered by a sequential,
// reference-blind scan of the file body, used to find blocks that exist
// on disk but are reachable from no index entry.
type physicalBlock struct {
	offset uint64
	length uint64
	level  byte
}

// Validate walks the entire tree and verifies every invariant spec §3
// describes, per spec §4.9. It returns the first violation found; unlike
// Search/SloppyBlockSearch it is not a streaming operation; a large file
// means a full pass over every block.
//
// Grounded on the teacher's readBlock sequential block-framing walk
// (table.go), generalized from enumeration into a full correctness
// check: the same "walk every block, decode its framing" traversal, but
// comparing what's found against what the tree structure claims.
func (r *Reader) Validate(ctx context.Context) error {
	if err := r.checkOpen(); err != nil {
		return err
	}

	physical, body, err := r.scanPhysicalBlocks(ctx)
	if err != nil {
		return err
	}
	if err := r.checkRootLength(ctx); err != nil {
		return err
	}
	if err := checkDataHash(physical, body, uint64(r.hdr.headerLength), r.hdr.dataSHA256); err != nil {
		return err
	}

	referenced := make(map[uint64]int, len(physical))
	extensions := make(map[uint64]bool)
	for _, pb := range physical {
		if block.IsExtension(pb.level) {
			extensions[pb.offset] = true
		}
	}

	// The root block is never pointed to by an index entry (it's the walk's
	// own starting point), so it must be seeded into referenced directly;
	// walkIndex only ever marks the children it descends into.
	referenced[r.rootHandle.Offset]++
	if r.rootLevel > 0 {
		entries, err := block.DecodeIndex(r.rootPayload)
		if err != nil {
			return translateBlockErr(err)
		}
		if err := r.walkIndex(ctx, entries, r.rootLevel, referenced); err != nil {
			return err
		}
	}

	for _, pb := range physical {
		if extensions[pb.offset] {
			continue
		}
		if referenced[pb.offset] == 0 {
			return validatef("unreferenced %s block at offset %d", levelKind(pb.level), safeOffset(pb.offset))
		}
	}
	return nil
}

// walkIndex recursively validates one already-decoded index block's
// entries: parent/child key agreement, level arithmetic, and reference
// counts, then recurses into every child. Entry sortedness itself is
// already guaranteed by block.DecodeIndex (it refuses to decode an
// unsorted payload), so there is nothing left to recheck here.
func (r *Reader) walkIndex(ctx context.Context, entries []block.Entry, level byte, referenced map[uint64]int) error {
	for _, e := range entries {
		referenced[e.Child.Offset]++
		if referenced[e.Child.Offset] > 1 {
			return validatef("multiple ref to block at offset %d", safeOffset(e.Child.Offset))
		}

		childLevel, childPayload, err := r.fetchDecoded(ctx, e.Child)
		if err != nil {
			return err
		}
		if block.IsExtension(childLevel) {
			// Extension blocks are only ever legitimately unreferenced,
			// interleaved siblings (spec §3, §4.9); an index entry actually
			// pointing at one is corruption.
			return validatef("extension block")
		}
		if childLevel != level-1 {
			return validatef("level %d to level %d", level, childLevel)
		}

		var firstChildKey []byte
		if childLevel == 0 {
			records, err := block.DecodeData(childPayload)
			if err != nil {
				return translateBlockErr(err)
			}
			if len(records) > 0 {
				firstChildKey = records[0]
			}
		} else {
			childEntries, err := block.DecodeIndex(childPayload)
			if err != nil {
				return translateBlockErr(err)
			}
			if len(childEntries) > 0 {
				firstChildKey = childEntries[0].Key
			}
			if err := r.walkIndex(ctx, childEntries, childLevel, referenced); err != nil {
				return err
			}
		}

		if firstChildKey != nil {
			switch bytes.Compare(e.Key, firstChildKey) {
			case 1:
				return validatef("key too large for block")
			case -1:
				return validatef("key too small for block")
			}
		}
	}
	return nil
}

func levelKind(level byte) string {
	if level == 0 {
		return "data"
	}
	return "index"
}

// scanPhysicalBlocks enumerates every framed envelope in the file body by
// sequential physical scan, independent of which blocks the index tree
// actually references.
func (r *Reader) scanPhysicalBlocks(ctx context.Context) ([]physicalBlock, []byte, error) {
	start := uint64(r.hdr.headerLength)
	total := r.hdr.totalFileLength
	if start > total {
		return nil, nil, validatef("header length exceeds file length")
	}
	body := make([]byte, total-start)
	if len(body) > 0 {
		if err := r.t.ReadAt(ctx, body, start); err != nil {
			return nil, nil, err
		}
	}

	var out []physicalBlock
	off := uint64(0)
	for off < uint64(len(body)) {
		env, err := block.Parse(body[off:])
		if err != nil {
			return nil, nil, translateBlockErr(err)
		}
		out = append(out, physicalBlock{offset: start + off, length: uint64(env.Len), level: env.Level})
		off += uint64(env.Len)
	}
	return out, body, nil
}

// checkRootLength verifies the header's declared root_index_length
// against the root block's actual on-disk envelope length.
func (r *Reader) checkRootLength(ctx context.Context) error {
	raw := make([]byte, r.rootHandle.Length)
	if err := r.t.ReadAt(ctx, raw, r.rootHandle.Offset); err != nil {
		return err
	}
	env, err := block.Parse(raw)
	if err != nil {
		return translateBlockErr(err)
	}
	if uint64(env.Len) != r.rootHandle.Length {
		return validatef("root index length %d != actual length %d", r.rootHandle.Length, safeOffset(uint64(env.Len)))
	}
	return nil
}

// checkDataHash recomputes SHA-256 over the concatenated on-disk
// envelopes of every physical data block, in file order, and compares it
// to the header's recorded hash. body is the full file-body buffer
// scanPhysicalBlocks already read, sliced per block to avoid re-reading
// the transport.
func checkDataHash(physical []physicalBlock, body []byte, bodyStart uint64, want [sha256.Size]byte) error {
	h := sha256.New()
	for _, pb := range physical {
		if pb.level != 0 {
			continue
		}
		rel := pb.offset - bodyStart
		h.Write(body[rel : rel+pb.length])
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	if sum != want {
		return validatef("data hash mismatch")
	}
	return nil
}
