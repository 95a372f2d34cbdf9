// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"bytes"
	"context"
	"sort"

	"github.com/zss-format/zss/internal/block"
)

// SearchParams bounds a scan. Start is inclusive, Stop is exclusive; a nil
// Start means "from the beginning", a nil Stop means "to the end". Prefix,
// if non-nil, additionally restricts the scan to records beginning with
// it. Grounded on the teacher's pebble.IterOptions (LowerBound/UpperBound
// []byte, nil meaning unbounded), generalized with the Prefix field spec
// §4.6 requires and that pebble's own prefix iteration mode folds into
// the same bounds instead of exposing separately.
type SearchParams struct {
	Start  []byte
	Stop   []byte
	Prefix []byte
}

// effectiveBounds computes effective_start/effective_stop per spec §4.6.
// stopInf reports whether the effective stop is +infinity (no upper
// bound); when false, effStop holds the actual exclusive bound.
func effectiveBounds(p SearchParams) (effStart, effStop []byte, stopInf bool) {
	effStart = p.Start
	if p.Prefix != nil {
		effStart = maxBytes(p.Start, p.Prefix)

		succ, succInf := prefixSuccessor(p.Prefix)
		switch {
		case succInf:
			return effStart, p.Stop, p.Stop == nil
		case p.Stop == nil:
			return effStart, succ, false
		case bytes.Compare(p.Stop, succ) <= 0:
			return effStart, p.Stop, false
		default:
			return effStart, succ, false
		}
	}
	return effStart, p.Stop, p.Stop == nil
}

// boundsEmpty reports whether the bounds are inverted (start > stop), in which
// case the scan yields nothing without ever touching the transport.
func boundsEmpty(effStart, effStop []byte, stopInf bool) bool {
	return !stopInf && bytes.Compare(effStart, effStop) > 0
}

// maxBytes returns the lexicographically larger of a and b, treating nil
// as the empty string (the smallest possible key, never the absence of a
// bound — callers only invoke this where both a and b are genuine bytes
// or an explicitly-absent Start, which sorts first either way).
func maxBytes(a, b []byte) []byte {
	if bytes.Compare(a, b) >= 0 {
		return a
	}
	return b
}

// prefixSuccessor returns the lexicographically smallest byte string
// strictly greater than every string beginning with prefix: prefix with
// its last non-0xFF byte incremented and any trailing run of 0xFF bytes
// dropped (spec §4.6). infinite is true when prefix is all 0xFF (and
// thus has no successor; the effective stop becomes unbounded).
func prefixSuccessor(prefix []byte) (succ []byte, infinite bool) {
	succ = append([]byte(nil), prefix...)
	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] == 0xff {
			succ = succ[:i]
			continue
		}
		succ[i]++
		return succ, false
	}
	return nil, true
}

// inBounds reports whether record r falls within [effStart, effStop).
func inBounds(r, effStart, effStop []byte, stopInf bool) bool {
	if effStart != nil && bytes.Compare(r, effStart) < 0 {
		return false
	}
	if !stopInf && bytes.Compare(r, effStop) >= 0 {
		return false
	}
	return true
}

// planLeaves performs the descent of spec §4.6: starting from the cached
// root block, it visits index blocks whose key range overlaps
// [effStart, effStop) and returns, in order, the block handles of every
// candidate leaf (data) block that might contain a matching record.
//
// Grounded on the teacher's Iterator.seekGE/loadBlock pair (table.go):
// a floor search (sort.Search for the first index entry greater than the
// target, stepping back one) descending one level at a time. Generalized
// from pebble's single-direction SeekGE descent (one child at a time) to
// ZSS's range descent, which must gather every overlapping child at each
// level rather than just the one containing the seek key.
func planLeaves(ctx context.Context, r *Reader, effStart, effStop []byte, stopInf bool) ([]block.Handle, error) {
	if r.rootLevel == 0 {
		return []block.Handle{r.rootHandle}, nil
	}
	entries, err := block.DecodeIndex(r.rootPayload)
	if err != nil {
		return nil, translateBlockErr(err)
	}
	var out []block.Handle
	if err := descendIndex(ctx, r, entries, r.rootLevel, effStart, effStop, stopInf, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// descendIndex selects the entries of one already-decoded index block
// (at the given level) whose range overlaps [effStart, effStop), and
// recurses into each selected child.
func descendIndex(ctx context.Context, r *Reader, entries []block.Entry, level byte, effStart, effStop []byte, stopInf bool, out *[]block.Handle) error {
	if len(entries) == 0 {
		return nil
	}
	lo := floorIndex(entries, effStart)
	hi := len(entries)
	if !stopInf {
		hi = sort.Search(len(entries), func(i int) bool {
			return bytes.Compare(entries[i].Key, effStop) >= 0
		})
	}
	if hi > len(entries) {
		hi = len(entries)
	}

	for i := lo; i < hi; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		childLevel, childPayload, err := r.fetchDecoded(ctx, entries[i].Child)
		if err != nil {
			return err
		}
		if block.IsExtension(childLevel) {
			// Extension blocks are only ever legitimately unreferenced,
			// interleaved siblings (spec §3, §4.9); an index entry actually
			// pointing at one is corruption, not a skippable level.
			return corruptf("extension block")
		}
		if childLevel == 0 {
			if level > 1 {
				return corruptf("expecting index block")
			}
			*out = append(*out, entries[i].Child)
			continue
		}
		childEntries, err := block.DecodeIndex(childPayload)
		if err != nil {
			return translateBlockErr(err)
		}
		if err := descendIndex(ctx, r, childEntries, childLevel, effStart, effStop, stopInf, out); err != nil {
			return err
		}
	}
	return nil
}

// floorIndex returns the index of the last entry with Key <= key (the
// floor), or 0 if every entry's Key is greater than key — the first
// child's range is always understood to extend back to -infinity.
func floorIndex(entries []block.Entry, key []byte) int {
	i := sort.Search(len(entries), func(i int) bool {
		return bytes.Compare(entries[i].Key, key) > 0
	})
	if i == 0 {
		return 0
	}
	return i - 1
}
