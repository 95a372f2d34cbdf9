// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"context"

	"github.com/zss-format/zss/internal/block"
	"golang.org/x/sync/errgroup"
)

// pipelineResult is what a worker publishes for one planned leaf block:
// its processed value, or the error encountered producing it.
type pipelineResult[T any] struct {
	val T
	err error
}

// pipeline is the decode pipeline of spec §4.7, generalized over the
// value a worker produces for each planned leaf block — a decoded record
// vector for sloppy_block_search, or a user fn's return value for
// sloppy_block_map. Grounded on spec §4.7's producer/worker/reorder-
// buffer topology: a bounded index queue feeds a fixed worker pool, and
// a fixed slice of single-slot channels (one per planned leaf, indexed
// by its position in the ordered leaf list) plays the reorder buffer's
// role — each worker deposits into the channel for its own sequence
// number, and the consumer (Next) receives from slots strictly in order,
// which is sequence-number-ordered delivery without an explicit
// buffer/heap. Sharing this type between sloppy_block_search's plain
// decode and sloppy_block_map's decode-then-apply keeps both true to the
// spec's requirement that fn runs inside the worker goroutine, not after
// the fact on the consumer.
type pipeline[T any] struct {
	r       *Reader
	leaves  []block.Handle
	process func(ctx context.Context, r *Reader, h block.Handle) (T, error)

	pos int
	cur T
	err error

	sync bool // Parallelism == ParallelismSync: process runs in Next() itself

	ctx    context.Context
	cancel context.CancelFunc
	slots  []chan pipelineResult[T]
}

func newPipeline[T any](ctx context.Context, r *Reader, leaves []block.Handle, process func(context.Context, *Reader, block.Handle) (T, error)) (*pipeline[T], error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	n, err := r.opts.Parallelism.resolve()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &pipeline[T]{r: r, leaves: leaves, process: process, ctx: ctx, cancel: cancel}
	if n == 0 {
		p.sync = true
		return p, nil
	}
	p.slots = make([]chan pipelineResult[T], len(leaves))
	for i := range p.slots {
		p.slots[i] = make(chan pipelineResult[T], 1)
	}
	if len(leaves) > 0 {
		go p.run(n)
	}
	return p, nil
}

// run drives the producer and the fixed worker pool. It returns once
// every leaf has been processed (or ctx was cancelled by Close).
func (p *pipeline[T]) run(n int) {
	queueCap := n * 2
	idxCh := make(chan int, queueCap)

	go func() {
		defer close(idxCh)
		for i := range p.leaves {
			select {
			case idxCh <- i:
			case <-p.ctx.Done():
				return
			}
		}
	}()

	var g errgroup.Group
	for w := 0; w < n; w++ {
		g.Go(func() error {
			for {
				select {
				case idx, ok := <-idxCh:
					if !ok {
						return nil
					}
					val, err := p.process(p.ctx, p.r, p.leaves[idx])
					select {
					case p.slots[idx] <- pipelineResult[T]{val: val, err: err}:
					case <-p.ctx.Done():
						return nil
					}
				case <-p.ctx.Done():
					return nil
				}
			}
		})
	}
	g.Wait()
}

// Next advances to the next block's processed value, returning false at
// the end of the stream or on error (see Err).
func (p *pipeline[T]) Next() bool {
	if p.err != nil || p.pos >= len(p.leaves) {
		return false
	}
	if err := p.r.checkOpen(); err != nil {
		p.err = err
		return false
	}

	var res pipelineResult[T]
	if p.sync {
		if p.ctx.Err() != nil {
			p.err = ErrClosed
			return false
		}
		res.val, res.err = p.process(p.ctx, p.r, p.leaves[p.pos])
	} else {
		select {
		case res = <-p.slots[p.pos]:
		case <-p.ctx.Done():
			p.err = ErrClosed
			return false
		}
	}
	p.pos++
	if res.err != nil {
		p.err = res.err
		return false
	}
	p.cur = res.val
	return true
}

// Value returns the current item.
func (p *pipeline[T]) Value() T { return p.cur }

// Err returns the first error encountered, if any. A worker fault is
// surfaced here at the point the faulting block would have been
// delivered; items already yielded by earlier Next calls stand.
func (p *pipeline[T]) Err() error { return p.err }

// Close stops the pipeline: workers finish their in-flight block and
// exit, pending results are discarded. Safe to call multiple times and
// safe to call before the stream is exhausted.
func (p *pipeline[T]) Close() error {
	p.cancel()
	return nil
}

func decodeLeafRecords(ctx context.Context, r *Reader, h block.Handle) ([][]byte, error) {
	level, payload, err := r.fetchDecoded(ctx, h)
	if err != nil {
		return nil, err
	}
	if block.IsExtension(level) {
		return nil, corruptf("extension block")
	}
	records, err := block.DecodeData(payload)
	if err != nil {
		return nil, translateBlockErr(err)
	}
	return records, nil
}

// BlockIter is the ordered stream of candidate leaf block record vectors
// spec §4.8 calls sloppy_block_search: Value returns each block's full
// decoded record vector in order.
type BlockIter = pipeline[[][]byte]

func newBlockIter(ctx context.Context, r *Reader, leaves []block.Handle) (*BlockIter, error) {
	return newPipeline(ctx, r, leaves, decodeLeafRecords)
}
