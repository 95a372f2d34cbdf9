// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
)

// Logger is an optional diagnostic hook, shaped like the teacher's
// base.LoggerAndTracer used by sstable.readFooter to trace slow reads.
// A nil Logger disables tracing; the reader never logs by default.
type Logger interface {
	Eventf(ctx context.Context, format string, args ...interface{})
}

// Parallelism selects the decode pipeline's worker-pool size (§4.7). The
// zero value, ParallelismSync, is a first-class setting (not a "use the
// default" sentinel): Options{} therefore runs fully synchronously on
// the caller's goroutine, the safest possible zero value for a library.
// Callers that want a worker pool must opt in explicitly with
// ParallelismAuto or a positive count.
//
//   - ParallelismSync (0) runs every fetch+decode on the caller's goroutine.
//   - A positive value fixes the worker count.
//   - ParallelismAuto selects runtime.GOMAXPROCS(0).
type Parallelism int

// ParallelismSync disables the worker pool; all decode work runs on the
// calling goroutine.
const ParallelismSync Parallelism = 0

// ParallelismAuto selects a platform default worker count.
const ParallelismAuto Parallelism = -1

func (p Parallelism) resolve() (int, error) {
	switch {
	case p == ParallelismAuto:
		return runtime.GOMAXPROCS(0), nil
	case p < ParallelismAuto:
		return 0, invalidArgf("parallelism must be >= 0 or ParallelismAuto, got %d", int(p))
	default:
		return int(p), nil
	}
}

// Options configures a Reader. The zero value is valid; EnsureDefaults
// fills in the header size guess and SlowReadThreshold, matching the
// teacher's (*Options).EnsureDefaults. Every other field keeps its zero
// value's meaning.
type Options struct {
	// Parallelism controls the decode pipeline's worker count. The zero
	// value is ParallelismSync (synchronous, no worker pool); set it to
	// ParallelismAuto to size a worker pool from GOMAXPROCS.
	Parallelism Parallelism

	// Logger receives slow-operation trace events. Nil disables tracing.
	Logger Logger

	// SlowReadThreshold is the transport-read duration above which a trace
	// event fires, mirroring table.go's slowReadTracingThreshold.
	SlowReadThreshold time.Duration

	// headerSizeGuess is the speculative prefix size read during Open
	// (§4.5, default 1024). Exported via WithHeaderSizeGuess only for tests
	// exercising the two-phase header read; zero means "use the default".
	headerSizeGuess int

	// CacheBlocks bounds the number of decoded blocks kept in the reader's
	// block cache. Zero disables caching beyond the pinned root index block.
	CacheBlocks int

	// Metrics, if non-nil, receives per-reader counters (stats.go).
	Metrics *Metrics
}

const defaultHeaderSizeGuess = 1024

// defaultSlowReadThreshold mirrors the teacher's slowReadTracingThreshold.
const defaultSlowReadThreshold = 5 * time.Millisecond

// EnsureDefaults returns a copy of o with a zero header size guess or
// SlowReadThreshold replaced by its default; Parallelism, CacheBlocks,
// Logger and Metrics are copied unchanged.
// A nil receiver is valid and returns all-default Options, matching the
// teacher's (*Options).EnsureDefaults.
func (o *Options) EnsureDefaults() *Options {
	var c Options
	if o != nil {
		c = *o
	}
	if c.headerSizeGuess == 0 {
		c.headerSizeGuess = defaultHeaderSizeGuess
	}
	if c.SlowReadThreshold == 0 {
		c.SlowReadThreshold = defaultSlowReadThreshold
	}
	return &c
}

// WithHeaderSizeGuess lowers the speculative header-read size below the
// 1024-byte default, to exercise the two-phase header-read retry path (§4.5,
// §9) without requiring pathologically large metadata.
func (o Options) WithHeaderSizeGuess(n int) Options {
	if n <= 0 {
		panic(errors.AssertionFailedf("header size guess must be positive, got %d", n))
	}
	o.headerSizeGuess = n
	return o
}
