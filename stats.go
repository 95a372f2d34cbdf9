// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package zss

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional Prometheus registration bundle a caller can hand
// to Options.Metrics so that a Reader's activity is visible on the
// caller's own /metrics endpoint, in addition to the in-process snapshot
// returned by Reader.Stats. Grounded on scigolib-hdf5's
// internal/rebalancing MetricsCollector (atomic counters for the hot
// path, struct-of-collectors for export) but backed by the real
// prometheus/client_golang collector types rather than a hand-rolled
// snapshot struct, since a caller wants these on its own registry.
type Metrics struct {
	BlocksDecoded prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	BytesRead     prometheus.Counter
	DecodeLatency prometheus.Histogram
}

// NewMetrics constructs a Metrics bundle and registers it with reg. Pass
// a distinct reg (e.g. prometheus.NewRegistry()) per Reader if you intend
// to open more than one with the same namespace/subsystem, since
// registering the same collector twice on the default registry panics.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		BlocksDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "zss", Name: "blocks_decoded_total",
			Help: "Blocks read, checksummed, and decompressed.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "zss", Name: "cache_hits_total",
			Help: "Decoded-block cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "zss", Name: "cache_misses_total",
			Help: "Decoded-block cache misses.",
		}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "zss", Name: "bytes_read_total",
			Help: "Bytes read from the underlying transport.",
		}),
		DecodeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "zss", Name: "block_decode_seconds",
			Help:    "Time to read, checksum, and decompress one block.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 16),
		}),
	}
	reg.MustRegister(m.BlocksDecoded, m.CacheHits, m.CacheMisses, m.BytesRead, m.DecodeLatency)
	return m
}

// Stats accumulates per-Reader counters and a decode-latency histogram.
// The atomic fields are the hot path (every fetchDecoded call touches
// them); the histogram is mutex-guarded since hdrhistogram.Histogram
// isn't safe for concurrent RecordValue calls.
type Stats struct {
	blocksDecoded atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	bytesRead     atomic.Int64

	histMu sync.Mutex
	hist   *hdrhistogram.Histogram

	sink *Metrics
}

// newStats constructs a Stats tracker, recording into sink as well (if
// non-nil) so the caller's own Prometheus registry stays current.
func newStats(sink *Metrics) *Stats {
	return &Stats{
		hist: hdrhistogram.New(1, (10 * time.Second).Nanoseconds(), 3),
		sink: sink,
	}
}

func (s *Stats) clock() time.Time { return time.Now() }

func (s *Stats) recordCacheHit() {
	s.cacheHits.Add(1)
	if s.sink != nil {
		s.sink.CacheHits.Inc()
	}
}

func (s *Stats) recordCacheMiss() {
	s.cacheMisses.Add(1)
	if s.sink != nil {
		s.sink.CacheMisses.Inc()
	}
}

func (s *Stats) recordRead(n uint64, start time.Time) {
	elapsed := time.Since(start)
	s.blocksDecoded.Add(1)
	s.bytesRead.Add(int64(n))

	s.histMu.Lock()
	_ = s.hist.RecordValue(elapsed.Nanoseconds())
	s.histMu.Unlock()

	if s.sink != nil {
		s.sink.BlocksDecoded.Inc()
		s.sink.BytesRead.Add(float64(n))
		s.sink.DecodeLatency.Observe(elapsed.Seconds())
	}
}

// ReaderStats is a point-in-time, allocation-free-to-read snapshot of a
// Reader's activity, returned by Reader.Stats.
type ReaderStats struct {
	BlocksDecoded int64
	CacheHits     int64
	CacheMisses   int64
	BytesRead     int64
	// DecodeLatencyP50 and DecodeLatencyP99 summarize the block
	// read+checksum+decompress latency distribution.
	DecodeLatencyP50 time.Duration
	DecodeLatencyP99 time.Duration
}

func (s *Stats) snapshot() ReaderStats {
	s.histMu.Lock()
	p50 := s.hist.ValueAtQuantile(50)
	p99 := s.hist.ValueAtQuantile(99)
	s.histMu.Unlock()
	return ReaderStats{
		BlocksDecoded:    s.blocksDecoded.Load(),
		CacheHits:        s.cacheHits.Load(),
		CacheMisses:      s.cacheMisses.Load(),
		BytesRead:        s.bytesRead.Load(),
		DecodeLatencyP50: time.Duration(p50),
		DecodeLatencyP99: time.Duration(p99),
	}
}

// Stats returns a snapshot of this reader's activity since Open.
func (r *Reader) Stats() ReaderStats { return r.stats.snapshot() }
