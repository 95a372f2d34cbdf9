// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command zss is a thin CLI over the zss package: info, dump, and
// validate, per spec §6.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/zss-format/zss"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zss:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zss",
		Short:         "Inspect, dump, and validate ZSS files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInfoCmd(), newDumpCmd(), newValidateCmd())
	return root
}

func newInfoCmd() *cobra.Command {
	var metadataOnly bool
	cmd := &cobra.Command{
		Use:   "info <zss_file>",
		Short: "Print header fields and metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := zss.OpenPath(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer r.Close()

			if metadataOnly {
				return json.NewEncoder(os.Stdout).Encode(r.Metadata())
			}

			hash := r.DataSHA256()
			out := map[string]interface{}{
				"root_index_offset": r.RootHandleOffset(),
				"root_index_length": r.RootHandleLength(),
				"total_file_length": r.TotalFileLength(),
				"codec":             string(r.Codec()),
				"data_sha256":       hex.EncodeToString(hash[:]),
				"metadata":          r.Metadata(),
				"statistics": map[string]interface{}{
					"root_index_level": r.RootIndexLevel(),
				},
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		},
	}
	cmd.Flags().BoolVar(&metadataOnly, "metadata-only", false, "emit only the metadata object")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var start, stop, prefix, terminator string
	cmd := &cobra.Command{
		Use:   "dump <zss_file>",
		Short: "Write matching records to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := zss.OpenPath(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer r.Close()

			params := zss.SearchParams{}
			if cmd.Flags().Changed("start") {
				params.Start = []byte(start)
			}
			if cmd.Flags().Changed("stop") {
				params.Stop = []byte(stop)
			}
			if cmd.Flags().Changed("prefix") {
				params.Prefix = []byte(prefix)
			}
			return r.Dump(ctx, os.Stdout, params, unescapeTerminator(terminator))
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "inclusive lower bound")
	cmd.Flags().StringVar(&stop, "stop", "", "exclusive upper bound")
	cmd.Flags().StringVar(&prefix, "prefix", "", "restrict to records with this prefix")
	cmd.Flags().StringVar(&terminator, "terminator", "\n", `record terminator ("\n" or "\x00")`)
	return cmd
}

// unescapeTerminator maps the two terminators spec §6 names — "\n" and
// "\x00" — to their actual bytes, accepting either the literal escape
// sequence (as a shell typically passes it) or the already-interpreted
// byte (the flag's own default value).
func unescapeTerminator(s string) []byte {
	switch s {
	case "\n", `\n`:
		return []byte{'\n'}
	case "\x00", `\x00`:
		return []byte{0}
	default:
		return []byte(s)
	}
}

func newValidateCmd() *cobra.Command {
	var histogram bool
	cmd := &cobra.Command{
		Use:   "validate <zss_file>",
		Short: "Check every structural invariant of a ZSS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := zss.OpenPath(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Validate(ctx); err != nil {
				return err
			}
			if histogram {
				printDecodeStats(ctx, r)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&histogram, "histogram", false, "print decode-latency percentiles and read counters on success")
	return cmd
}

// printDecodeStats renders the reader's decode-latency p50/p99 as a quick
// terminal plot, using the same library pebble's own tooling reaches for to
// visualize benchmark/metric series, followed by a table of its block,
// cache and byte counters.
func printDecodeStats(ctx context.Context, r *zss.Reader) {
	stats := r.Stats()
	series := []float64{
		float64(stats.DecodeLatencyP50.Microseconds()),
		float64(stats.DecodeLatencyP99.Microseconds()),
	}
	graph := asciigraph.Plot(series, asciigraph.Height(8), asciigraph.Caption("decode latency p50/p99 (µs)"))
	fmt.Println(graph)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"metric", "value"})
	table.Append([]string{"blocks decoded", fmt.Sprint(stats.BlocksDecoded)})
	table.Append([]string{"cache hits", fmt.Sprint(stats.CacheHits)})
	table.Append([]string{"cache misses", fmt.Sprint(stats.CacheMisses)})
	table.Append([]string{"bytes read", fmt.Sprint(stats.BytesRead)})
	table.Render()
}
