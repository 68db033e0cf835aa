/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command cueval reports how CU sketch accuracy degrades under each
// compression policy.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sketchlab/cusketch-go/count"
	"github.com/sketchlab/cusketch-go/internal/evaluate"
	"github.com/sketchlab/cusketch-go/internal/stream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	memoryBytes int
	keyLen      int
	rows        int
	seed        int64
	maxRate     int
	policies    []string
	trace       string
	zipfKeys    int
	zipfSkew    float64
	length      int
	debug       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "cueval",
		Short:        "Measure CU sketch error across compression steps",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.memoryBytes, "memory", 1<<16, "memory budget in bytes")
	f.IntVar(&opts.keyLen, "key-len", 13, "key length in bytes")
	f.IntVar(&opts.rows, "rows", count.DefaultNumRows, "number of rows")
	f.Int64Var(&opts.seed, "seed", 1, "seed for hash seeds and the synthetic stream")
	f.IntVar(&opts.maxRate, "max-rate", 4, "number of halvings to apply")
	f.StringSliceVar(&opts.policies, "policy", []string{
		count.Hierarchical.String(), count.SumMerge.String(), count.MaxMerge.String(),
	}, "compress policies to evaluate")
	f.StringVar(&opts.trace, "trace", "", "binary trace of fixed-width keys; a Zipf stream is used when empty")
	f.IntVar(&opts.zipfKeys, "zipf-keys", 100000, "distinct ids of the synthetic stream")
	f.Float64Var(&opts.zipfSkew, "zipf-skew", 1.1, "skew of the synthetic stream")
	f.IntVar(&opts.length, "length", 1000000, "length of the synthetic stream")
	f.BoolVar(&opts.debug, "debug", false, "development logging")
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg := evaluate.Config{
		MemoryBytes: opts.memoryBytes,
		KeyLen:      opts.keyLen,
		Rows:        opts.rows,
		Seed:        opts.seed,
		MaxRate:     opts.maxRate,
	}
	for _, name := range opts.policies {
		p, err := count.ParseCompressPolicy(name)
		if err != nil {
			return err
		}
		cfg.Policies = append(cfg.Policies, p)
	}

	keys, err := loadKeys(opts)
	if err != nil {
		logger.Error("loading keys", zap.Error(err))
		return err
	}

	results, err := evaluate.Run(ctx, cfg, keys, logger)
	if err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		return err
	}
	writeResults(out, results)
	return nil
}

func loadKeys(opts *options) ([][]byte, error) {
	if opts.trace == "" {
		src, err := stream.NewZipf(opts.keyLen, opts.zipfKeys, opts.zipfSkew, opts.length, opts.seed)
		if err != nil {
			return nil, err
		}
		return stream.Collect(src)
	}

	f, err := os.Open(opts.trace)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := stream.NewTraceReader(f, opts.keyLen)
	if err != nil {
		return nil, err
	}
	keys, err := stream.Collect(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.trace, err)
	}
	return keys, nil
}

func writeResults(out io.Writer, results []evaluate.Result) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Sketch", "Policy", "Step", "Width", "Memory use", "ARE", "AAE"})
	for _, r := range results {
		table.Append([]string{
			r.Name,
			r.Policy.String(),
			strconv.Itoa(r.Step),
			strconv.Itoa(r.Width),
			strconv.Itoa(r.MemoryUse),
			strconv.FormatFloat(r.ARE, 'f', 4, 64),
			strconv.FormatFloat(r.AAE, 'f', 2, 64),
		})
	}
	table.Render()
}
